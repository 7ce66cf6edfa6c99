package shipout

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/shipout"
	"github.com/etcsc/warehouse/pkg/events"
	"github.com/etcsc/warehouse/pkg/models"
)

// Handler serves the shipout transaction routes
type Handler struct {
	repo     *shipout.Repository
	emitter  *events.Emitter
	validate *validator.Validate
}

// NewHandler creates a new shipout handler
func NewHandler(repo *shipout.Repository, emitter *events.Emitter) *Handler {
	return &Handler{
		repo:     repo,
		emitter:  emitter,
		validate: validator.New(),
	}
}

// Register registers shipout routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("/pick-list", h.SavePickList)
	g.GET("/transactions", h.List)
	g.GET("/pending", h.ListPending)
	g.PUT("/transactions/:id", h.Update)
	g.POST("/complete", h.Complete)
	g.GET("/shipout-items/:transaction_id", h.Lines)
}

// SavePickList creates or replaces a pick list
func (h *Handler) SavePickList(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.SavePickListRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	transactionID, err := h.repo.SavePickList(ctx, req)
	if err != nil {
		return err
	}

	status := http.StatusCreated
	if req.TransactionID != nil {
		status = http.StatusOK
	}

	return c.JSON(status, map[string]int64{"transaction_id": transactionID})
}

// List lists every shipout transaction
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	transactions, err := h.repo.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, transactions)
}

// ListPending lists the transactions still open for picking
func (h *Handler) ListPending(c echo.Context) error {
	ctx := c.Request().Context()

	transactions, err := h.repo.ListPending(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, transactions)
}

// Update edits the header of a pending transaction
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	var req models.UpdateShipoutRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	if err := h.repo.Update(ctx, id, req); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Complete finalizes a pending transaction
func (h *Handler) Complete(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CompleteShipoutRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	if err := h.repo.Complete(ctx, req); err != nil {
		return err
	}

	serials := make([]string, 0, len(req.Items))
	for _, unit := range req.Items {
		serials = append(serials, unit.SerialNum)
	}
	h.emitter.EmitShipoutCompleted(ctx, req.TransactionID, serials)

	return c.NoContent(http.StatusNoContent)
}

// Lines lists the pick-list lines for one transaction
func (h *Handler) Lines(c echo.Context) error {
	ctx := c.Request().Context()

	transactionID, err := strconv.ParseInt(c.Param("transaction_id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "transaction_id must be an integer")
	}

	lines, err := h.repo.Lines(ctx, transactionID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, lines)
}
