package rmaimport

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/rmaimport"
	appctx "github.com/etcsc/warehouse/pkg/context"
	"github.com/etcsc/warehouse/pkg/events"
	"github.com/etcsc/warehouse/pkg/models"
)

// Handler serves the RMA manifest import routes
type Handler struct {
	repo     *rmaimport.Repository
	emitter  *events.Emitter
	validate *validator.Validate
}

// NewHandler creates a new RMA import handler
func NewHandler(repo *rmaimport.Repository, emitter *events.Emitter) *Handler {
	return &Handler{
		repo:     repo,
		emitter:  emitter,
		validate: validator.New(),
	}
}

// Register registers RMA import routes on the receiving group
func (h *Handler) Register(g *echo.Group) {
	g.POST("/import-rma", h.Import)
	g.GET("/rma-numbers", h.RMANumbers)
	g.GET("/inventory-items", h.InventoryItems)
}

// ImportRequest is the manifest import request body
type ImportRequest struct {
	Rows []models.RMAImportRow `json:"rows" validate:"required,min=1,dive"`
}

// Import reconciles a manifest batch. Responds 201 when every row landed,
// 207 when some rows were skipped, and 400 when nothing could be imported.
func (h *Handler) Import(c echo.Context) error {
	ctx := c.Request().Context()

	var req ImportRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	importID, result, err := h.repo.Import(ctx, req.Rows, appctx.GetUserID(ctx))
	if err != nil {
		return err
	}

	// an all-skipped batch is rejected, so nothing completed
	if result.AddedCount > 0 {
		h.emitter.EmitImportCompleted(ctx, importID, result)
	}

	status := http.StatusCreated
	switch {
	case result.AddedCount == 0:
		status = http.StatusBadRequest
	case len(result.SkippedEntries) > 0:
		status = http.StatusMultiStatus
	}

	return c.JSON(status, result)
}

// RMANumbers lists the distinct RMA numbers in receiving
func (h *Handler) RMANumbers(c echo.Context) error {
	ctx := c.Request().Context()

	nums, err := h.repo.RMANumbers(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, nums)
}

// InventoryItems lists the receiving entries for one RMA
func (h *Handler) InventoryItems(c echo.Context) error {
	ctx := c.Request().Context()

	rmaNum := c.QueryParam("rma_num")
	if rmaNum == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "rma_num query parameter is required")
	}

	items, err := h.repo.InventoryItems(ctx, rmaNum, c.QueryParam("brand"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}
