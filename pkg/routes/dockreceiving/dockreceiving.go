package dockreceiving

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/dockreceiving"
	"github.com/etcsc/warehouse/pkg/models"
)

// Handler serves the dock receiving routes
type Handler struct {
	repo     *dockreceiving.Repository
	validate *validator.Validate
}

// NewHandler creates a new dock receiving handler
func NewHandler(repo *dockreceiving.Repository) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
	}
}

// Register registers dock receiving routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// RegisterCarriers registers the carrier listing route
func (h *Handler) RegisterCarriers(g *echo.Group) {
	g.GET("", h.Carriers)
}

// Create records a dock receipt
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateDockReceivingRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	id, err := h.repo.Create(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]int64{"id": id})
}

// List lists dock receipts, newest first
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.repo.List(ctx, page, limit, c.QueryParam("order"), c.QueryParam("orderBy"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Update edits a dock receipt and optionally its linked customer
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	var req models.UpdateDockReceivingRequest
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

// Delete removes a dock receipt
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	if err := h.repo.Delete(ctx, id); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Carriers lists the known carrier names
func (h *Handler) Carriers(c echo.Context) error {
	ctx := c.Request().Context()

	carriers, err := h.repo.Carriers(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, carriers)
}
