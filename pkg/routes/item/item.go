package item

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/item"
	"github.com/etcsc/warehouse/pkg/models"
)

// Handler serves the item catalog routes
type Handler struct {
	repo     *item.Repository
	validate *validator.Validate
}

// NewHandler creates a new item handler
func NewHandler(repo *item.Repository) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
	}
}

// Register registers item routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.GET("/search", h.Search)
	g.PUT("/:id", h.Update)
}

// List lists catalog items, optionally filtered by field
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	fieldFilters := map[string]string{}
	for key, values := range c.QueryParams() {
		if len(values) > 0 && values[0] != "" {
			fieldFilters[key] = values[0]
		}
	}

	items, err := h.repo.List(ctx, fieldFilters)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// Search looks up items by model prefix for typeahead
func (h *Handler) Search(c echo.Context) error {
	ctx := c.Request().Context()

	model := c.QueryParam("model")
	if model == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "model query parameter is required")
	}

	items, err := h.repo.Search(ctx, model)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

// Update edits a catalog item
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}

	var req models.UpdateItemRequest
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
