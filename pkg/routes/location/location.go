package location

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/location"
	"github.com/etcsc/warehouse/pkg/models"
)

// Handler serves the location registry routes
type Handler struct {
	repo     *location.Repository
	validate *validator.Validate
}

// NewHandler creates a new location handler
func NewHandler(repo *location.Repository) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
	}
}

// Register registers location routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.DELETE("/:name", h.Delete)
}

// List lists every location with its occupancy
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	locations, err := h.repo.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, locations)
}

// Create registers a storage location
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	created, err := h.repo.Create(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, created)
}

// Delete removes a location by name
func (h *Handler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	name := c.Param("name")
	if name == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	if err := h.repo.Delete(ctx, name); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
