package shippingrate

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/shippingrate"
)

// Handler serves the shipping rate routes
type Handler struct {
	repo *shippingrate.Repository
}

// NewHandler creates a new shipping rate handler
func NewHandler(repo *shippingrate.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers the rate route
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.Rates)
}

// Rates lists the rate schedule for one cost column
func (h *Handler) Rates(c echo.Context) error {
	ctx := c.Request().Context()

	column := c.QueryParam("column")
	if column == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "column query parameter is required")
	}

	rates, err := h.repo.Rates(ctx, column)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, rates)
}
