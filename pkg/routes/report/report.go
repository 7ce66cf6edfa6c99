package report

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/report"
	"github.com/etcsc/warehouse/pkg/filters"
)

// Handler serves the inventory lookup report
type Handler struct {
	repo *report.Repository
}

// NewHandler creates a new report handler
func NewHandler(repo *report.Repository) *Handler {
	return &Handler{repo: repo}
}

// Register registers the lookup route
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.Lookup)
}

// Lookup serves the filtered lookup, grouped by model when requested
func (h *Handler) Lookup(c echo.Context) error {
	ctx := c.Request().Context()

	p := filters.Parse(c.QueryParams())

	if p.GroupByModel {
		result, err := h.repo.Grouped(ctx, p)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, result)
	}

	result, err := h.repo.List(ctx, p)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}
