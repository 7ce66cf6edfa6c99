package customer

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/customer"
	"github.com/etcsc/warehouse/pkg/models"
)

// Handler serves the customer routes
type Handler struct {
	repo     *customer.Repository
	validate *validator.Validate
}

// NewHandler creates a new customer handler
func NewHandler(repo *customer.Repository) *Handler {
	return &Handler{
		repo:     repo,
		validate: validator.New(),
	}
}

// Register registers customer routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("", h.List)
	g.POST("", h.Upsert)
}

// List lists customers ordered by name
func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()

	customers, err := h.repo.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, customers)
}

// Upsert creates a customer or updates the one with the same name
func (h *Handler) Upsert(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpsertCustomerRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	id, err := h.repo.Upsert(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]int64{"id": id})
}
