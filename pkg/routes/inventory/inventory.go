package inventory

import (
	"net/http"
	"strconv"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/etcsc/warehouse/internal/repositories/inventory"
	"github.com/etcsc/warehouse/pkg/events"
	"github.com/etcsc/warehouse/pkg/models"
)

// Handler serves the inventory unit routes
type Handler struct {
	repo     *inventory.Repository
	emitter  *events.Emitter
	validate *validator.Validate
}

// NewHandler creates a new inventory handler
func NewHandler(repo *inventory.Repository, emitter *events.Emitter) *Handler {
	return &Handler{
		repo:     repo,
		emitter:  emitter,
		validate: validator.New(),
	}
}

// Register registers inventory routes
func (h *Handler) Register(g *echo.Group) {
	g.POST("", h.Create)
	g.PUT("", h.Update)
	g.GET("/items-by-serial/:serial_num", h.GetBySerial)
	g.GET("/items-by-location", h.ListByLocation)
	g.GET("/items-by-brand", h.ListByBrand)
	g.PUT("/update-location", h.Relocate)
}

// Create intakes a unit against its RMA
func (h *Handler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.CreateInventoryRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	unit, err := h.repo.Create(ctx, req)
	if err != nil {
		return err
	}

	h.emitter.EmitUnitCreated(ctx, unit)

	return c.JSON(http.StatusCreated, unit)
}

// Update edits a unit located by serial number
func (h *Handler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.UpdateInventoryRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	if err := h.repo.Update(ctx, req); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// GetBySerial looks up one unit by serial number
func (h *Handler) GetBySerial(c echo.Context) error {
	ctx := c.Request().Context()

	serialNum := c.Param("serial_num")
	if serialNum == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "serial_num is required")
	}

	unit, err := h.repo.GetBySerial(ctx, serialNum)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, unit)
}

// ListByLocation lists the unshipped units at one location
func (h *Handler) ListByLocation(c echo.Context) error {
	ctx := c.Request().Context()

	location := c.QueryParam("location")
	if location == "" {
		return httperror.NewHTTPError(http.StatusBadRequest, "location query parameter is required")
	}

	units, err := h.repo.ListByLocation(ctx, location)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, units)
}

// ListByBrand lists a page of units for one brand
func (h *Handler) ListByBrand(c echo.Context) error {
	ctx := c.Request().Context()

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	result, err := h.repo.ListByBrand(ctx, c.QueryParam("brand"), page, limit, c.QueryParam("order"), c.QueryParam("orderBy"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

// Relocate moves a batch of units to one location
func (h *Handler) Relocate(c echo.Context) error {
	ctx := c.Request().Context()

	var req models.RelocateRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "invalid request body: %s", err.Error())
	}

	if err := h.repo.Relocate(ctx, req); err != nil {
		return err
	}

	h.emitter.EmitUnitsRelocated(ctx, req.SerialNumbers, req.Location)

	return c.NoContent(http.StatusNoContent)
}
