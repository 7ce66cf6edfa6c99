package inventory

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/metrics"
	"github.com/etcsc/warehouse/pkg/models"
	"github.com/etcsc/warehouse/pkg/normalizers"
	"github.com/etcsc/warehouse/pkg/tracing"
)

const massMerchantRMAType = "Mass Merchant"

var sortColumns = map[string]string{
	"id":                "inv.id",
	"serial_num":        "inv.serial_num",
	"rma_num":           "inv.rma_num",
	"status":            "inv.status",
	"grade":             "inv.grade",
	"location_current":  "inv.location_current",
	"date_rma_received": "inv.date_rma_received",
	"model":             "i.model",
}

// detailColumns is the joined column set shared by every unit lookup
var detailColumns = []string{
	"inv.id", "inv.rma_num", "inv.serial_num", "inv.tracking_num", "inv.item_id",
	"inv.location_current", "inv.location_previous", "inv.grade", "inv.status",
	"inv.progress", "inv.ownership", "inv.lamp_hours", "inv.missing_accessories",
	"inv.notes", "inv.shipped", "inv.shipout_id", "inv.date_shipped",
	"inv.date_rma_received", "inv.date_shelved", "inv.date_updated",
	"inv.user_created", "inv.user_last_updated",
	"i.model", "i.part_num", "i.brand", "i.product_type", "i.upc", "i.asin",
	"i.description", "i.date_released", "i.msrp",
	"d.date_created AS dock_received_at",
}

// Repository handles inventory unit persistence
type Repository struct {
	db               database.DB
	logger           ectologger.Logger
	allowOverReceipt bool
}

// NewRepository creates a new inventory repository
func NewRepository(db database.DB, logger ectologger.Logger, allowOverReceipt bool) *Repository {
	return &Repository{
		db:               db,
		logger:           logger,
		allowOverReceipt: allowOverReceipt,
	}
}

func detailSelect() *sqlbuilder.SelectBuilder {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(detailColumns...)
	sb.From("inventory inv")
	sb.Join("items i", "i.id = inv.item_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "dock_receiving d", "d.tracking_num = inv.tracking_num")
	return sb
}

// Create intakes one unit. The item must already exist in the catalog and
// the tracking number must reference a dock receipt. The unit inherits its
// RMA type's ownership rule: Mass Merchant units are owned by the item's
// brand. The matching receiving entry's received quantity is bumped in the
// same transaction.
func (r *Repository) Create(ctx context.Context, req models.CreateInventoryRequest) (*models.InventoryUnitDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Create")
	defer span.End()

	serialNum := normalizers.SerialNum(req.SerialNum)
	trackingNum := normalizers.TrackingNum(req.TrackingNum)

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Create",
		"serial_num": serialNum,
		"rma_num":    req.RMANum,
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create inventory unit")
	}
	defer tx.Rollback(ctx)

	ib := sqlbuilder.PostgreSQL.NewSelectBuilder()
	ib.Select("brand")
	ib.From("items")
	ib.Where(ib.Equal("id", req.ItemID))

	itemQuery, itemArgs := ib.Build()
	var brand *string
	if err := tx.GetContext(txCtx, &brand, itemQuery, itemArgs...); err != nil {
		if database.IsNotFound(err) {
			return nil, httperror.NewHTTPError(http.StatusBadRequest, "item not found")
		}
		log.WithError(err).Error("Failed to look up item")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create inventory unit")
	}

	rb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	rb.Select("rma_type", "quantity_reported", "quantity_received")
	rb.From("rma_receiving")
	rb.Where(
		rb.Equal("rma_num", req.RMANum),
		rb.Equal("item_id", req.ItemID),
	)

	rmaQuery, rmaArgs := rb.Build()
	var receiving struct {
		RMAType          *string `db:"rma_type"`
		QuantityReported int     `db:"quantity_reported"`
		QuantityReceived int     `db:"quantity_received"`
	}
	hasReceiving := true
	if err := tx.GetContext(txCtx, &receiving, rmaQuery, rmaArgs...); err != nil {
		if !database.IsNotFound(err) {
			log.WithError(err).Error("Failed to look up receiving entry")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create inventory unit")
		}
		hasReceiving = false
	}

	if hasReceiving && !r.allowOverReceipt && receiving.QuantityReceived >= receiving.QuantityReported {
		return nil, httperror.NewHTTPErrorf(http.StatusConflict, "RMA %s has already received all %d reported units", req.RMANum, receiving.QuantityReported)
	}

	var ownership *string
	if hasReceiving && receiving.RMAType != nil && *receiving.RMAType == massMerchantRMAType {
		ownership = brand
	}

	insb := database.NewInsertBuilder()
	insb.InsertInto("inventory").
		Cols(
			"rma_num", "serial_num", "tracking_num", "item_id", "location_current",
			"grade", "status", "progress", "ownership", "lamp_hours",
			"missing_accessories", "notes", "user_created",
		).
		Values(
			req.RMANum, serialNum, trackingNum, req.ItemID, req.LocationCurrent,
			req.Grade, req.Status, req.Progress, ownership, req.LampHours,
			req.MissingAccessories, req.Notes, req.UserCreated,
		)

	insertQuery, insertArgs := insb.Build()
	if _, err := tx.ExecContext(txCtx, insertQuery, insertArgs...); err != nil {
		if database.IsUniqueViolation(err, "inventory_serial_num_key") {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "serial number %s already exists", serialNum)
		}
		if database.IsForeignKeyViolation(err, "inventory_tracking_num_fkey") {
			return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "tracking number %s was never received at the dock", trackingNum)
		}
		log.WithError(err).Error("Failed to insert inventory unit")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create inventory unit")
	}

	if hasReceiving {
		ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		ub.Update("rma_receiving")
		ub.Set(ub.Incr("quantity_received"))
		ub.Where(
			ub.Equal("rma_num", req.RMANum),
			ub.Equal("item_id", req.ItemID),
		)

		updateQuery, updateArgs := ub.Build()
		if _, err := tx.ExecContext(txCtx, updateQuery, updateArgs...); err != nil {
			log.WithError(err).Error("Failed to bump received quantity")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create inventory unit")
		}
	}

	sb := detailSelect()
	sb.Where(sb.Equal("inv.serial_num", serialNum))

	detailQuery, detailArgs := sb.Build()
	var detail models.InventoryUnitDetail
	if err := tx.GetContext(txCtx, &detail, detailQuery, detailArgs...); err != nil {
		log.WithError(err).Error("Failed to read back inventory unit")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create inventory unit")
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create inventory unit")
	}

	metrics.UnitsReceivedTotal.WithLabelValues("rma").Inc()
	log.WithFields(map[string]any{"id": detail.ID}).Info("Created inventory unit")

	return &detail, nil
}

// Update edits a unit located by serial number. The item must belong to the
// named brand before anything is written.
func (r *Repository) Update(ctx context.Context, req models.UpdateInventoryRequest) error {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Update")
	defer span.End()

	serialNum := normalizers.SerialNum(req.SerialNum)

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Update",
		"serial_num": serialNum,
	})

	ib := sqlbuilder.PostgreSQL.NewSelectBuilder()
	ib.Select("COUNT(*)")
	ib.From("items")
	ib.Where(
		ib.Equal("id", req.ItemID),
		ib.Equal("brand", req.Brand),
	)

	itemQuery, itemArgs := ib.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, itemQuery, itemArgs...); err != nil {
		log.WithError(err).Error("Failed to verify item brand")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update inventory unit")
	}
	if count == 0 {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "item %d does not belong to brand %s", req.ItemID, req.Brand)
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("inventory")
	ub.Set(
		ub.Assign("rma_num", req.RMANum),
		ub.Assign("tracking_num", normalizers.TrackingNum(req.TrackingNum)),
		ub.Assign("item_id", req.ItemID),
		ub.Assign("status", req.Status),
		ub.Assign("progress", req.Progress),
		ub.Assign("grade", req.Grade),
		ub.Assign("lamp_hours", req.LampHours),
		ub.Assign("location_current", req.LocationCurrent),
		ub.Assign("notes", req.Notes),
		ub.Assign("user_last_updated", req.User),
		"date_updated = NOW()",
	)
	ub.Where(ub.Equal("serial_num", serialNum))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to update inventory unit")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update inventory unit")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		log.WithError(err).Error("Failed to read update result")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update inventory unit")
	}
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "no inventory unit with serial number %s", serialNum)
	}

	return nil
}

// Relocate moves a batch of units to one location. Units already at the
// target keep their previous location; moved units record where they came
// from and keep their original shelving time.
func (r *Repository) Relocate(ctx context.Context, req models.RelocateRequest) error {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.Relocate")
	defer span.End()

	serials := make([]string, 0, len(req.SerialNumbers))
	for _, s := range req.SerialNumbers {
		serials = append(serials, normalizers.SerialNum(s))
	}

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":   "Relocate",
		"location": req.Location,
		"count":    len(serials),
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to relocate inventory units")
	}
	defer tx.Rollback(ctx)

	const shiftQuery = `
		UPDATE inventory
		SET location_previous = location_current
		WHERE serial_num = ANY($1)
		AND location_current IS DISTINCT FROM $2`
	if _, err := tx.ExecContext(txCtx, shiftQuery, pq.Array(serials), req.Location); err != nil {
		log.WithError(err).Error("Failed to record previous locations")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to relocate inventory units")
	}

	const moveQuery = `
		UPDATE inventory
		SET location_current = $2,
			date_shelved = COALESCE(date_shelved, NOW()),
			user_last_updated = $3,
			date_updated = NOW()
		WHERE serial_num = ANY($1)`
	result, err := tx.ExecContext(txCtx, moveQuery, pq.Array(serials), req.Location, req.User)
	if err != nil {
		log.WithError(err).Error("Failed to relocate inventory units")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to relocate inventory units")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		log.WithError(err).Error("Failed to read relocate result")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to relocate inventory units")
	}
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "no inventory units matched the given serial numbers")
	}

	if err := tx.Commit(txCtx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to relocate inventory units")
	}

	log.WithFields(map[string]any{"moved": rows}).Info("Relocated inventory units")
	return nil
}

// GetBySerial retrieves one joined unit by serial number
func (r *Repository) GetBySerial(ctx context.Context, serialNum string) (*models.InventoryUnitDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.GetBySerial")
	defer span.End()

	serialNum = normalizers.SerialNum(serialNum)

	sb := detailSelect()
	sb.Where(sb.Equal("inv.serial_num", serialNum))

	query, args := sb.Build()
	var detail models.InventoryUnitDetail
	if err := r.db.GetContext(ctx, &detail, query, args...); err != nil {
		if database.IsNotFound(err) {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "no inventory unit with serial number %s", serialNum)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get inventory unit")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get inventory unit")
	}

	return &detail, nil
}

// ListByLocation retrieves the unshipped units at one location. The
// Unassigned pseudo-location matches units with no location at all.
func (r *Repository) ListByLocation(ctx context.Context, location string) ([]models.InventoryUnitDetail, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.ListByLocation")
	defer span.End()

	sb := detailSelect()
	if location == models.UnassignedLocation {
		sb.Where(sb.IsNull("inv.location_current"))
	} else {
		sb.Where(sb.Equal("inv.location_current", location))
	}
	sb.Where(sb.Equal("inv.shipped", false))
	sb.OrderBy("i.model", "inv.serial_num")

	query, args := sb.Build()
	units := []models.InventoryUnitDetail{}
	if err := r.db.SelectContext(ctx, &units, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list inventory by location")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list inventory units")
	}

	return units, nil
}

// ListByBrand retrieves a page of joined units for one brand
func (r *Repository) ListByBrand(ctx context.Context, brand string, page, limit int, order, orderBy string) (*models.InventoryPage, error) {
	ctx, span := tracing.StartSpan(ctx, "inventory.Repository.ListByBrand")
	defer span.End()

	sortColumn, ok := sortColumns[orderBy]
	if !ok {
		sortColumn = "inv.id"
	}
	sortOrder := "ASC"
	if strings.EqualFold(order, "desc") {
		sortOrder = "DESC"
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 25
	}

	sb := detailSelect()
	if brand != "" && brand != "All" {
		sb.Where(sb.Equal("i.brand", brand))
	}
	sb.OrderBy(sortColumn + " " + sortOrder)
	sb.Limit(limit).Offset((page - 1) * limit)

	query, args := sb.Build()
	rows := []models.InventoryUnitDetail{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list inventory by brand")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list inventory units")
	}

	cb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	cb.Select("COUNT(*)")
	cb.From("inventory inv")
	cb.Join("items i", "i.id = inv.item_id")
	if brand != "" && brand != "All" {
		cb.Where(cb.Equal("i.brand", brand))
	}

	countQuery, countArgs := cb.Build()
	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count inventory by brand")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list inventory units")
	}

	return &models.InventoryPage{Rows: rows, TotalCount: totalCount}, nil
}
