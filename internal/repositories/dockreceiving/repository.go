package dockreceiving

import (
	"context"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/models"
	"github.com/etcsc/warehouse/pkg/normalizers"
	"github.com/etcsc/warehouse/pkg/tracing"
)

// sortColumns is the allow-list for ORDER BY on the receiving page
var sortColumns = map[string]string{
	"date_created": "d.date_created",
	"tracking_num": "d.tracking_num",
	"carrier":      "d.carrier",
	"rma_num":      "d.rma_num",
	"rma_type":     "d.rma_type",
	"quantity":     "d.quantity",
	"user_created": "d.user_created",
}

// Repository handles dock receiving persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// normalizeTracking keeps the stored tracking number in the same form the
// inventory intake binds, so the inventory FK resolves for any casing the
// client sends.
func normalizeTracking(trackingNum *string) *string {
	if trackingNum == nil {
		return nil
	}
	normalized := normalizers.TrackingNum(*trackingNum)
	return &normalized
}

// NewRepository creates a new dock receiving repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create records a dock receipt. When a customer name is supplied and
// matches an existing customer, the entry is linked to it; an unknown name
// is not an error, the link is simply left empty.
func (r *Repository) Create(ctx context.Context, req models.CreateDockReceivingRequest) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "dockreceiving.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":       "Create",
		"tracking_num": req.TrackingNum,
	})

	var customerID *int64
	if req.CustomerName != nil && *req.CustomerName != "" {
		sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
		sb.Select("id")
		sb.From("customers")
		sb.Where(sb.Equal("name", *req.CustomerName))

		query, args := sb.Build()
		var id int64
		err := r.db.GetContext(ctx, &id, query, args...)
		if err != nil && !database.IsNotFound(err) {
			log.WithError(err).Error("Failed to resolve customer")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create dock receiving entry")
		}
		if err == nil {
			customerID = &id
		}
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto("dock_receiving").
		Cols("tracking_num", "carrier", "rma_num", "rma_type", "quantity", "user_created", "customer_id").
		Values(normalizeTracking(req.TrackingNum), req.Carrier, req.RMANum, req.RMAType, req.Quantity, req.UserCreated, customerID).
		Returning("id")

	query, args := ib.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if database.IsUniqueViolation(err, "dock_receiving_tracking_num_key") {
			return 0, httperror.NewHTTPError(http.StatusConflict, "tracking number was already received")
		}
		log.WithError(err).Error("Failed to create dock receiving entry")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create dock receiving entry")
	}

	log.WithFields(map[string]any{"id": id}).Info("Created dock receiving entry")
	return id, nil
}

// List retrieves a page of dock receipts joined with customers, newest first
// by default.
func (r *Repository) List(ctx context.Context, page, limit int, order, orderBy string) (*models.DockReceivingPage, error) {
	ctx, span := tracing.StartSpan(ctx, "dockreceiving.Repository.List")
	defer span.End()

	sortColumn, ok := sortColumns[orderBy]
	if !ok {
		sortColumn = "d.date_created"
	}
	sortOrder := "DESC"
	if strings.EqualFold(order, "asc") {
		sortOrder = "ASC"
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 5
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"d.id", "d.tracking_num", "d.carrier", "d.rma_num", "d.rma_type", "d.quantity",
		"d.customer_id", "d.user_created", "d.date_created",
		"c.name AS customer_name", "c.address AS customer_address", "c.city AS customer_city",
		"c.province AS customer_province", "c.postal_code AS customer_postal_code",
		"c.country AS customer_country", "c.phone AS customer_phone", "c.email AS customer_email",
	)
	sb.From("dock_receiving d")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "customers c", "c.id = d.customer_id")
	sb.OrderBy(sortColumn + " " + sortOrder)
	sb.Limit(limit).Offset((page - 1) * limit)

	query, args := sb.Build()
	rows := []models.DockReceivingRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list dock receiving entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list dock receiving entries")
	}

	cb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	cb.Select("COUNT(*)")
	cb.From("dock_receiving")

	countQuery, countArgs := cb.Build()
	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count dock receiving entries")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list dock receiving entries")
	}

	return &models.DockReceivingPage{Rows: rows, TotalCount: totalCount}, nil
}

// Update edits a dock receipt and, when a customer id is supplied, the
// linked customer record in the same transaction.
func (r *Repository) Update(ctx context.Context, id int64, req models.UpdateDockReceivingRequest) error {
	ctx, span := tracing.StartSpan(ctx, "dockreceiving.Repository.Update")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "Update",
		"id":     id,
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update dock receiving entry")
	}
	defer tx.Rollback(ctx)

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("dock_receiving")
	ub.Set(
		ub.Assign("tracking_num", normalizeTracking(req.TrackingNum)),
		ub.Assign("carrier", req.Carrier),
		ub.Assign("rma_num", req.RMANum),
		ub.Assign("rma_type", req.RMAType),
		ub.Assign("quantity", req.Quantity),
	)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	result, err := tx.ExecContext(txCtx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to update dock receiving entry")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update dock receiving entry")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		log.WithError(err).Error("Failed to read update result")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update dock receiving entry")
	}
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "dock receiving entry not found")
	}

	if req.CustomerID != nil {
		cb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		cb.Update("customers")
		cb.Set(
			cb.Assign("name", req.Name),
			cb.Assign("address", req.Address),
			cb.Assign("city", req.City),
			cb.Assign("province", req.Province),
			cb.Assign("country", req.Country),
			cb.Assign("postal_code", req.PostalCode),
			cb.Assign("phone", req.Phone),
			cb.Assign("email", req.Email),
		)
		cb.Where(cb.Equal("id", *req.CustomerID))

		customerQuery, customerArgs := cb.Build()
		customerResult, err := tx.ExecContext(txCtx, customerQuery, customerArgs...)
		if err != nil {
			log.WithError(err).Error("Failed to update linked customer")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update dock receiving entry")
		}
		customerRows, err := customerResult.RowsAffected()
		if err != nil {
			log.WithError(err).Error("Failed to read customer update result")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update dock receiving entry")
		}
		if customerRows == 0 {
			return httperror.NewHTTPError(http.StatusNotFound, "customer not found")
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update dock receiving entry")
	}

	return nil
}

// Delete removes a dock receipt
func (r *Repository) Delete(ctx context.Context, id int64) error {
	ctx, span := tracing.StartSpan(ctx, "dockreceiving.Repository.Delete")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("dock_receiving")
	db.Where(db.Equal("id", id))

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if database.IsForeignKeyViolation(err, "") {
			return httperror.NewHTTPError(http.StatusConflict, "dock receiving entry has inventory units attached")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete dock receiving entry")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete dock receiving entry")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read delete result")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete dock receiving entry")
	}
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "dock receiving entry not found")
	}

	return nil
}

// Carriers retrieves the distinct carrier names for the receiving form
func (r *Repository) Carriers(ctx context.Context) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "dockreceiving.Repository.Carriers")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Distinct().Select("name")
	sb.From("carriers")
	sb.OrderBy("name")

	query, args := sb.Build()
	carriers := []string{}
	if err := r.db.SelectContext(ctx, &carriers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list carriers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list carriers")
	}

	return carriers, nil
}
