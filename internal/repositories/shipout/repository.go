package shipout

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/metrics"
	"github.com/etcsc/warehouse/pkg/models"
	"github.com/etcsc/warehouse/pkg/normalizers"
	"github.com/etcsc/warehouse/pkg/tracing"
)

// Repository handles shipout transactions and their pick lists
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new shipout repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// getStatus reads a transaction's status inside the given transaction scope.
// Returns 404 when the transaction does not exist.
func (r *Repository) getStatus(ctx context.Context, tx database.Tx, transactionID int64) (string, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("status")
	sb.From("shipout_transactions")
	sb.Where(sb.Equal("id", transactionID))

	query, args := sb.Build()
	var status string
	if err := tx.GetContext(ctx, &status, query, args...); err != nil {
		if database.IsNotFound(err) {
			return "", httperror.NewHTTPErrorf(http.StatusNotFound, "no shipout transaction %d", transactionID)
		}
		return "", err
	}
	return status, nil
}

// SavePickList creates a Pending transaction or replaces the header and
// lines of an existing one. Every line's model must resolve to a catalog
// item; a single miss aborts the whole call.
func (r *Repository) SavePickList(ctx context.Context, req models.SavePickListRequest) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "shipout.Repository.SavePickList")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":      "SavePickList",
		"customer_id": req.CustomerID,
		"line_count":  len(req.Items),
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save pick list")
	}
	defer tx.Rollback(ctx)

	var transactionID int64
	if req.TransactionID != nil {
		transactionID = *req.TransactionID

		status, err := r.getStatus(txCtx, tx, transactionID)
		if err != nil {
			if httperror.IsHTTPError(err) {
				return 0, err
			}
			log.WithError(err).Error("Failed to read transaction status")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save pick list")
		}
		if status == models.ShipoutStatusShipped {
			return 0, httperror.NewHTTPErrorf(http.StatusConflict, "shipout transaction %d has already shipped", transactionID)
		}

		ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		ub.Update("shipout_transactions")
		ub.Set(
			ub.Assign("customer_id", req.CustomerID),
			ub.Assign("created_by", req.User),
			ub.Assign("transaction_type", req.TransactionType),
			ub.Assign("courier", req.Courier),
			ub.Assign("license_plate", req.LicensePlate),
		)
		ub.Where(ub.Equal("id", transactionID))

		updateQuery, updateArgs := ub.Build()
		if _, err := tx.ExecContext(txCtx, updateQuery, updateArgs...); err != nil {
			log.WithError(err).Error("Failed to update transaction header")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save pick list")
		}

		db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
		db.DeleteFrom("shipout_items")
		db.Where(db.Equal("transaction_id", transactionID))

		deleteQuery, deleteArgs := db.Build()
		if _, err := tx.ExecContext(txCtx, deleteQuery, deleteArgs...); err != nil {
			log.WithError(err).Error("Failed to clear pick list lines")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save pick list")
		}
	} else {
		ib := database.NewInsertBuilder()
		ib.InsertInto("shipout_transactions").
			Cols("customer_id", "created_by", "transaction_type", "courier", "license_plate", "status").
			Values(req.CustomerID, req.User, req.TransactionType, req.Courier, req.LicensePlate, models.ShipoutStatusPending).
			Returning("id")

		insertQuery, insertArgs := ib.Build()
		if err := tx.GetContext(txCtx, &transactionID, insertQuery, insertArgs...); err != nil {
			if database.IsForeignKeyViolation(err, "shipout_transactions_customer_id_fkey") {
				return 0, httperror.NewHTTPErrorf(http.StatusBadRequest, "customer %d not found", req.CustomerID)
			}
			log.WithError(err).Error("Failed to create shipout transaction")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save pick list")
		}
	}

	for _, line := range req.Items {
		sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
		sb.Select("id")
		sb.From("items")
		sb.Where(sb.Equal("model", line.Model))

		itemQuery, itemArgs := sb.Build()
		var itemID int64
		if err := tx.GetContext(txCtx, &itemID, itemQuery, itemArgs...); err != nil {
			if database.IsNotFound(err) {
				return 0, httperror.NewHTTPErrorf(http.StatusBadRequest, "model %s not found", line.Model)
			}
			log.WithError(err).Error("Failed to resolve pick list model")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save pick list")
		}

		ib := database.NewInsertBuilder()
		ib.InsertInto("shipout_items").
			Cols("transaction_id", "item_id", "requested_quantity", "skid_number", "length", "width", "height", "weight").
			Values(transactionID, itemID, line.Quantity, line.SkidNumber, line.Length, line.Width, line.Height, line.Weight)

		lineQuery, lineArgs := ib.Build()
		if _, err := tx.ExecContext(txCtx, lineQuery, lineArgs...); err != nil {
			log.WithError(err).Error("Failed to insert pick list line")
			return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save pick list")
		}
	}

	if err := tx.Commit(txCtx); err != nil {
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to save pick list")
	}

	log.WithFields(map[string]any{"transaction_id": transactionID}).Info("Saved pick list")
	return transactionID, nil
}

// Update edits the header of a not-yet-shipped transaction
func (r *Repository) Update(ctx context.Context, transactionID int64, req models.UpdateShipoutRequest) error {
	ctx, span := tracing.StartSpan(ctx, "shipout.Repository.Update")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":         "Update",
		"transaction_id": transactionID,
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update shipout transaction")
	}
	defer tx.Rollback(ctx)

	status, err := r.getStatus(txCtx, tx, transactionID)
	if err != nil {
		if httperror.IsHTTPError(err) {
			return err
		}
		log.WithError(err).Error("Failed to read transaction status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update shipout transaction")
	}
	if status == models.ShipoutStatusShipped {
		return httperror.NewHTTPErrorf(http.StatusConflict, "shipout transaction %d has already shipped", transactionID)
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("shipout_transactions")
	ub.Set(
		ub.Assign("customer_id", req.CustomerID),
		ub.Assign("created_by", req.User),
		ub.Assign("transaction_type", req.TransactionType),
		ub.Assign("courier", req.Courier),
		ub.Assign("license_plate", req.LicensePlate),
	)
	ub.Where(ub.Equal("id", transactionID))

	query, args := ub.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		log.WithError(err).Error("Failed to update shipout transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update shipout transaction")
	}

	if err := tx.Commit(txCtx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update shipout transaction")
	}

	return nil
}

// Complete finalizes a Pending transaction: each named unit is stamped
// shipped and linked to the transaction, then the transaction moves to its
// terminal state. All or nothing.
func (r *Repository) Complete(ctx context.Context, req models.CompleteShipoutRequest) error {
	ctx, span := tracing.StartSpan(ctx, "shipout.Repository.Complete")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":         "Complete",
		"transaction_id": req.TransactionID,
		"unit_count":     len(req.Items),
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete shipout")
	}
	defer tx.Rollback(ctx)

	status, err := r.getStatus(txCtx, tx, req.TransactionID)
	if err != nil {
		if httperror.IsHTTPError(err) {
			return err
		}
		log.WithError(err).Error("Failed to read transaction status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete shipout")
	}
	if status == models.ShipoutStatusShipped {
		return httperror.NewHTTPErrorf(http.StatusConflict, "shipout transaction %d has already shipped", req.TransactionID)
	}

	for _, unit := range req.Items {
		serialNum := normalizers.SerialNum(unit.SerialNum)

		ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
		ub.Update("inventory")
		ub.Set(
			ub.Assign("shipped", true),
			ub.Assign("shipout_id", req.TransactionID),
			"date_shipped = NOW()",
		)
		ub.Where(ub.Equal("serial_num", serialNum))

		query, args := ub.Build()
		result, err := tx.ExecContext(txCtx, query, args...)
		if err != nil {
			log.WithError(err).Error("Failed to mark unit shipped")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete shipout")
		}
		rows, err := result.RowsAffected()
		if err != nil {
			log.WithError(err).Error("Failed to read unit update result")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete shipout")
		}
		if rows == 0 {
			return httperror.NewHTTPErrorf(http.StatusBadRequest, "no inventory unit with serial number %s", serialNum)
		}
	}

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("shipout_transactions")
	ub.Set(ub.Assign("status", models.ShipoutStatusShipped))
	ub.Where(ub.Equal("id", req.TransactionID))

	query, args := ub.Build()
	if _, err := tx.ExecContext(txCtx, query, args...); err != nil {
		log.WithError(err).Error("Failed to close shipout transaction")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete shipout")
	}

	if err := tx.Commit(txCtx); err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to complete shipout")
	}

	metrics.ShipoutsCompletedTotal.Inc()
	log.Info("Completed shipout")
	return nil
}

// List retrieves every transaction joined with its customer, newest first
func (r *Repository) List(ctx context.Context) ([]models.ShipoutTransactionRow, error) {
	ctx, span := tracing.StartSpan(ctx, "shipout.Repository.List")
	defer span.End()

	return r.list(ctx, "")
}

// ListPending retrieves the transactions still open for picking
func (r *Repository) ListPending(ctx context.Context) ([]models.ShipoutTransactionRow, error) {
	ctx, span := tracing.StartSpan(ctx, "shipout.Repository.ListPending")
	defer span.End()

	return r.list(ctx, models.ShipoutStatusPending)
}

func (r *Repository) list(ctx context.Context, status string) ([]models.ShipoutTransactionRow, error) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"t.id", "t.customer_id", "t.created_by", "t.transaction_type",
		"t.courier", "t.license_plate", "t.status", "t.date_created",
		"c.name AS customer_name",
	)
	sb.From("shipout_transactions t")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "customers c", "c.id = t.customer_id")
	if status != "" {
		sb.Where(sb.Equal("t.status", status))
	}
	sb.OrderBy("t.date_created DESC")

	query, args := sb.Build()
	rows := []models.ShipoutTransactionRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list shipout transactions")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list shipout transactions")
	}

	return rows, nil
}

// Lines retrieves the pick-list lines for one transaction. Skid transactions
// report skid numbers; the rest report package dimensions and the serials of
// the units shipped against each line.
func (r *Repository) Lines(ctx context.Context, transactionID int64) ([]models.ShipoutLine, error) {
	ctx, span := tracing.StartSpan(ctx, "shipout.Repository.Lines")
	defer span.End()

	tb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	tb.Select("transaction_type")
	tb.From("shipout_transactions")
	tb.Where(tb.Equal("id", transactionID))

	typeQuery, typeArgs := tb.Build()
	var transactionType string
	if err := r.db.GetContext(ctx, &transactionType, typeQuery, typeArgs...); err != nil {
		if database.IsNotFound(err) {
			return nil, httperror.NewHTTPErrorf(http.StatusNotFound, "no shipout transaction %d", transactionID)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read transaction type")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list shipout lines")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	if transactionType == models.TransactionTypeSkid {
		sb.Select(
			"si.item_id", "i.model", "si.requested_quantity AS quantity", "si.skid_number",
		)
		sb.From("shipout_items si")
		sb.Join("items i", "i.id = si.item_id")
		sb.Where(sb.Equal("si.transaction_id", transactionID))
		sb.OrderBy("si.skid_number", "i.model")
	} else {
		sb.Select(
			"si.item_id", "i.model", "si.requested_quantity AS quantity",
			"si.length", "si.width", "si.height", "si.weight",
			"inv.serial_num",
		)
		sb.From("shipout_items si")
		sb.Join("items i", "i.id = si.item_id")
		sb.JoinWithOption(sqlbuilder.LeftJoin, "inventory inv",
			"inv.shipout_id = si.transaction_id AND inv.item_id = si.item_id")
		sb.Where(sb.Equal("si.transaction_id", transactionID))
		sb.OrderBy("i.model", "inv.serial_num")
	}

	query, args := sb.Build()
	lines := []models.ShipoutLine{}
	if err := r.db.SelectContext(ctx, &lines, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list shipout lines")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list shipout lines")
	}

	return lines, nil
}
