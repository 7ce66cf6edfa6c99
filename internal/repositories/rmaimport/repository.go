package rmaimport

import (
	"context"
	"fmt"
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

// Repository handles RMA manifest imports and receiving lookups
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new RMA import repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Import reconciles a batch of manifest rows against the item catalog inside
// a single transaction. Every row in the batch shares one import id. Rows
// whose (model, part number) pair has no catalog match are reported back as
// skipped instead of failing the batch; a repeated (rma_num, item_id) pair
// bumps the existing entry's reported quantity rather than inserting a
// duplicate.
func (r *Repository) Import(ctx context.Context, rows []models.RMAImportRow, userID string) (int64, *models.RMAImportResult, error) {
	ctx, span := tracing.StartSpan(ctx, "rmaimport.Repository.Import")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":    "Import",
		"row_count": len(rows),
	})

	txCtx, tx, err := r.db.GetTx(ctx, nil)
	if err != nil {
		return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to import RMA manifest")
	}
	defer tx.Rollback(ctx)

	var importID int64
	if err := tx.GetContext(txCtx, &importID, "SELECT COALESCE(MAX(import_id), 0) + 1 FROM rma_receiving"); err != nil {
		log.WithError(err).Error("Failed to allocate import id")
		return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to import RMA manifest")
	}

	result := &models.RMAImportResult{SkippedEntries: []string{}}

	for _, row := range rows {
		partNum := normalizers.PartNum(row.PartNum)

		sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
		sb.Select("id")
		sb.From("items")
		sb.Where(
			sb.Equal("model", row.Model),
			sb.Equal("part_num", partNum),
		)

		query, args := sb.Build()
		var itemID int64
		err := tx.GetContext(txCtx, &itemID, query, args...)
		if database.IsNotFound(err) {
			result.SkippedEntries = append(result.SkippedEntries, fmt.Sprintf("Model: %s, Part No: %s not found.", row.Model, row.PartNum))
			metrics.RMALinesImportedTotal.WithLabelValues("skipped").Inc()
			continue
		}
		if err != nil {
			log.WithError(err).Error("Failed to resolve manifest item")
			return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to import RMA manifest")
		}

		eb := sqlbuilder.PostgreSQL.NewSelectBuilder()
		eb.Select("id")
		eb.From("rma_receiving")
		eb.Where(
			eb.Equal("rma_num", row.RMANum),
			eb.Equal("item_id", itemID),
		)

		existsQuery, existsArgs := eb.Build()
		var existingID int64
		err = tx.GetContext(txCtx, &existingID, existsQuery, existsArgs...)
		switch {
		case err == nil:
			ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
			ub.Update("rma_receiving")
			ub.Set(ub.Incr("quantity_reported"))
			ub.Where(ub.Equal("id", existingID))

			updateQuery, updateArgs := ub.Build()
			if _, err := tx.ExecContext(txCtx, updateQuery, updateArgs...); err != nil {
				log.WithError(err).Error("Failed to bump reported quantity")
				return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to import RMA manifest")
			}
		case database.IsNotFound(err):
			ib := database.NewInsertBuilder()
			ib.InsertInto("rma_receiving").
				Cols("rma_num", "rma_type", "item_id", "user_id", "quantity_reported", "import_id").
				Values(row.RMANum, nullable(row.RMAType), itemID, userID, 1, importID)

			insertQuery, insertArgs := ib.Build()
			if _, err := tx.ExecContext(txCtx, insertQuery, insertArgs...); err != nil {
				log.WithError(err).Error("Failed to insert receiving entry")
				return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to import RMA manifest")
			}
		default:
			log.WithError(err).Error("Failed to check for existing receiving entry")
			return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to import RMA manifest")
		}

		result.AddedCount++
		metrics.RMALinesImportedTotal.WithLabelValues("added").Inc()
	}

	if err := tx.Commit(txCtx); err != nil {
		log.WithError(err).Error("Failed to commit import")
		return 0, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to import RMA manifest")
	}

	log.WithFields(map[string]any{
		"import_id":     importID,
		"added_count":   result.AddedCount,
		"skipped_count": len(result.SkippedEntries),
	}).Info("Imported RMA manifest")

	return importID, result, nil
}

// RMANumbers retrieves the distinct RMA numbers present in receiving
func (r *Repository) RMANumbers(ctx context.Context) ([]string, error) {
	ctx, span := tracing.StartSpan(ctx, "rmaimport.Repository.RMANumbers")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Distinct().Select("rma_num")
	sb.From("rma_receiving")
	sb.OrderBy("rma_num")

	query, args := sb.Build()
	nums := []string{}
	if err := r.db.SelectContext(ctx, &nums, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list RMA numbers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list RMA numbers")
	}

	return nums, nil
}

// InventoryItems retrieves the receiving entries for one RMA joined with
// their catalog items, optionally narrowed to a brand.
func (r *Repository) InventoryItems(ctx context.Context, rmaNum, brand string) ([]models.RMAInventoryItem, error) {
	ctx, span := tracing.StartSpan(ctx, "rmaimport.Repository.InventoryItems")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"r.id", "r.rma_num", "r.rma_type", "r.item_id", "r.date_created", "r.import_id", "r.user_id",
		"i.model", "i.part_num", "i.product_type",
		"r.quantity_reported", "r.quantity_received",
	)
	sb.From("rma_receiving r")
	sb.Join("items i", "i.id = r.item_id")
	sb.Where(sb.Equal("r.rma_num", rmaNum))
	if brand != "" && brand != "All" {
		sb.Where(sb.Equal("i.brand", brand))
	}
	sb.OrderBy("i.model")

	query, args := sb.Build()
	items := []models.RMAInventoryItem{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list RMA inventory items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list RMA inventory items")
	}

	return items, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
