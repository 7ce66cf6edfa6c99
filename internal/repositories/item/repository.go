package item

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/models"
	"github.com/etcsc/warehouse/pkg/tracing"
)

// filterColumns is the allow-list for item lookup filters
var filterColumns = map[string]bool{
	"model":        true,
	"part_num":     true,
	"brand":        true,
	"product_type": true,
	"upc":          true,
	"asin":         true,
}

// Repository handles catalog item persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new item repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// List retrieves catalog items matching the given field filters. Unknown
// filter keys are dropped.
func (r *Repository) List(ctx context.Context, filters map[string]string) ([]models.Item, error) {
	ctx, span := tracing.StartSpan(ctx, "item.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "model", "part_num", "brand", "product_type", "upc", "asin", "description", "date_released", "msrp")
	sb.From("items")

	for key, value := range filters {
		if !filterColumns[key] || value == "" {
			continue
		}
		sb.Where(sb.Like(key, "%"+value+"%"))
	}

	query, args := sb.Build()
	items := []models.Item{}
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list items")
	}

	return items, nil
}

// Search finds up to 10 items whose model contains the given fragment, for
// the pick-list typeahead.
func (r *Repository) Search(ctx context.Context, model string) ([]models.ItemRef, error) {
	ctx, span := tracing.StartSpan(ctx, "item.Repository.Search")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "model")
	sb.From("items")
	sb.Where(sb.Like("model", "%"+model+"%"))
	sb.Limit(10)

	query, args := sb.Build()
	refs := []models.ItemRef{}
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to search items")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to search items")
	}

	return refs, nil
}

// Update edits one catalog item
func (r *Repository) Update(ctx context.Context, id int64, req models.UpdateItemRequest) error {
	ctx, span := tracing.StartSpan(ctx, "item.Repository.Update")
	defer span.End()

	ub := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	ub.Update("items")
	ub.Set(
		ub.Assign("upc", req.UPC),
		ub.Assign("asin", req.ASIN),
		ub.Assign("model", req.Model),
		ub.Assign("brand", req.Brand),
		ub.Assign("product_type", req.ProductType),
		ub.Assign("description", req.Description),
		ub.Assign("date_released", req.DateReleased),
		ub.Assign("msrp", req.MSRP),
	)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to update item")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update item")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read update result")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update item")
	}
	if rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "item not found")
	}

	return nil
}
