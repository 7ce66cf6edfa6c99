package shippingrate

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"
	"github.com/redis/go-redis/v9"

	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/models"
	"github.com/etcsc/warehouse/pkg/tracing"
)

// rateColumns is the allow-list of selectable rate columns. The column name
// is interpolated into SQL, so nothing outside this map ever reaches a query.
var rateColumns = map[string]bool{
	"first_cost":  true,
	"second_cost": true,
}

// Repository serves the shipping rate table. Rates change rarely, so reads
// go through a short-lived redis cache.
type Repository struct {
	db     database.DB
	cache  *redis.Client
	logger ectologger.Logger
	ttl    time.Duration
}

// NewRepository creates a new shipping rate repository. cache may be nil, in
// which case every read hits the database.
func NewRepository(db database.DB, cache *redis.Client, logger ectologger.Logger, ttl time.Duration) *Repository {
	return &Repository{
		db:     db,
		cache:  cache,
		logger: logger,
		ttl:    ttl,
	}
}

// Rates retrieves the rate schedule for one cost column
func (r *Repository) Rates(ctx context.Context, column string) ([]models.ShippingRate, error) {
	ctx, span := tracing.StartSpan(ctx, "shippingrate.Repository.Rates")
	defer span.End()

	if !rateColumns[column] {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown rate column %s", column)
	}

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method": "Rates",
		"column": column,
	})

	cacheKey := "shipping_rates:" + column
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, cacheKey).Bytes()
		if err == nil {
			var rates []models.ShippingRate
			if err := json.Unmarshal(cached, &rates); err == nil {
				return rates, nil
			}
		} else if err != redis.Nil {
			log.WithError(err).Warn("Failed to read rate cache")
		}
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("weight_lb", column+" AS rate")
	sb.From("shipping_rates")
	sb.OrderBy("weight_lb")

	query, args := sb.Build()
	rates := []models.ShippingRate{}
	if err := r.db.SelectContext(ctx, &rates, query, args...); err != nil {
		log.WithError(err).Error("Failed to query shipping rates")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query shipping rates")
	}

	if r.cache != nil {
		if encoded, err := json.Marshal(rates); err == nil {
			if err := r.cache.Set(ctx, cacheKey, encoded, r.ttl).Err(); err != nil {
				log.WithError(err).Warn("Failed to write rate cache")
			}
		}
	}

	return rates, nil
}
