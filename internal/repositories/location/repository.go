package location

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

// occupancyQuery unions the registered locations with a synthetic row for
// units that have no location. The synthetic row always sorts first.
const occupancyQuery = `
	SELECT l.name, COALESCE(l.description, '') AS description, COUNT(inv.id) AS item_count
	FROM locations l
	LEFT JOIN inventory inv ON inv.location_current = l.name AND inv.shipped = FALSE
	GROUP BY l.name, l.description
	UNION ALL
	SELECT $1 AS name, 'Units without an assigned location' AS description, COUNT(inv.id) AS item_count
	FROM inventory inv
	WHERE inv.location_current IS NULL AND inv.shipped = FALSE
	ORDER BY CASE WHEN name = $1 THEN 0 ELSE 1 END, name`

// Repository handles the location registry
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new location repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create registers a new storage location
func (r *Repository) Create(ctx context.Context, req models.CreateLocationRequest) (*models.Location, error) {
	ctx, span := tracing.StartSpan(ctx, "location.Repository.Create")
	defer span.End()

	if req.Name == models.UnassignedLocation {
		return nil, httperror.NewHTTPErrorf(http.StatusBadRequest, "%s is reserved", models.UnassignedLocation)
	}

	ib := database.NewInsertBuilder()
	ib.InsertInto("locations").
		Cols("name", "description").
		Values(req.Name, req.Description).
		Returning("id")

	query, args := ib.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if database.IsUniqueViolation(err, "locations_name_key") {
			return nil, httperror.NewHTTPErrorf(http.StatusConflict, "location %s already exists", req.Name)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create location")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create location")
	}

	return &models.Location{ID: id, Name: req.Name, Description: req.Description}, nil
}

// Delete removes a location by name. Units still referencing the name keep
// it as a free-form value.
func (r *Repository) Delete(ctx context.Context, name string) error {
	ctx, span := tracing.StartSpan(ctx, "location.Repository.Delete")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewDeleteBuilder()
	db.DeleteFrom("locations")
	db.Where(db.Equal("name", name))

	query, args := db.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to delete location")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete location")
	}

	rows, err := result.RowsAffected()
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read delete result")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to delete location")
	}
	if rows == 0 {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "no location named %s", name)
	}

	return nil
}

// List retrieves every location with its unshipped unit count, including the
// synthetic Unassigned row.
func (r *Repository) List(ctx context.Context) ([]models.LocationOccupancy, error) {
	ctx, span := tracing.StartSpan(ctx, "location.Repository.List")
	defer span.End()

	locations := []models.LocationOccupancy{}
	if err := r.db.SelectContext(ctx, &locations, occupancyQuery, models.UnassignedLocation); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list locations")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list locations")
	}

	return locations, nil
}
