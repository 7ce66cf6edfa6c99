package customer

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

// Repository handles customer persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new customer repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// List retrieves all customers for lookup
func (r *Repository) List(ctx context.Context) ([]models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "name", "address", "city", "province", "postal_code", "country", "phone", "email")
	sb.From("customers")
	sb.OrderBy("name")

	query, args := sb.Build()
	customers := []models.Customer{}
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list customers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}

	return customers, nil
}

// Create inserts a new customer
func (r *Repository) Create(ctx context.Context, req models.UpsertCustomerRequest) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Create")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib.InsertInto("customers").
		Cols("name", "address", "city", "province", "postal_code", "country", "phone", "email").
		Values(req.Name, req.Address, req.City, req.Province, req.PostalCode, req.Country, req.Phone, req.Email).
		Returning("id")

	query, args := ib.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if database.IsUniqueViolation(err, "customers_name_key") {
			return 0, httperror.NewHTTPErrorf(http.StatusConflict, "customer %q already exists", req.Name)
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to create customer")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create customer")
	}

	return id, nil
}

// Upsert creates or updates a customer by name and returns its id. Name is
// the business key, so repeated saves from the receiving modal converge on
// one row.
func (r *Repository) Upsert(ctx context.Context, req models.UpsertCustomerRequest) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Upsert")
	defer span.End()

	ib := database.NewInsertBuilder()
	ib.InsertInto("customers").
		Cols("name", "address", "city", "province", "postal_code", "country", "phone", "email").
		Values(req.Name, req.Address, req.City, req.Province, req.PostalCode, req.Country, req.Phone, req.Email)

	ub := ib.OnConflict("name")
	ub.Set(
		ub.Assign("address", database.Excluded("address")),
		ub.Assign("city", database.Excluded("city")),
		ub.Assign("province", database.Excluded("province")),
		ub.Assign("postal_code", database.Excluded("postal_code")),
		ub.Assign("country", database.Excluded("country")),
		ub.Assign("phone", database.Excluded("phone")),
		ub.Assign("email", database.Excluded("email")),
	)
	ib.SQL("RETURNING id")

	query, args := ib.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to upsert customer")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to upsert customer")
	}

	return id, nil
}

// ResolveID returns the id of the customer with the given name, or 0 when
// no such customer exists.
func (r *Repository) ResolveID(ctx context.Context, name string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.ResolveID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id")
	sb.From("customers")
	sb.Where(sb.Equal("name", name))

	query, args := sb.Build()
	var id int64
	if err := r.db.GetContext(ctx, &id, query, args...); err != nil {
		if database.IsNotFound(err) {
			return 0, nil
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to resolve customer")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to resolve customer")
	}

	return id, nil
}
