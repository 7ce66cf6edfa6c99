package customer_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etcsc/warehouse/internal/repositories/customer"
	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/logger"
	"github.com/etcsc/warehouse/pkg/models"
)

func newTestRepo(t *testing.T) (*customer.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())
	return customer.NewRepository(db, logger.NewNop()), mock
}

func TestUpsertReturnsID(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO customers .*ON CONFLICT \(name\) DO UPDATE.*RETURNING id`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.Upsert(context.Background(), models.UpsertCustomerRequest{Name: "Acme Schools"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateName(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO customers`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "customers_name_key"})

	_, err := repo.Create(context.Background(), models.UpsertCustomerRequest{Name: "Acme Schools"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResolveIDMissingIsNotAnError(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT id FROM customers WHERE name = \$1`).
		WithArgs("Nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	id, err := repo.ResolveID(context.Background(), "Nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), id)

	assert.NoError(t, mock.ExpectationsWereMet())
}
