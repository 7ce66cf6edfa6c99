package shippingrate_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etcsc/warehouse/internal/repositories/shippingrate"
	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/logger"
)

func newTestRepo(t *testing.T) (*shippingrate.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())
	return shippingrate.NewRepository(db, nil, logger.NewNop(), time.Minute), mock
}

func TestRates(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT weight_lb, first_cost AS rate FROM shipping_rates ORDER BY weight_lb`).
		WillReturnRows(sqlmock.NewRows([]string{"weight_lb", "rate"}).
			AddRow(1, 8.50).
			AddRow(2, 9.25))

	rates, err := repo.Rates(context.Background(), "first_cost")
	require.NoError(t, err)

	require.Len(t, rates, 2)
	assert.Equal(t, 1.0, rates[0].WeightLB)
	assert.Equal(t, 8.50, rates[0].Rate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatesUnknownColumn(t *testing.T) {
	repo, mock := newTestRepo(t)

	// nothing ever reaches the database for a column outside the allow-list
	_, err := repo.Rates(context.Background(), "weight_lb; DROP TABLE shipping_rates")
	require.Error(t, err)

	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
