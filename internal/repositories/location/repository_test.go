package location_test

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

	"github.com/etcsc/warehouse/internal/repositories/location"
	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/logger"
	"github.com/etcsc/warehouse/pkg/models"
)

func newTestRepo(t *testing.T) (*location.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())
	return location.NewRepository(db, logger.NewNop()), mock
}

func TestCreate(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO locations \(name, description\) VALUES \(\$1, \$2\) RETURNING id`).
		WithArgs("A-12", "Aisle A, shelf 12").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	description := "Aisle A, shelf 12"
	loc, err := repo.Create(context.Background(), models.CreateLocationRequest{
		Name:        "A-12",
		Description: &description,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), loc.ID)
	assert.Equal(t, "A-12", loc.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReservedName(t *testing.T) {
	repo, mock := newTestRepo(t)

	_, err := repo.Create(context.Background(), models.CreateLocationRequest{
		Name: models.UnassignedLocation,
	})
	require.Error(t, err)

	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateName(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO locations`).
		WithArgs("A-12", nil).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "locations_name_key"})

	_, err := repo.Create(context.Background(), models.CreateLocationRequest{Name: "A-12"})
	require.Error(t, err)

	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM locations WHERE name = \$1`).
		WithArgs("B-99").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "B-99")
	require.Error(t, err)

	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListIncludesUnassignedRow(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`UNION ALL`).
		WithArgs(models.UnassignedLocation).
		WillReturnRows(sqlmock.NewRows([]string{"name", "description", "item_count"}).
			AddRow(models.UnassignedLocation, "Units without an assigned location", 4).
			AddRow("A-12", "Aisle A, shelf 12", 17))

	locations, err := repo.List(context.Background())
	require.NoError(t, err)

	require.Len(t, locations, 2)
	assert.Equal(t, models.UnassignedLocation, locations[0].Name)
	assert.Equal(t, int64(4), locations[0].ItemCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
