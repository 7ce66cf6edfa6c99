package inventory_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etcsc/warehouse/internal/repositories/inventory"
	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/logger"
	"github.com/etcsc/warehouse/pkg/models"
)

func newTestRepo(t *testing.T) (*inventory.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())
	return inventory.NewRepository(db, logger.NewNop(), true), mock
}

func detailColumns() []string {
	return []string{
		"id", "rma_num", "serial_num", "tracking_num", "item_id",
		"location_current", "location_previous", "grade", "status",
		"progress", "ownership", "lamp_hours", "missing_accessories",
		"notes", "shipped", "shipout_id", "date_shipped",
		"date_rma_received", "date_shelved", "date_updated",
		"user_created", "user_last_updated",
		"model", "part_num", "brand", "product_type", "upc", "asin",
		"description", "date_released", "msrp",
		"dock_received_at",
	}
}

func detailRow(rows *sqlmock.Rows, ownership *string) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(
		int64(1), "RMA-100", "SN123", "1Z999", int64(11),
		nil, nil, "A", "Tested",
		"Complete", ownership, nil, nil,
		nil, false, nil, nil,
		now, nil, nil,
		"alice", nil,
		"X1000", "NP30LP", "Epson", "Projector", nil, nil,
		nil, nil, nil,
		now,
	)
}

func TestCreateMassMerchantOwnership(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT brand FROM items WHERE id = \$1`).
		WithArgs(int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"brand"}).AddRow("Epson"))
	mock.ExpectQuery(`SELECT rma_type, quantity_reported, quantity_received FROM rma_receiving`).
		WithArgs("RMA-100", int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"rma_type", "quantity_reported", "quantity_received"}).
			AddRow("Mass Merchant", 5, 1))
	mock.ExpectExec(`INSERT INTO inventory`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE rma_receiving SET quantity_received = quantity_received \+ 1`).
		WithArgs("RMA-100", int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ownership := "Epson"
	mock.ExpectQuery(`SELECT inv.id, inv.rma_num`).
		WithArgs("SN123").
		WillReturnRows(detailRow(sqlmock.NewRows(detailColumns()), &ownership))
	mock.ExpectCommit()

	unit, err := repo.Create(context.Background(), models.CreateInventoryRequest{
		RMANum:      "RMA-100",
		SerialNum:   " SN123 ",
		TrackingNum: "1z999",
		ItemID:      11,
		Grade:       "A",
		Status:      "Tested",
		Progress:    "Complete",
		UserCreated: "alice",
	})
	require.NoError(t, err)

	// a Mass Merchant RMA assigns the item's brand as the unit's owner
	require.NotNil(t, unit.Ownership)
	assert.Equal(t, "Epson", *unit.Ownership)
	assert.Equal(t, "SN123", unit.SerialNum)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateSerial(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT brand FROM items`).
		WillReturnRows(sqlmock.NewRows([]string{"brand"}).AddRow("Epson"))
	mock.ExpectQuery(`SELECT rma_type, quantity_reported, quantity_received FROM rma_receiving`).
		WillReturnRows(sqlmock.NewRows([]string{"rma_type", "quantity_reported", "quantity_received"}).
			AddRow("Standard", 5, 0))
	mock.ExpectExec(`INSERT INTO inventory`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "inventory_serial_num_key"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.CreateInventoryRequest{
		RMANum:      "RMA-100",
		SerialNum:   "SN123",
		TrackingNum: "1Z999",
		ItemID:      11,
		Grade:       "A",
		Status:      "Tested",
		Progress:    "Complete",
		UserCreated: "alice",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnknownTrackingNumber(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT brand FROM items`).
		WillReturnRows(sqlmock.NewRows([]string{"brand"}).AddRow("Epson"))
	mock.ExpectQuery(`SELECT rma_type, quantity_reported, quantity_received FROM rma_receiving`).
		WillReturnRows(sqlmock.NewRows([]string{"rma_type", "quantity_reported", "quantity_received"}).
			AddRow("Standard", 5, 0))
	mock.ExpectExec(`INSERT INTO inventory`).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "inventory_tracking_num_fkey"})
	mock.ExpectRollback()

	_, err := repo.Create(context.Background(), models.CreateInventoryRequest{
		RMANum:      "RMA-100",
		SerialNum:   "SN123",
		TrackingNum: "1Z999",
		ItemID:      11,
		Grade:       "A",
		Status:      "Tested",
		Progress:    "Complete",
		UserCreated: "alice",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOverReceiptBlocked(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())
	repo := inventory.NewRepository(db, logger.NewNop(), false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT brand FROM items`).
		WillReturnRows(sqlmock.NewRows([]string{"brand"}).AddRow("Epson"))
	mock.ExpectQuery(`SELECT rma_type, quantity_reported, quantity_received FROM rma_receiving`).
		WillReturnRows(sqlmock.NewRows([]string{"rma_type", "quantity_reported", "quantity_received"}).
			AddRow("Standard", 2, 2))
	mock.ExpectRollback()

	_, err = repo.Create(context.Background(), models.CreateInventoryRequest{
		RMANum:      "RMA-100",
		SerialNum:   "SN123",
		TrackingNum: "1Z999",
		ItemID:      11,
		Grade:       "A",
		Status:      "Tested",
		Progress:    "Complete",
		UserCreated: "alice",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelocate(t *testing.T) {
	repo, mock := newTestRepo(t)

	serials := []string{"SN1", "SN2"}

	mock.ExpectBegin()
	// units already at the target keep their previous location untouched
	mock.ExpectExec(`SET location_previous = location_current\s+WHERE serial_num = ANY\(\$1\)\s+AND location_current IS DISTINCT FROM \$2`).
		WithArgs(pq.Array(serials), "A-12").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET location_current = \$2`).
		WithArgs(pq.Array(serials), "A-12", "alice").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.Relocate(context.Background(), models.RelocateRequest{
		SerialNumbers: []string{"SN1 ", " SN2"},
		Location:      "A-12",
		User:          "alice",
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelocateNoMatches(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`SET location_previous = location_current`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`SET location_current = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Relocate(context.Background(), models.RelocateRequest{
		SerialNumbers: []string{"GHOST"},
		Location:      "A-12",
		User:          "alice",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateWrongBrand(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM items WHERE id = \$1 AND brand = \$2`).
		WithArgs(int64(11), "Sony").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.Update(context.Background(), models.UpdateInventoryRequest{
		RMANum:      "RMA-100",
		SerialNum:   "SN123",
		TrackingNum: "1Z999",
		User:        "alice",
		ItemID:      11,
		Brand:       "Sony",
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, httperror.GetStatusCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBySerialNotFound(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT inv.id, inv.rma_num`).
		WithArgs("GHOST").
		WillReturnRows(sqlmock.NewRows(detailColumns()))

	_, err := repo.GetBySerial(context.Background(), "GHOST")
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
