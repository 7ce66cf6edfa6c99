package dockreceiving_test

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

	"github.com/etcsc/warehouse/internal/repositories/dockreceiving"
	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/logger"
	"github.com/etcsc/warehouse/pkg/models"
	"github.com/etcsc/warehouse/pkg/normalizers"
)

func newTestRepo(t *testing.T) (*dockreceiving.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())
	return dockreceiving.NewRepository(db, logger.NewNop()), mock
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateLinksKnownCustomer(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT id FROM customers WHERE name = \$1`).
		WithArgs("Acme Refurb").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`INSERT INTO dock_receiving .*RETURNING id`).
		WithArgs("1Z999", "UPS", "RMA-100", "Standard", 3, "jortiz", 7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := repo.Create(context.Background(), models.CreateDockReceivingRequest{
		TrackingNum:  strPtr("1Z999"),
		Carrier:      strPtr("UPS"),
		RMANum:       strPtr("RMA-100"),
		RMAType:      "Standard",
		Quantity:     intPtr(3),
		UserCreated:  "jortiz",
		CustomerName: strPtr("Acme Refurb"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(42), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnknownCustomerLeavesLinkEmpty(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT id FROM customers`).
		WithArgs("Nobody").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO dock_receiving`).
		WithArgs("1Z999", nil, nil, "Standard", nil, "jortiz", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(43))

	id, err := repo.Create(context.Background(), models.CreateDockReceivingRequest{
		TrackingNum:  strPtr("1Z999"),
		RMAType:      "Standard",
		UserCreated:  "jortiz",
		CustomerName: strPtr("Nobody"),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(43), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateNormalizesTrackingNumber(t *testing.T) {
	repo, mock := newTestRepo(t)

	// the stored value must match what the inventory intake binds for the
	// same client input, or the inventory FK rejects a received parcel
	raw := " 1z999aa10123456784 "
	mock.ExpectQuery(`INSERT INTO dock_receiving`).
		WithArgs(normalizers.TrackingNum(raw), nil, nil, "Standard", nil, "jortiz", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(44))

	id, err := repo.Create(context.Background(), models.CreateDockReceivingRequest{
		TrackingNum: strPtr(raw),
		RMAType:     "Standard",
		UserCreated: "jortiz",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(44), id)
	assert.Equal(t, "1Z999AA10123456784", normalizers.TrackingNum(raw))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateNormalizesTrackingNumber(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE dock_receiving SET`).
		WithArgs("1Z999", nil, nil, "Standard", nil, int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), 42, models.UpdateDockReceivingRequest{
		TrackingNum: strPtr(" 1z999 "),
		RMAType:     "Standard",
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateTrackingNumber(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`INSERT INTO dock_receiving`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "dock_receiving_tracking_num_key"})

	_, err := repo.Create(context.Background(), models.CreateDockReceivingRequest{
		TrackingNum: strPtr("1Z999"),
		RMAType:     "Standard",
		UserCreated: "jortiz",
	})
	require.Error(t, err)

	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEditsLinkedCustomerInSameTx(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE dock_receiving SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE customers SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	customerID := int64(7)
	err := repo.Update(context.Background(), 42, models.UpdateDockReceivingRequest{
		TrackingNum: strPtr("1Z999"),
		RMAType:     "Standard",
		CustomerID:  &customerID,
		Name:        strPtr("Acme Refurb"),
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMissingEntryRollsBack(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE dock_receiving SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), 999, models.UpdateDockReceivingRequest{
		RMAType: "Standard",
	})
	require.Error(t, err)

	assert.Equal(t, http.StatusNotFound, httperror.GetStatusCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteWithAttachedUnits(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectExec(`DELETE FROM dock_receiving WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnError(&pq.Error{Code: "23503", Constraint: "inventory_tracking_num_fkey"})

	err := repo.Delete(context.Background(), 42)
	require.Error(t, err)

	assert.Equal(t, http.StatusConflict, httperror.GetStatusCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListDefaultsToNewestFirst(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`FROM dock_receiving d LEFT JOIN customers c ON c.id = d.customer_id ORDER BY d.date_created DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "rma_type", "user_created", "customer_name"}).
			AddRow(2, "Standard", "jortiz", "Acme Refurb").
			AddRow(1, "Mass Merchant", "jortiz", nil))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM dock_receiving`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	page, err := repo.List(context.Background(), 0, 0, "", "not-a-column")
	require.NoError(t, err)

	require.Len(t, page.Rows, 2)
	assert.Equal(t, int64(12), page.TotalCount)
	assert.Equal(t, "Acme Refurb", *page.Rows[0].CustomerName)
	assert.NoError(t, mock.ExpectationsWereMet())
}
