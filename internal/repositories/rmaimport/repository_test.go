package rmaimport_test

import (
	"context"
	"database/sql"
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Gobusters/ectoerror/httperror"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etcsc/warehouse/internal/repositories/rmaimport"
	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/logger"
	"github.com/etcsc/warehouse/pkg/models"
)

func newTestRepo(t *testing.T) (*rmaimport.Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())
	return rmaimport.NewRepository(db, logger.NewNop()), mock
}

func TestImportMixedBatch(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(import_id\), 0\) \+ 1 FROM rma_receiving`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(8))

	// row 1: new entry
	mock.ExpectQuery(`SELECT id FROM items WHERE model = \$1 AND part_num = \$2`).
		WithArgs("X1000", "NP30LP").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`SELECT id FROM rma_receiving WHERE rma_num = \$1 AND item_id = \$2`).
		WithArgs("RMA-100", int64(11)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO rma_receiving`).
		WithArgs("RMA-100", "Mass Merchant", int64(11), "alice", 1, int64(8)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	// row 2: unknown item, skipped
	mock.ExpectQuery(`SELECT id FROM items WHERE model = \$1 AND part_num = \$2`).
		WithArgs("X2000", "ZZZ").
		WillReturnError(sql.ErrNoRows)

	// row 3: repeat of an existing (rma_num, item_id) pair
	mock.ExpectQuery(`SELECT id FROM items WHERE model = \$1 AND part_num = \$2`).
		WithArgs("X1000", "NP30LP").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`SELECT id FROM rma_receiving WHERE rma_num = \$1 AND item_id = \$2`).
		WithArgs("RMA-100", int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectExec(`UPDATE rma_receiving SET quantity_reported = quantity_reported \+ 1 WHERE id = \$1`).
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectCommit()

	rows := []models.RMAImportRow{
		{Model: "X1000", PartNum: "NP30LP", RMANum: "RMA-100", RMAType: "Mass Merchant"},
		{Model: "X2000", PartNum: "ZZZ", RMANum: "RMA-100"},
		{Model: "X1000", PartNum: "NP30LP", RMANum: "RMA-100"},
	}

	importID, result, err := repo.Import(context.Background(), rows, "alice")
	require.NoError(t, err)

	assert.Equal(t, int64(8), importID)
	assert.Equal(t, 2, result.AddedCount)
	require.Len(t, result.SkippedEntries, 1)
	assert.Equal(t, "Model: X2000, Part No: ZZZ not found.", result.SkippedEntries[0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportNormalizesPartNum(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(import_id\), 0\) \+ 1 FROM rma_receiving`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1))

	// the manifest value has spaces and punctuation; the lookup must not
	mock.ExpectQuery(`SELECT id FROM items WHERE model = \$1 AND part_num = \$2`).
		WithArgs("X1000", "NP30-LP").
		WillReturnError(sql.ErrNoRows)

	mock.ExpectCommit()

	rows := []models.RMAImportRow{
		{Model: "X1000", PartNum: " NP 30-LP. ", RMANum: "RMA-1"},
	}

	_, result, err := repo.Import(context.Background(), rows, "bob")
	require.NoError(t, err)
	assert.Equal(t, 0, result.AddedCount)
	require.Len(t, result.SkippedEntries, 1)
	// the skipped entry echoes the original value, not the normalized one
	assert.Equal(t, "Model: X1000, Part No:  NP 30-LP.  not found.", result.SkippedEntries[0])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportAllSkippedStillCommits(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(import_id\), 0\) \+ 1 FROM rma_receiving`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(3))
	mock.ExpectQuery(`SELECT id FROM items`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	_, result, err := repo.Import(context.Background(), []models.RMAImportRow{
		{Model: "Ghost", PartNum: "NOPE", RMANum: "RMA-9"},
	}, "carol")
	require.NoError(t, err)

	assert.Equal(t, 0, result.AddedCount)
	assert.Len(t, result.SkippedEntries, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImportRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(import_id\), 0\) \+ 1 FROM rma_receiving`).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1))
	mock.ExpectQuery(`SELECT id FROM items`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectQuery(`SELECT id FROM rma_receiving`).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO rma_receiving`).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	_, _, err := repo.Import(context.Background(), []models.RMAImportRow{
		{Model: "X1000", PartNum: "NP30LP", RMANum: "RMA-1"},
	}, "dave")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, httperror.GetStatusCode(err))

	assert.NoError(t, mock.ExpectationsWereMet())
}
