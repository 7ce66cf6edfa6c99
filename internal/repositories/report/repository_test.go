package report

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/filters"
	"github.com/etcsc/warehouse/pkg/logger"
	"github.com/etcsc/warehouse/pkg/models"
)

func newTestRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	db := database.NewDatabaseInstance(sqlx.NewDb(mockDB, "sqlmock"), logger.NewNop())
	return NewRepository(db, logger.NewNop(), "EdTech"), mock
}

func TestStatusColumn(t *testing.T) {
	tests := []struct {
		status   string
		expected string
	}{
		{"Tested", "status_tested"},
		{"In Testing", "status_in_testing"},
		{"Needs-Parts", "status_needs_parts"},
		{"Robert'); DROP TABLE inventory;--", "status_robert____drop_table_inventory___"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusColumn(tt.status))
	}
}

func TestGroupedPivotsDiscoveredStatuses(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT status FROM inventory`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).
			AddRow("In Testing").
			AddRow("Tested"))

	// each discovered status becomes a sanitized, positionally-bound count
	mock.ExpectQuery(`COUNT\(\*\) FILTER \(WHERE inv.status = \$\d+\) AS status_in_testing.*status_tested`).
		WithArgs("In Testing", "Tested", 25, 0).
		WillReturnRows(sqlmock.NewRows([]string{"model", "brand", "product_type", "total", "latest_received", "status_in_testing", "status_tested"}).
			AddRow("X1000", "Epson", "Projector", 5, "2026-03-01", 2, 3))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	page, err := repo.Grouped(context.Background(), filters.Params{
		Page:    filters.DefaultPage,
		Limit:   filters.DefaultLimit,
		Filters: map[string]string{},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"In Testing", "Tested"}, page.Statuses)
	assert.Equal(t, int64(1), page.GroupCount)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "X1000", page.Rows[0]["model"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupedPageSerializesTotalCount(t *testing.T) {
	data, err := json.Marshal(models.GroupedReportPage{
		Rows:       []map[string]any{},
		GroupCount: 3,
		Statuses:   []string{"Tested"},
	})
	require.NoError(t, err)

	assert.Contains(t, string(data), `"totalCount":3`)
	assert.NotContains(t, string(data), "groupCount")
}

func TestStatusAliasesNumbersCollisions(t *testing.T) {
	aliases := statusAliases([]string{"In Testing", "In-Testing", "Tested"})

	assert.Equal(t, []string{"status_in_testing", "status_in_testing_2", "status_tested"}, aliases)
}

func TestGroupedKeepsCollidingStatusColumnsApart(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT status FROM inventory`).
		WillReturnRows(sqlmock.NewRows([]string{"status"}).
			AddRow("In Testing").
			AddRow("In-Testing"))

	// both statuses reduce to the same name, so the second gets a suffix
	mock.ExpectQuery(`AS status_in_testing,.*AS status_in_testing_2`).
		WithArgs("In Testing", "In-Testing", 25, 0).
		WillReturnRows(sqlmock.NewRows([]string{"model", "brand", "product_type", "total", "latest_received", "status_in_testing", "status_in_testing_2"}).
			AddRow("X1000", "Epson", "Projector", 5, "2026-03-01", 2, 3))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	page, err := repo.Grouped(context.Background(), filters.Params{
		Page:    filters.DefaultPage,
		Limit:   filters.DefaultLimit,
		Filters: map[string]string{},
	})
	require.NoError(t, err)

	require.Len(t, page.Rows, 1)
	assert.EqualValues(t, 2, page.Rows[0]["status_in_testing"])
	assert.EqualValues(t, 3, page.Rows[0]["status_in_testing_2"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupedStatusDiscoveryIgnoresFilters(t *testing.T) {
	repo, mock := newTestRepo(t)

	// discovery scans the whole table; only the pivot and group count queries
	// carry the filter binds
	mock.ExpectQuery(`SELECT DISTINCT status FROM inventory`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows([]string{"status"}).AddRow("Tested"))

	mock.ExpectQuery(`AS status_tested`).
		WithArgs("Tested", "%Epson%", 25, 0).
		WillReturnRows(sqlmock.NewRows([]string{"model", "brand", "product_type", "total", "latest_received", "status_tested"}))

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(`).
		WithArgs("%Epson%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	_, err := repo.Grouped(context.Background(), filters.Params{
		Page:    filters.DefaultPage,
		Limit:   filters.DefaultLimit,
		Filters: map[string]string{"brand": "Epson"},
	})
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAppliesSameFiltersToCounts(t *testing.T) {
	repo, mock := newTestRepo(t)

	mock.ExpectQuery(`SELECT inv.id, inv.rma_num`).
		WithArgs("%Tested%", 25, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory inv`).
		WithArgs("%Tested%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	// in-stock adds ownership on top of the shared predicates, nothing else
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory inv`).
		WithArgs("%Tested%", "EdTech").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	page, err := repo.List(context.Background(), filters.Params{
		Page:    1,
		Limit:   25,
		Filters: map[string]string{"status": "Tested"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(12), page.TotalCount)
	assert.Equal(t, int64(4), page.InStockCount)
	assert.Empty(t, page.Rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}
