package report

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/etcsc/warehouse/pkg/database"
	"github.com/etcsc/warehouse/pkg/filters"
	"github.com/etcsc/warehouse/pkg/models"
	"github.com/etcsc/warehouse/pkg/tracing"
)

// Repository serves the inventory lookup report in its ungrouped and
// model-grouped forms.
type Repository struct {
	db               database.DB
	logger           ectologger.Logger
	inStockOwnership string
}

// NewRepository creates a new report repository. inStockOwnership names the
// ownership whose units count as in stock.
func NewRepository(db database.DB, logger ectologger.Logger, inStockOwnership string) *Repository {
	return &Repository{
		db:               db,
		logger:           logger,
		inStockOwnership: inStockOwnership,
	}
}

func baseJoin(sb *sqlbuilder.SelectBuilder) {
	sb.From("inventory inv")
	sb.Join("items i", "i.id = inv.item_id")
	sb.JoinWithOption(sqlbuilder.LeftJoin, "dock_receiving d", "d.tracking_num = inv.tracking_num")
}

// List retrieves one page of joined units matching the given filters, the
// total match count, and how many of the matches are in stock. All three
// queries share the same predicates.
func (r *Repository) List(ctx context.Context, p filters.Params) (*models.InventoryReportPage, error) {
	ctx, span := tracing.StartSpan(ctx, "report.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(
		"inv.id", "inv.rma_num", "inv.serial_num", "inv.tracking_num", "inv.item_id",
		"inv.location_current", "inv.location_previous", "inv.grade", "inv.status",
		"inv.progress", "inv.ownership", "inv.lamp_hours", "inv.missing_accessories",
		"inv.notes", "inv.shipped", "inv.shipout_id", "inv.date_shipped",
		"inv.date_rma_received", "inv.date_shelved", "inv.date_updated",
		"inv.user_created", "inv.user_last_updated",
		"i.model", "i.part_num", "i.brand", "i.product_type", "i.upc", "i.asin",
		"i.description", "i.date_released", "i.msrp",
		"d.date_created AS dock_received_at",
	)
	baseJoin(sb)
	filters.Apply(sb, p)
	sb.OrderBy(p.OrderByClause())
	sb.Limit(p.Limit).Offset(p.Offset())

	query, args := sb.Build()
	rows := []models.InventoryUnitDetail{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to query inventory lookup")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query inventory lookup")
	}

	cb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	cb.Select("COUNT(*)")
	baseJoin(cb)
	filters.Apply(cb, p)

	countQuery, countArgs := cb.Build()
	var totalCount int64
	if err := r.db.GetContext(ctx, &totalCount, countQuery, countArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count inventory lookup")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query inventory lookup")
	}

	ib := sqlbuilder.PostgreSQL.NewSelectBuilder()
	ib.Select("COUNT(*)")
	baseJoin(ib)
	filters.Apply(ib, p)
	ib.Where(ib.Equal("inv.ownership", r.inStockOwnership))

	inStockQuery, inStockArgs := ib.Build()
	var inStockCount int64
	if err := r.db.GetContext(ctx, &inStockCount, inStockQuery, inStockArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count in-stock units")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query inventory lookup")
	}

	return &models.InventoryReportPage{
		Rows:         rows,
		TotalCount:   totalCount,
		InStockCount: inStockCount,
	}, nil
}

// Grouped retrieves the lookup rolled up by model. Phase one discovers which
// statuses exist anywhere in inventory; phase two pivots each into a
// per-group count column named after the status. Status columns stay stable
// across filter changes because discovery scans the whole table.
func (r *Repository) Grouped(ctx context.Context, p filters.Params) (*models.GroupedReportPage, error) {
	ctx, span := tracing.StartSpan(ctx, "report.Repository.Grouped")
	defer span.End()

	db := sqlbuilder.PostgreSQL.NewSelectBuilder()
	db.Distinct().Select("status")
	db.From("inventory")
	db.Where(db.IsNotNull("status"))
	db.OrderBy("status")

	statusQuery, statusArgs := db.Build()
	statuses := []string{}
	if err := r.db.SelectContext(ctx, &statuses, statusQuery, statusArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to discover statuses")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query inventory lookup")
	}

	aliases := statusAliases(statuses)
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	selects := []string{
		"i.model",
		"i.brand",
		"i.product_type",
		"COUNT(*) AS total",
		"MAX(inv.date_rma_received) AS latest_received",
	}
	for i, status := range statuses {
		selects = append(selects, fmt.Sprintf(
			"COUNT(*) FILTER (WHERE inv.status = %s) AS %s",
			sb.Var(status), aliases[i],
		))
	}
	sb.Select(selects...)
	baseJoin(sb)
	filters.Apply(sb, p)
	sb.GroupBy("i.model", "i.brand", "i.product_type")
	sb.OrderBy("i.model")
	sb.Limit(p.Limit).Offset(p.Offset())

	query, args := sb.Build()
	dbRows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to query grouped lookup")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query inventory lookup")
	}
	defer dbRows.Close()

	rows := []map[string]any{}
	for dbRows.Next() {
		row := map[string]any{}
		if err := dbRows.MapScan(row); err != nil {
			r.logger.WithContext(ctx).WithError(err).Error("Failed to scan grouped row")
			return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query inventory lookup")
		}
		for key, value := range row {
			if b, ok := value.([]byte); ok {
				row[key] = string(b)
			}
		}
		rows = append(rows, row)
	}
	if err := dbRows.Err(); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to read grouped rows")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query inventory lookup")
	}

	gb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	gb.Select("i.model")
	baseJoin(gb)
	filters.Apply(gb, p)
	gb.GroupBy("i.model", "i.brand", "i.product_type")

	innerQuery, innerArgs := gb.Build()
	var groupCount int64
	countQuery := "SELECT COUNT(*) FROM (" + innerQuery + ") AS groups"
	if err := r.db.GetContext(ctx, &groupCount, countQuery, innerArgs...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count groups")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to query inventory lookup")
	}

	return &models.GroupedReportPage{
		Rows:       rows,
		GroupCount: groupCount,
		Statuses:   statuses,
	}, nil
}

// statusAliases derives one column alias per status, numbering repeats so
// statuses that reduce to the same alias keep distinct count columns.
func statusAliases(statuses []string) []string {
	seen := map[string]int{}
	aliases := make([]string, len(statuses))
	for i, status := range statuses {
		alias := statusColumn(status)
		seen[alias]++
		if n := seen[alias]; n > 1 {
			alias = fmt.Sprintf("%s_%d", alias, n)
		}
		aliases[i] = alias
	}
	return aliases
}

// statusColumn derives a safe column alias from a status value. Only the
// bound value itself reaches the database as a parameter; the alias is
// reduced to lowercase alphanumerics.
func statusColumn(status string) string {
	var b strings.Builder
	b.WriteString("status_")
	for _, r := range strings.ToLower(status) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
