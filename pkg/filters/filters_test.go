package filters

import (
	"net/url"
	"testing"

	"github.com/huandu/go-sqlbuilder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	values := url.Values{}
	values.Set("page", "3")
	values.Set("limit", "50")
	values.Set("order", "desc")
	values.Set("orderBy", "serial_num")
	values.Set("status", "Tested")
	values.Set("brand", "Epson")
	values.Set("groupByModel", "true")

	p := Parse(values)

	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 50, p.Limit)
	assert.Equal(t, 100, p.Offset())
	assert.Equal(t, "desc", p.Order)
	assert.True(t, p.GroupByModel)
	assert.Equal(t, map[string]string{"status": "Tested", "brand": "Epson"}, p.Filters)
}

func TestParseDefaults(t *testing.T) {
	p := Parse(url.Values{})

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset())
	assert.False(t, p.GroupByModel)
	assert.Empty(t, p.Filters)
}

func TestParseIgnoresBadPagination(t *testing.T) {
	values := url.Values{}
	values.Set("page", "-2")
	values.Set("limit", "abc")

	p := Parse(values)

	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
}

func TestSortColumnAllowList(t *testing.T) {
	p := Params{OrderBy: "serial_num", Order: "desc"}
	assert.Equal(t, "inv.serial_num DESC", p.OrderByClause())

	// unknown sort fields fall back to the primary key
	p = Params{OrderBy: "serial_num; DROP TABLE inventory"}
	assert.Equal(t, "inv.id ASC", p.OrderByClause())

	p = Params{Order: "sideways"}
	assert.Equal(t, "inv.id ASC", p.OrderByClause())
}

func TestApplyDropsUnknownFields(t *testing.T) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("inv.id").From("inventory inv")

	Apply(sb, Params{Filters: map[string]string{
		"status":              "Tested",
		"nope; DROP TABLE x":  "y",
		"user_last_updated--": "z",
	}})

	query, args := sb.Build()
	assert.Contains(t, query, "inv.status LIKE")
	assert.NotContains(t, query, "DROP TABLE")
	assert.Equal(t, []interface{}{"%Tested%"}, args)
}

func TestApplyNegation(t *testing.T) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("inv.id").From("inventory inv")

	Apply(sb, Params{Filters: map[string]string{"status": "!Scrapped"}})

	query, args := sb.Build()
	assert.Contains(t, query, "inv.status NOT LIKE")
	assert.Equal(t, []interface{}{"%Scrapped%"}, args)
}

func TestApplyBrandAll(t *testing.T) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("inv.id").From("inventory inv")

	Apply(sb, Params{Filters: map[string]string{"brand": "All"}})

	query, args := sb.Build()
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
}

func TestApplyShipoutAndDates(t *testing.T) {
	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("inv.id").From("inventory inv")

	Apply(sb, Params{
		Shipout:   true,
		StartDate: "2026-01-01",
		EndDate:   "2026-01-31",
		Filters:   map[string]string{},
	})

	query, args := sb.Build()
	assert.Contains(t, query, "inv.status =")
	assert.Contains(t, query, "inv.date_rma_received::date >=")
	assert.Contains(t, query, "inv.date_rma_received::date <=")
	require.Len(t, args, 3)
	assert.Equal(t, "Unowned", args[0])
}

// The listing and grouped report build their predicates through the same
// call, so two builders fed the same params must produce identical WHERE
// clauses and bind values.
func TestApplyParity(t *testing.T) {
	p := Params{
		StartDate: "2026-02-01",
		Filters:   map[string]string{"model": "X1000", "status": "!Broken"},
	}

	first := sqlbuilder.PostgreSQL.NewSelectBuilder()
	first.Select("inv.id").From("inventory inv")
	Apply(first, p)

	second := sqlbuilder.PostgreSQL.NewSelectBuilder()
	second.Select("inv.id").From("inventory inv")
	Apply(second, p)

	firstQuery, firstArgs := first.Build()
	secondQuery, secondArgs := second.Build()

	assert.Equal(t, firstQuery, secondQuery)
	assert.Equal(t, firstArgs, secondArgs)
}
