// Package filters turns client-supplied field filters into parameterized
// predicates over the inventory/items/dock_receiving join. Field names are
// checked against per-table allow-lists; anything else is dropped, never
// interpolated.
package filters

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/huandu/go-sqlbuilder"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25

	defaultSortColumn = "inv.id"
)

// inventoryColumns accepts filters bound against the inventory alias.
// Non-text columns are cast so substring matching works uniformly.
var inventoryColumns = map[string]string{
	"id":               "inv.id::text",
	"rma_num":          "inv.rma_num",
	"serial_num":       "inv.serial_num",
	"tracking_num":     "inv.tracking_num",
	"location_current": "inv.location_current",
	"status":           "inv.status",
	"grade":            "inv.grade",
	"shipped":          "inv.shipped::text",
	"ownership":        "inv.ownership",
}

// itemColumns accepts filters bound against the catalog alias.
var itemColumns = map[string]string{
	"model":        "i.model",
	"brand":        "i.brand",
	"product_type": "i.product_type",
	"part_num":     "i.part_num",
}

// dockColumns accepts filters bound against the dock receiving alias. The
// receiving page exposes date_created as dock_received_at, so both names
// resolve to the same column.
var dockColumns = map[string]string{
	"date_created":     "d.date_created::text",
	"dock_received_at": "d.date_created::text",
}

// sortColumns is the allow-list for ORDER BY on the lookup listing.
var sortColumns = map[string]string{
	"id":                "inv.id",
	"rma_num":           "inv.rma_num",
	"serial_num":        "inv.serial_num",
	"tracking_num":      "inv.tracking_num",
	"location_current":  "inv.location_current",
	"status":            "inv.status",
	"grade":             "inv.grade",
	"date_rma_received": "inv.date_rma_received",
	"ownership":         "inv.ownership",
	"shipped":           "inv.shipped",
	"dock_received_at":  "d.date_created",
}

// reserved query keys that are never treated as field filters
var reservedKeys = map[string]bool{
	"page":         true,
	"limit":        true,
	"order":        true,
	"orderBy":      true,
	"shipout":      true,
	"startDate":    true,
	"endDate":      true,
	"groupByModel": true,
}

// Params is the parsed filter/pagination state for one lookup request.
type Params struct {
	Page         int
	Limit        int
	Order        string
	OrderBy      string
	Shipout      bool
	StartDate    string
	EndDate      string
	GroupByModel bool
	Filters      map[string]string
}

// Parse reads Params from a request query string. Unknown field filters are
// kept here and dropped later by Apply, so both consumers see the same set.
func Parse(values url.Values) Params {
	p := Params{
		Page:         DefaultPage,
		Limit:        DefaultLimit,
		Order:        values.Get("order"),
		OrderBy:      values.Get("orderBy"),
		Shipout:      values.Get("shipout") != "",
		StartDate:    values.Get("startDate"),
		EndDate:      values.Get("endDate"),
		GroupByModel: values.Get("groupByModel") == "true",
		Filters:      map[string]string{},
	}

	if page, err := strconv.Atoi(values.Get("page")); err == nil && page > 0 {
		p.Page = page
	}
	if limit, err := strconv.Atoi(values.Get("limit")); err == nil && limit > 0 {
		p.Limit = limit
	}

	for key := range values {
		if reservedKeys[key] {
			continue
		}
		if v := values.Get(key); v != "" {
			p.Filters[key] = v
		}
	}

	return p
}

// Offset is the row offset implied by Page and Limit.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// SortColumn validates OrderBy against the sort allow-list, falling back to
// the primary key.
func (p Params) SortColumn() string {
	if col, ok := sortColumns[p.OrderBy]; ok {
		return col
	}
	return defaultSortColumn
}

// SortOrder normalizes Order to ASC or DESC.
func (p Params) SortOrder() string {
	if strings.EqualFold(p.Order, "desc") {
		return "DESC"
	}
	return "ASC"
}

// OrderByClause is the validated "column direction" fragment for the listing.
func (p Params) OrderByClause() string {
	return p.SortColumn() + " " + p.SortOrder()
}

// Apply adds every recognized predicate to sb, binding all values
// positionally. The listing and the grouped report both call this, so the
// two paths always share identical WHERE semantics.
func Apply(sb *sqlbuilder.SelectBuilder, p Params) {
	if p.Shipout {
		sb.Where(sb.Equal("inv.status", "Unowned"))
	}

	if p.StartDate != "" {
		sb.Where(sb.GreaterEqualThan("inv.date_rma_received::date", p.StartDate))
	}
	if p.EndDate != "" {
		sb.Where(sb.LessEqualThan("inv.date_rma_received::date", p.EndDate))
	}

	keys := make([]string, 0, len(p.Filters))
	for key := range p.Filters {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := p.Filters[key]
		if key == "brand" && value == "All" {
			continue
		}

		column := resolveColumn(key)
		if column == "" {
			continue
		}

		if negated, ok := strings.CutPrefix(value, "!"); ok {
			sb.Where(sb.NotLike(column, "%"+negated+"%"))
		} else {
			sb.Where(sb.Like(column, "%"+value+"%"))
		}
	}
}

func resolveColumn(key string) string {
	if col, ok := inventoryColumns[key]; ok {
		return col
	}
	if col, ok := itemColumns[key]; ok {
		return col
	}
	if col, ok := dockColumns[key]; ok {
		return col
	}
	return ""
}
