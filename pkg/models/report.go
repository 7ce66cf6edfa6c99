package models

// InventoryReportPage is the ungrouped lookup response: one page of joined
// units plus counts computed over the same filtered set.
type InventoryReportPage struct {
	Rows         []InventoryUnitDetail `json:"rows"`
	TotalCount   int64                 `json:"totalCount"`
	InStockCount int64                 `json:"inStockCount"`
}

// GroupedReportPage is the model-grouped lookup response. Each row carries
// one status_<name> count column per status present in inventory, so the
// column set varies by data. GroupCount serializes as totalCount, mirroring
// the ungrouped page shape.
type GroupedReportPage struct {
	Rows       []map[string]any `json:"rows"`
	GroupCount int64            `json:"totalCount"`
	Statuses   []string         `json:"statuses"`
}
