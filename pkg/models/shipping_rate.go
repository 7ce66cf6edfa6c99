package models

// ShippingRate is one row of the static rate lookup table: a billable
// weight and the rate for the requested carrier service column.
type ShippingRate struct {
	WeightLB float64 `json:"weight_lb" db:"weight_lb"`
	Rate     float64 `json:"rate" db:"rate"`
}
