package models

import "time"

// Item is a catalog entry. Identity is (model, part_num); rows are owned by
// catalog administration and only mutated through the item lookup page.
type Item struct {
	ID           int64      `json:"id" db:"id"`
	Model        string     `json:"model" db:"model"`
	PartNum      string     `json:"part_num" db:"part_num"`
	Brand        *string    `json:"brand,omitempty" db:"brand"`
	ProductType  *string    `json:"product_type,omitempty" db:"product_type"`
	UPC          *string    `json:"upc,omitempty" db:"upc"`
	ASIN         *string    `json:"asin,omitempty" db:"asin"`
	Description  *string    `json:"description,omitempty" db:"description"`
	DateReleased *time.Time `json:"date_released,omitempty" db:"date_released"`
	MSRP         *float64   `json:"msrp,omitempty" db:"msrp"`
}

// ItemRef is the trimmed shape returned by the pick-list model search.
type ItemRef struct {
	ID    int64  `json:"id" db:"id"`
	Model string `json:"model" db:"model"`
}

// UpdateItemRequest is the request body for updating a catalog item
type UpdateItemRequest struct {
	UPC          *string  `json:"upc"`
	ASIN         *string  `json:"asin"`
	Model        string   `json:"model" validate:"required"`
	Brand        *string  `json:"brand"`
	ProductType  *string  `json:"product_type"`
	Description  *string  `json:"description"`
	DateReleased *string  `json:"date_released"`
	MSRP         *float64 `json:"msrp"`
}
