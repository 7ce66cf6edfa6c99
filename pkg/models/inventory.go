package models

import "time"

// InventoryUnit is one physical unit taken into the warehouse. SerialNum is
// unique; TrackingNum must reference an existing dock receiving entry.
// LocationPrevious holds only the immediately prior location, overwritten on
// every move.
type InventoryUnit struct {
	ID                 int64      `json:"id" db:"id"`
	RMANum             string     `json:"rma_num" db:"rma_num"`
	SerialNum          string     `json:"serial_num" db:"serial_num"`
	TrackingNum        string     `json:"tracking_num" db:"tracking_num"`
	ItemID             int64      `json:"item_id" db:"item_id"`
	LocationCurrent    *string    `json:"location_current,omitempty" db:"location_current"`
	LocationPrevious   *string    `json:"location_previous,omitempty" db:"location_previous"`
	Grade              *string    `json:"grade,omitempty" db:"grade"`
	Status             *string    `json:"status,omitempty" db:"status"`
	Progress           *string    `json:"progress,omitempty" db:"progress"`
	Ownership          *string    `json:"ownership,omitempty" db:"ownership"`
	LampHours          *int       `json:"lamp_hours,omitempty" db:"lamp_hours"`
	MissingAccessories *string    `json:"missing_accessories,omitempty" db:"missing_accessories"`
	Notes              *string    `json:"notes,omitempty" db:"notes"`
	Shipped            bool       `json:"shipped" db:"shipped"`
	ShipoutID          *int64     `json:"shipout_id,omitempty" db:"shipout_id"`
	DateShipped        *time.Time `json:"date_shipped,omitempty" db:"date_shipped"`
	DateRMAReceived    time.Time  `json:"date_rma_received" db:"date_rma_received"`
	DateShelved        *time.Time `json:"date_shelved,omitempty" db:"date_shelved"`
	DateUpdated        *time.Time `json:"date_updated,omitempty" db:"date_updated"`
	UserCreated        string     `json:"user_created" db:"user_created"`
	UserLastUpdated    *string    `json:"user_last_updated,omitempty" db:"user_last_updated"`
}

// InventoryUnitDetail is a unit joined with its catalog item and dock
// receiving entry, as returned by create and the lookup listing.
type InventoryUnitDetail struct {
	InventoryUnit
	Model          string     `json:"model" db:"model"`
	PartNum        string     `json:"part_num" db:"part_num"`
	Brand          *string    `json:"brand,omitempty" db:"brand"`
	ProductType    *string    `json:"product_type,omitempty" db:"product_type"`
	UPC            *string    `json:"upc,omitempty" db:"upc"`
	ASIN           *string    `json:"asin,omitempty" db:"asin"`
	Description    *string    `json:"description,omitempty" db:"description"`
	DateReleased   *time.Time `json:"date_released,omitempty" db:"date_released"`
	MSRP           *float64   `json:"msrp,omitempty" db:"msrp"`
	DockReceivedAt *time.Time `json:"dock_received_at,omitempty" db:"dock_received_at"`
}

// CreateInventoryRequest is the request body for intaking a unit
type CreateInventoryRequest struct {
	RMANum             string  `json:"rma_num" validate:"required"`
	SerialNum          string  `json:"serial_num" validate:"required"`
	TrackingNum        string  `json:"tracking_num" validate:"required"`
	ItemID             int64   `json:"item_id" validate:"required"`
	LocationCurrent    *string `json:"location_current"`
	Grade              string  `json:"grade" validate:"required"`
	Status             string  `json:"status" validate:"required"`
	Progress           string  `json:"progress" validate:"required"`
	LampHours          *int    `json:"lamp_hours"`
	MissingAccessories *string `json:"missing_accessories"`
	Notes              *string `json:"notes"`
	UserCreated        string  `json:"user_created" validate:"required"`
}

// UpdateInventoryRequest is the request body for editing a unit. The item
// must belong to the named brand before any field is written.
type UpdateInventoryRequest struct {
	RMANum          string  `json:"rma_num" validate:"required"`
	SerialNum       string  `json:"serial_num" validate:"required"`
	TrackingNum     string  `json:"tracking_num" validate:"required"`
	Status          *string `json:"status"`
	Progress        *string `json:"progress"`
	Grade           *string `json:"grade"`
	LampHours       *int    `json:"lamp_hours"`
	LocationCurrent *string `json:"location_current"`
	Notes           *string `json:"notes"`
	User            string  `json:"user" validate:"required"`
	ItemID          int64   `json:"item_id" validate:"required"`
	Brand           string  `json:"brand" validate:"required"`
}

// RelocateRequest moves a batch of units to one location in a single step
type RelocateRequest struct {
	SerialNumbers []string `json:"serialNumbers" validate:"required,min=1,dive,required"`
	Location      string   `json:"location" validate:"required"`
	User          string   `json:"user" validate:"required"`
}

// InventoryPage is a paginated slice of joined units with the total row count
type InventoryPage struct {
	Rows       []InventoryUnitDetail `json:"rows"`
	TotalCount int64                 `json:"totalCount"`
}
