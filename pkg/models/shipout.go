package models

import "time"

// Shipout transaction states. Shipped is terminal; no mutation is allowed
// once a transaction reaches it.
const (
	ShipoutStatusPending = "Pending"
	ShipoutStatusShipped = "Shipped"
)

// Shipout transaction types. Skid-type lines carry a skid number instead of
// package dimensions.
const (
	TransactionTypeSingle   = "Single-item"
	TransactionTypeMultiple = "Multiple-item"
	TransactionTypeSkid     = "Skid"
)

// ShipoutTransaction groups inventory units into one outbound shipment.
type ShipoutTransaction struct {
	ID              int64     `json:"id" db:"id"`
	CustomerID      int64     `json:"customer_id" db:"customer_id"`
	CreatedBy       string    `json:"user" db:"created_by"`
	TransactionType string    `json:"transaction_type" db:"transaction_type"`
	Courier         *string   `json:"courier,omitempty" db:"courier"`
	LicensePlate    *string   `json:"license_plate,omitempty" db:"license_plate"`
	Status          string    `json:"status" db:"status"`
	DateCreated     time.Time `json:"date_created" db:"date_created"`
}

// ShipoutTransactionRow is a transaction joined with customer details.
type ShipoutTransactionRow struct {
	ShipoutTransaction
	CustomerName *string `json:"customer_name,omitempty" db:"customer_name"`
}

// ShipoutItem is one pick-list line. Populated columns depend on the parent
// transaction type.
type ShipoutItem struct {
	ID                int64    `json:"id" db:"id"`
	TransactionID     int64    `json:"transaction_id" db:"transaction_id"`
	ItemID            int64    `json:"item_id" db:"item_id"`
	RequestedQuantity int      `json:"requested_quantity" db:"requested_quantity"`
	SkidNumber        *string  `json:"skid_number,omitempty" db:"skid_number"`
	Length            *float64 `json:"length,omitempty" db:"length"`
	Width             *float64 `json:"width,omitempty" db:"width"`
	Height            *float64 `json:"height,omitempty" db:"height"`
	Weight            *float64 `json:"weight,omitempty" db:"weight"`
}

// ShipoutLine is the pick-list line view. SerialNum and dimensions are only
// populated for non-Skid transactions; SkidNumber only for Skid ones.
type ShipoutLine struct {
	ItemID     int64    `json:"item_id" db:"item_id"`
	Model      *string  `json:"model,omitempty" db:"model"`
	Quantity   int      `json:"quantity" db:"quantity"`
	SkidNumber *string  `json:"skid_number,omitempty" db:"skid_number"`
	Length     *float64 `json:"length,omitempty" db:"length"`
	Width      *float64 `json:"width,omitempty" db:"width"`
	Height     *float64 `json:"height,omitempty" db:"height"`
	Weight     *float64 `json:"weight,omitempty" db:"weight"`
	SerialNum  *string  `json:"serial_num,omitempty" db:"serial_num"`
}

// PickListLine is one line of a submitted pick list. The model is resolved
// to a catalog item at write time; a miss fails the whole call.
type PickListLine struct {
	Model      string   `json:"model" validate:"required"`
	Quantity   int      `json:"quantity"`
	SkidNumber *string  `json:"skid_number"`
	Length     *float64 `json:"length"`
	Width      *float64 `json:"width"`
	Height     *float64 `json:"height"`
	Weight     *float64 `json:"weight"`
}

// SavePickListRequest creates a Pending transaction or replaces the lines of
// an existing one.
type SavePickListRequest struct {
	TransactionID   *int64         `json:"transaction_id"`
	CustomerID      int64          `json:"customer_id" validate:"required"`
	User            string         `json:"user" validate:"required"`
	TransactionType string         `json:"transaction_type" validate:"required,oneof=Single-item Multiple-item Skid"`
	Items           []PickListLine `json:"items" validate:"required,min=1,dive"`
	Courier         *string        `json:"courier"`
	LicensePlate    *string        `json:"license_plate"`
}

// UpdateShipoutRequest edits the header of a Pending transaction
type UpdateShipoutRequest struct {
	CustomerID      int64   `json:"customer_id" validate:"required"`
	User            string  `json:"user" validate:"required"`
	TransactionType string  `json:"transaction_type" validate:"required,oneof=Single-item Multiple-item Skid"`
	Courier         *string `json:"courier"`
	LicensePlate    *string `json:"license_plate"`
}

// CompleteShipoutUnit identifies one unit being finalized
type CompleteShipoutUnit struct {
	SerialNum string `json:"serial_num" validate:"required"`
}

// CompleteShipoutRequest finalizes a Pending transaction: each unit is
// marked shipped and the transaction moves to its terminal state.
type CompleteShipoutRequest struct {
	TransactionID int64                 `json:"transaction_id" validate:"required"`
	Items         []CompleteShipoutUnit `json:"items" validate:"required,min=1,dive"`
}
