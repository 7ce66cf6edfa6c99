package models

import "time"

// DockReceivingEntry records the arrival of one physical parcel at the dock.
// TrackingNum is unique per parcel; inventory units reference it.
type DockReceivingEntry struct {
	ID          int64     `json:"id" db:"id"`
	TrackingNum *string   `json:"tracking_num,omitempty" db:"tracking_num"`
	Carrier     *string   `json:"carrier,omitempty" db:"carrier"`
	RMANum      *string   `json:"rma_num,omitempty" db:"rma_num"`
	RMAType     string    `json:"rma_type" db:"rma_type"`
	Quantity    *int      `json:"quantity,omitempty" db:"quantity"`
	CustomerID  *int64    `json:"customer_id,omitempty" db:"customer_id"`
	UserCreated string    `json:"user_created" db:"user_created"`
	DateCreated time.Time `json:"date_created" db:"date_created"`
}

// DockReceivingRow is a dock receiving entry joined with its customer for
// the receiving page listing.
type DockReceivingRow struct {
	DockReceivingEntry
	CustomerName       *string `json:"customer_name,omitempty" db:"customer_name"`
	CustomerAddress    *string `json:"customer_address,omitempty" db:"customer_address"`
	CustomerCity       *string `json:"customer_city,omitempty" db:"customer_city"`
	CustomerProvince   *string `json:"customer_province,omitempty" db:"customer_province"`
	CustomerPostalCode *string `json:"customer_postal_code,omitempty" db:"customer_postal_code"`
	CustomerCountry    *string `json:"customer_country,omitempty" db:"customer_country"`
	CustomerPhone      *string `json:"customer_phone,omitempty" db:"customer_phone"`
	CustomerEmail      *string `json:"customer_email,omitempty" db:"customer_email"`
}

// CreateDockReceivingRequest is the request body for recording a dock receipt
type CreateDockReceivingRequest struct {
	TrackingNum  *string `json:"tracking_num"`
	Carrier      *string `json:"carrier"`
	RMANum       *string `json:"rma_num"`
	RMAType      string  `json:"rma_type" validate:"required"`
	Quantity     *int    `json:"quantity"`
	UserCreated  string  `json:"user_created" validate:"required"`
	CustomerName *string `json:"customer_name"`
}

// UpdateDockReceivingRequest is the request body for editing a dock receipt.
// When CustomerID is set the linked customer record is updated in the same
// transaction.
type UpdateDockReceivingRequest struct {
	TrackingNum *string `json:"tracking_num"`
	Carrier     *string `json:"carrier"`
	RMANum      *string `json:"rma_num"`
	RMAType     string  `json:"rma_type" validate:"required"`
	Quantity    *int    `json:"quantity"`
	CustomerID  *int64  `json:"customer_id"`
	Name        *string `json:"name"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Province    *string `json:"province"`
	PostalCode  *string `json:"postal_code"`
	Country     *string `json:"country"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
}

// DockReceivingPage is the paginated listing response
type DockReceivingPage struct {
	Rows       []DockReceivingRow `json:"rows"`
	TotalCount int64              `json:"totalCount"`
}
