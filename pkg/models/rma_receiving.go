package models

import "time"

// RMAReceivingEntry tracks how many units of one item were declared on an
// RMA manifest versus how many were actually taken into inventory. At most
// one row exists per (rma_num, item_id).
type RMAReceivingEntry struct {
	ID               int64     `json:"id" db:"id"`
	RMANum           string    `json:"rma_num" db:"rma_num"`
	RMAType          *string   `json:"rma_type,omitempty" db:"rma_type"`
	ItemID           int64     `json:"item_id" db:"item_id"`
	UserID           *string   `json:"user_id,omitempty" db:"user_id"`
	QuantityReported int       `json:"quantity_reported" db:"quantity_reported"`
	QuantityReceived int       `json:"quantity_received" db:"quantity_received"`
	ImportID         int64     `json:"import_id" db:"import_id"`
	DateCreated      time.Time `json:"date_created" db:"date_created"`
}

// RMAImportRow is one manifest line submitted to the batch importer
type RMAImportRow struct {
	Model   string `json:"model" validate:"required"`
	PartNum string `json:"part_num" validate:"required"`
	RMANum  string `json:"rma_num" validate:"required"`
	RMAType string `json:"rma_type"`
}

// RMAImportResult is the batch importer outcome. AddedCount plus
// len(SkippedEntries) always equals the submitted row count.
type RMAImportResult struct {
	AddedCount     int      `json:"addedCount"`
	SkippedEntries []string `json:"skippedEntries"`
}

// RMAInventoryItem is an RMA receiving entry joined with its catalog item
// for the receiving page.
type RMAInventoryItem struct {
	ID               int64     `json:"id" db:"id"`
	RMANum           string    `json:"rma_num" db:"rma_num"`
	RMAType          *string   `json:"rma_type,omitempty" db:"rma_type"`
	ItemID           int64     `json:"item_id" db:"item_id"`
	DateCreated      time.Time `json:"date_created" db:"date_created"`
	ImportID         int64     `json:"import_id" db:"import_id"`
	UserID           *string   `json:"user_id,omitempty" db:"user_id"`
	Model            string    `json:"model" db:"model"`
	PartNum          string    `json:"part_num" db:"part_num"`
	ProductType      *string   `json:"product_type,omitempty" db:"product_type"`
	QuantityReported int       `json:"quantity_reported" db:"quantity_reported"`
	QuantityReceived int       `json:"quantity_received" db:"quantity_received"`
}
