package events

// SchemaVersion is stamped into every published payload so downstream
// consumers can handle shape changes.
const SchemaVersion = "1.0"

// UnitCreatedPayload is the body of an inventory.unit.created event
type UnitCreatedPayload struct {
	SchemaVersion string  `json:"schema_version"`
	SerialNum     string  `json:"serial_num"`
	RMANum        string  `json:"rma_num"`
	TrackingNum   string  `json:"tracking_num"`
	ItemID        int64   `json:"item_id"`
	Model         string  `json:"model"`
	Brand         *string `json:"brand,omitempty"`
	Ownership     *string `json:"ownership,omitempty"`
}

// UnitsRelocatedPayload is the body of an inventory.units.relocated event
type UnitsRelocatedPayload struct {
	SchemaVersion string   `json:"schema_version"`
	SerialNumbers []string `json:"serial_numbers"`
	Location      string   `json:"location"`
}

// ShipoutCompletedPayload is the body of a shipout.completed event
type ShipoutCompletedPayload struct {
	SchemaVersion string   `json:"schema_version"`
	TransactionID int64    `json:"transaction_id"`
	SerialNumbers []string `json:"serial_numbers"`
}

// ImportCompletedPayload is the body of an rma.import.completed event
type ImportCompletedPayload struct {
	SchemaVersion string `json:"schema_version"`
	ImportID      int64  `json:"import_id"`
	AddedCount    int    `json:"added_count"`
	SkippedCount  int    `json:"skipped_count"`
}
