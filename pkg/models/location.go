package models

// Location is a named storage spot. Occupancy is derived, never stored.
type Location struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description,omitempty" db:"description"`
}

// LocationOccupancy is a location with its derived unit count. The listing
// also surfaces the synthetic "Unassigned" row for null-located units.
type LocationOccupancy struct {
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	ItemCount   int64  `json:"itemCount" db:"item_count"`
}

// UnassignedLocation is the synthetic name for units with no current location.
const UnassignedLocation = "Unassigned"

// CreateLocationRequest is the request body for adding a location
type CreateLocationRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description"`
}
