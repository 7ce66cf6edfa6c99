package models

// Customer is a receiving/shipout counterparty. Name is the business key
// used by the upsert path.
type Customer struct {
	ID         int64   `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Address    *string `json:"address,omitempty" db:"address"`
	City       *string `json:"city,omitempty" db:"city"`
	Province   *string `json:"province,omitempty" db:"province"`
	PostalCode *string `json:"postal_code,omitempty" db:"postal_code"`
	Country    *string `json:"country,omitempty" db:"country"`
	Phone      *string `json:"phone,omitempty" db:"phone"`
	Email      *string `json:"email,omitempty" db:"email"`
}

// UpsertCustomerRequest is the request body for creating or updating a
// customer by name.
type UpsertCustomerRequest struct {
	Name       string  `json:"name" validate:"required"`
	Address    *string `json:"address"`
	City       *string `json:"city"`
	Province   *string `json:"province"`
	PostalCode *string `json:"postal_code"`
	Country    *string `json:"country"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
}
