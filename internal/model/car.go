package model

import "time"

// Car represents a row in the `cars` table. Every car belongs to
// exactly one customer via CustomerID.
type Car struct {
	ID         uint64    // cars.id
	Make       string    // cars.make
	Model      string    // cars.model
	ModelYear  uint32    // cars.model_year
	Color      string    // cars.color
	CustomerID uint64    // cars.customer_id
	CreatedAt  time.Time // cars.created_at
	UpdatedAt  time.Time // cars.updated_at
}
