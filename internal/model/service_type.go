package model

import "time"

// ServiceType represents a row in the `service_types` table, a kind
// of work the shop performs (oil change, brake inspection, ...).
// Name is unique and PriceCents is never negative.
type ServiceType struct {
	ID          uint64    // service_types.id
	Name        string    // service_types.name
	Description string    // service_types.description
	PriceCents  uint64    // service_types.price_cents
	CreatedAt   time.Time // service_types.created_at
	UpdatedAt   time.Time // service_types.updated_at
}
