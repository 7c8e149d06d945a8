package model

import "time"

// ServiceTicket represents a row in the `service_tickets` table, one
// repair engagement for a car. Mechanics and service types are linked
// through the ticket_mechanics and ticket_services join tables; both
// relations are sets keyed by the id pair.
//
// Fields:
//  ID            – primary key identifier.
//  ServiceDate   – date the work is scheduled for.
//  VIN           – vehicle identification number as supplied.
//  CarIssue      – free-text problem description (optional).
//  IsMajorDamage – escalation flag; true triggers a queue event.
//  CustomerID    – owning customer, required.
//  CarID         – car being serviced, required.
//  CreatedAt     – timestamp of creation.
//  UpdatedAt     – timestamp of last update.
type ServiceTicket struct {
	ID            uint64    // service_tickets.id
	ServiceDate   time.Time // service_tickets.service_date
	VIN           string    // service_tickets.vin
	CarIssue      string    // service_tickets.car_issue
	IsMajorDamage bool      // service_tickets.is_major_damage
	CustomerID    uint64    // service_tickets.customer_id
	CarID         uint64    // service_tickets.car_id
	CreatedAt     time.Time // service_tickets.created_at
	UpdatedAt     time.Time // service_tickets.updated_at
}
