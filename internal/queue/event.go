// Package queue defines message payloads exchanged over the message broker.
package queue

// TicketEscalatedEvent is published when a service ticket is created
// or updated with the major-damage flag set. It carries enough
// information for the sister-site process consuming the queue to act
// without querying the primary database.
type TicketEscalatedEvent struct {
	TicketID    uint64   `json:"ticket_id"`
	CustomerID  uint64   `json:"customer_id"`
	CarID       uint64   `json:"car_id"`
	VIN         string   `json:"vin"`
	CarIssue    string   `json:"car_issue"`
	ServiceDate string   `json:"service_date"`
	Services    []string `json:"services"`
	EscalatedAt string   `json:"escalated_at"`
}
