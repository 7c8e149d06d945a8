// Package repository implements data access for the mechanic shop
// over database/sql. This file defines sentinel errors shared across
// repositories so handlers can map failure scenarios onto HTTP status
// codes without string matching. Row absence is reported with
// sql.ErrNoRows except where an operation touches several entities
// and the caller needs to know which one was missing.
package repository

import (
	"errors"
	"strings"
)

// ErrEmailExists is returned when an insert or update violates the
// unique email constraint on customers or employees. Handlers should
// translate this into an HTTP 400/409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrNameExists is returned when a service type insert or update
// violates the unique name constraint.
var ErrNameExists = errors.New("name already exists")

// Entity-specific not-found sentinels used by the assignment
// operations, which reference a ticket and a related entity in one
// call and must report which side was absent.
var (
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrServiceTypeNotFound = errors.New("service type not found")
	ErrCustomerNotFound    = errors.New("customer not found")
	ErrCarNotFound         = errors.New("car not found")
)

// ErrCarOwnerMismatch is returned when a ticket references a car that
// exists but belongs to a different customer than the one on the
// ticket. Handlers surface it as a field validation error.
var ErrCarOwnerMismatch = errors.New("car does not belong to customer")

// The MySQL driver reports constraint violations as plain errors, so
// repositories match on the server error codes: 1062 duplicate key,
// 1452 foreign key violation.

func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

func isFKViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1452")
}
