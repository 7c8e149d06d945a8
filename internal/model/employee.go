package model

import "time"

// Employee represents a row in the `employees` table. Employees are
// shop staff: mechanics work on tickets through the ticket_mechanics
// join table, admins additionally manage employees and service types.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – employee full name.
//  Email        – unique email address, stored lower-cased.
//  Phone        – contact phone number.
//  Address      – mailing address.
//  PasswordHash – bcrypt hashed password.
//  SalaryCents  – yearly salary in cents.
//  Role         – "mechanic" or "admin".
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Employee struct {
	ID           uint64    // employees.id
	Name         string    // employees.name
	Email        string    // employees.email
	Phone        string    // employees.phone
	Address      string    // employees.address
	PasswordHash string    // employees.password_hash
	SalaryCents  uint64    // employees.salary_cents
	Role         string    // employees.role
	CreatedAt    time.Time // employees.created_at
	UpdatedAt    time.Time // employees.updated_at
}
