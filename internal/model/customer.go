package model

import "time"

// Customer represents a row in the `customers` table. Customers own
// cars and open service tickets for them. The password is stored as
// a bcrypt hash only; handlers define their own response types so
// the hash is never serialized.
//
// Fields:
//  ID           – primary key identifier.
//  Name         – customer full name.
//  Email        – unique email address, stored lower-cased.
//  Phone        – contact phone number.
//  Address      – mailing address.
//  PasswordHash – bcrypt hashed password.
//  Role         – always "customer"; kept for token issuance.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Customer struct {
	ID           uint64    // customers.id
	Name         string    // customers.name
	Email        string    // customers.email
	Phone        string    // customers.phone
	Address      string    // customers.address
	PasswordHash string    // customers.password_hash
	Role         string    // customers.role
	CreatedAt    time.Time // customers.created_at
	UpdatedAt    time.Time // customers.updated_at
}
