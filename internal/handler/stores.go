package handler

import (
	"context"

	"github.com/javiertc/mechanic-shop-api/internal/model"
	"github.com/javiertc/mechanic-shop-api/internal/repository"
)

// Handlers depend on these narrow store interfaces instead of the
// concrete repositories so tests can substitute in-memory fakes.

// CustomerStore is the persistence surface used by customer endpoints.
type CustomerStore interface {
	Create(ctx context.Context, name, email, phone, address, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Customer, error)
	GetByID(ctx context.Context, id uint64) (model.Customer, error)
	List(ctx context.Context, page, perPage int) ([]model.Customer, int64, error)
	Update(ctx context.Context, id uint64, name, email, phone, address, password string, cost int) error
	Delete(ctx context.Context, id uint64) error
}

// EmployeeStore is the persistence surface used by employee endpoints.
type EmployeeStore interface {
	Create(ctx context.Context, name, email, phone, address, password string, salaryCents uint64, role string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.Employee, error)
	GetByID(ctx context.Context, id uint64) (model.Employee, error)
	List(ctx context.Context, page, perPage int) ([]model.Employee, int64, error)
	Update(ctx context.Context, id uint64, name, email, phone, address, password string, salaryCents uint64, role string, cost int) error
	Delete(ctx context.Context, id uint64) error
	WorkingTickets(ctx context.Context) ([]repository.WorkingMechanic, error)
}

// CarStore is the persistence surface used by car endpoints.
type CarStore interface {
	Create(ctx context.Context, make, mdl string, modelYear uint32, color string, customerID uint64) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.Car, error)
	List(ctx context.Context, page, perPage int) ([]model.Car, int64, error)
	ListByCustomer(ctx context.Context, customerID uint64) ([]model.Car, error)
	Update(ctx context.Context, id uint64, make, mdl string, modelYear uint32, color string, customerID uint64) error
	Delete(ctx context.Context, id uint64) error
}

// ServiceTypeStore is the persistence surface used by the catalog
// endpoints.
type ServiceTypeStore interface {
	Create(ctx context.Context, name, description string, priceCents uint64) (uint64, error)
	GetByID(ctx context.Context, id uint64) (model.ServiceType, error)
	List(ctx context.Context) ([]model.ServiceType, error)
	Update(ctx context.Context, id uint64, name, description string, priceCents uint64) error
	Delete(ctx context.Context, id uint64) error
}

// TicketStore is the persistence surface used by ticket and
// assignment endpoints.
type TicketStore interface {
	Create(ctx context.Context, f repository.TicketFields, serviceTypeIDs []uint64) (*repository.TicketDetail, error)
	Update(ctx context.Context, id uint64, f repository.TicketFields, serviceTypeIDs []uint64) (*repository.TicketDetail, error)
	Delete(ctx context.Context, id uint64) error
	GetDetail(ctx context.Context, id uint64) (*repository.TicketDetail, error)
	List(ctx context.Context, page, perPage int) ([]repository.TicketDetail, int64, error)
	AssignMechanic(ctx context.Context, ticketID, employeeID uint64) error
	RemoveMechanic(ctx context.Context, ticketID, employeeID uint64) error
	AssignServiceType(ctx context.Context, serviceTypeID, ticketID uint64) (*repository.TicketDetail, error)
	RemoveServiceType(ctx context.Context, serviceTypeID, ticketID uint64) error
}

// The concrete repositories satisfy the store interfaces.
var (
	_ CustomerStore    = (*repository.CustomerRepo)(nil)
	_ EmployeeStore    = (*repository.EmployeeRepo)(nil)
	_ CarStore         = (*repository.CarRepo)(nil)
	_ ServiceTypeStore = (*repository.ServiceTypeRepo)(nil)
	_ TicketStore      = (*repository.TicketRepo)(nil)
)
