// Package router wires handlers to routes and declares the access
// policy for every route class in one place. Handlers never decide
// which role may call them; only the self-or-staff ownership checks on
// customer-scoped resources live in handler code because they need the
// path id.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/javiertc/mechanic-shop-api/internal/handler"
	"github.com/javiertc/mechanic-shop-api/internal/middleware"
)

// Handlers carries every handler the API exposes.
type Handlers struct {
	Customers    *handler.CustomerHandler
	Employees    *handler.EmployeeHandler
	Cars         *handler.CarHandler
	ServiceTypes *handler.ServiceTypeHandler
	Tickets      *handler.TicketHandler
}

// Register mounts all routes on e. jwtSecret feeds the auth
// middleware; cache, when non-nil, is applied to the heavy read
// endpoints, and loginLimit throttles the credential-guessing surface
// (both login routes).
func Register(e *echo.Echo, h Handlers, jwtSecret string, cache, loginLimit echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	auth := middleware.JWTAuth(jwtSecret)
	staff := middleware.RequireRole("mechanic", "admin")
	admin := middleware.RequireRole("admin")

	var reads []echo.MiddlewareFunc
	if cache != nil {
		reads = append(reads, cache)
	}
	var logins []echo.MiddlewareFunc
	if loginLimit != nil {
		logins = append(logins, loginLimit)
	}

	// Customers. Registration and login are open; everything else
	// needs a token. Update and delete additionally require the
	// caller to be the customer itself or staff, checked in the
	// handler against the path id.
	e.POST("/customers", h.Customers.Create)
	e.POST("/customers/login", h.Customers.Login, logins...)
	e.GET("/customers", h.Customers.List, append([]echo.MiddlewareFunc{auth}, reads...)...)
	e.GET("/customers/:id", h.Customers.Get, auth)
	e.PUT("/customers/:id", h.Customers.Update, auth)
	e.DELETE("/customers/:id", h.Customers.Delete, auth)

	// Car sub-resource scoped to one customer. Ownership is checked
	// in the handler: the path customer or any staff member.
	e.POST("/customers/:id/cars", h.Customers.CreateCar, auth)
	e.GET("/customers/:id/cars", h.Customers.ListCars, auth)

	// Cars. Reads are public. Writes carry only the auth gate here:
	// the handler compares the caller with the stored owner and lets
	// staff through, so an owner can maintain their own car.
	e.POST("/cars", h.Cars.Create, auth)
	e.GET("/cars", h.Cars.List, reads...)
	e.GET("/cars/:id", h.Cars.Get)
	e.PUT("/cars/:id", h.Cars.Update, auth)
	e.DELETE("/cars/:id", h.Cars.Delete, auth)

	// Employees. Registration and login are open so a fresh install
	// can bootstrap its first admin; destructive operations are
	// admin-only.
	e.POST("/employees", h.Employees.Create)
	e.POST("/employees/login", h.Employees.Login, logins...)
	e.GET("/employees", h.Employees.List, append([]echo.MiddlewareFunc{auth}, reads...)...)
	e.GET("/employees/working_tickets", h.Employees.WorkingTickets, auth)
	e.GET("/employees/:id", h.Employees.Get, auth)
	e.PUT("/employees/:id", h.Employees.Update, auth, admin)
	e.DELETE("/employees/:id", h.Employees.Delete, auth, admin)

	// Service type catalog. Reads are public, writes admin-only. The
	// assignment routes mutate a ticket relation so they follow the
	// ticket write policy instead.
	e.POST("/service_types", h.ServiceTypes.Create, auth, admin)
	e.GET("/service_types", h.ServiceTypes.List, reads...)
	e.GET("/service_types/:id", h.ServiceTypes.Get)
	e.PUT("/service_types/:id", h.ServiceTypes.Update, auth, admin)
	e.DELETE("/service_types/:id", h.ServiceTypes.Delete, auth, admin)
	e.PUT("/service_types/:id/assign_service_type/:ticket_id", h.ServiceTypes.AssignToTicket, auth, staff)
	e.PUT("/service_types/:id/remove_service_type/:ticket_id", h.ServiceTypes.RemoveFromTicket, auth, staff)

	// Service tickets. Any authenticated user may read; all writes
	// and assignment changes are staff-only.
	e.POST("/tickets", h.Tickets.Create, auth, staff)
	e.GET("/tickets", h.Tickets.List, append([]echo.MiddlewareFunc{auth}, reads...)...)
	e.GET("/tickets/:id", h.Tickets.Get, auth)
	e.PUT("/tickets/:id", h.Tickets.Update, auth, staff)
	e.DELETE("/tickets/:id", h.Tickets.Delete, auth, staff)
	e.PUT("/tickets/:id/assign-mechanic/:employee_id", h.Tickets.AssignMechanic, auth, staff)
	e.PUT("/tickets/:id/remove-mechanic/:employee_id", h.Tickets.RemoveMechanic, auth, staff)
}
