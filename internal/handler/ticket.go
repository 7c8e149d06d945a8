package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/javiertc/mechanic-shop-api/internal/queue"
	"github.com/javiertc/mechanic-shop-api/internal/repository"
	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

const serviceDateLayout = "2006-01-02"

// TicketHandler bundles dependencies for service ticket endpoints.
// Publish is called in a background goroutine whenever a write leaves
// a ticket flagged as major damage; tests swap in a recorder.
type TicketHandler struct {
	Tickets TicketStore
	Publish func(ctx context.Context, event queue.TicketEscalatedEvent) error
}

func NewTicketHandler(tickets TicketStore, publish func(ctx context.Context, event queue.TicketEscalatedEvent) error) *TicketHandler {
	return &TicketHandler{Tickets: tickets, Publish: publish}
}

type ticketReq struct {
	ServiceDate    string   `json:"service_date"`
	VIN            string   `json:"VIN"`
	CarIssue       string   `json:"car_issue"`
	IsMajorDamage  bool     `json:"is_major_damage"`
	CustomerID     uint64   `json:"customer_id"`
	CarID          uint64   `json:"car_id"`
	ServiceTypeIDs []uint64 `json:"service_type_ids"`
}

// validate collects all field problems in one pass so the client sees
// every error at once. The parsed date is returned alongside.
func (r ticketReq) validate() (time.Time, map[string]string) {
	errs := map[string]string{}
	var day time.Time
	if r.ServiceDate == "" {
		errs["service_date"] = "service_date is required"
	} else {
		var err error
		day, err = time.Parse(serviceDateLayout, r.ServiceDate)
		if err != nil {
			errs["service_date"] = "service_date must be formatted YYYY-MM-DD"
		}
	}
	if strings.TrimSpace(r.VIN) == "" {
		errs["VIN"] = "VIN is required"
	}
	if strings.TrimSpace(r.CarIssue) == "" {
		errs["car_issue"] = "car_issue is required"
	}
	if r.CustomerID == 0 {
		errs["customer_id"] = "customer_id is required"
	}
	if r.CarID == 0 {
		errs["car_id"] = "car_id is required"
	}
	return day, errs
}

func (r ticketReq) fields(day time.Time) repository.TicketFields {
	return repository.TicketFields{
		ServiceDate:   day,
		VIN:           strings.TrimSpace(r.VIN),
		CarIssue:      strings.TrimSpace(r.CarIssue),
		IsMajorDamage: r.IsMajorDamage,
		CustomerID:    r.CustomerID,
		CarID:         r.CarID,
	}
}

// escalate fires the broker event for a major-damage ticket. Runs
// detached from the request so a slow or down broker never delays the
// response; PublishTicketEscalated logs its own failures.
func (h *TicketHandler) escalate(detail *repository.TicketDetail) {
	if h.Publish == nil {
		return
	}
	services := make([]string, 0, len(detail.Services))
	for _, s := range detail.Services {
		services = append(services, s.Name)
	}
	event := queue.TicketEscalatedEvent{
		TicketID:    detail.ID,
		CustomerID:  detail.CustomerID,
		CarID:       detail.CarID,
		VIN:         detail.VIN,
		CarIssue:    detail.CarIssue,
		ServiceDate: detail.ServiceDate,
		Services:    services,
		EscalatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = h.Publish(ctx, event)
	}()
}

func writeTicketError(c echo.Context, err error, fallback string) error {
	var invalid *repository.InvalidServiceTypesError
	switch {
	case errors.As(err, &invalid):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message":     "one or more service type ids do not exist",
			"invalid_ids": invalid.Missing,
		})
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, repository.ErrTicketNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Ticket not found"})
	case errors.Is(err, repository.ErrCustomerNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"customer_id": "customer does not exist"})
	case errors.Is(err, repository.ErrCarNotFound):
		return c.JSON(http.StatusBadRequest, echo.Map{"car_id": "car does not exist"})
	case errors.Is(err, repository.ErrCarOwnerMismatch):
		return c.JSON(http.StatusBadRequest, echo.Map{"car_id": "car does not belong to customer"})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"message": fallback})
}

// Create opens a new service ticket. The requested service type set is
// resolved in full before anything is written; one bad id rejects the
// whole request.
func (h *TicketHandler) Create(c echo.Context) error {
	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	day, errs := req.validate()
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Tickets.Create(ctx, req.fields(day), req.ServiceTypeIDs)
	if err != nil {
		return writeTicketError(c, err, "create ticket failed")
	}

	body := echo.Map{"message": "Ticket created", "ticket": detail}
	if detail.IsMajorDamage {
		h.escalate(detail)
		body["escalated"] = true
	}
	return c.JSON(http.StatusCreated, body)
}

// List returns one page of tickets, each with its full relation sets.
func (h *TicketHandler) List(c echo.Context) error {
	page, perPage := utils.ParsePagination(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	tickets, total, err := h.Tickets.List(ctx, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching Tickets"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":          page,
		"per_page":      perPage,
		"total_tickets": total,
		"tickets":       tickets,
	})
}

// Get returns one ticket with services and mechanic ids.
func (h *TicketHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid ticket id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Tickets.GetDetail(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, detail)
}

// Update rewrites a ticket's fields and replaces its service type set
// with exactly the requested one. Mechanic assignments are untouched.
func (h *TicketHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid ticket id"})
	}
	var req ticketReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	day, errs := req.validate()
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	prev, err := h.Tickets.GetDetail(ctx, id)
	if err != nil {
		return writeTicketError(c, err, "update ticket failed")
	}

	detail, err := h.Tickets.Update(ctx, id, req.fields(day), req.ServiceTypeIDs)
	if err != nil {
		return writeTicketError(c, err, "update ticket failed")
	}

	body := echo.Map{"message": "Ticket updated", "ticket": detail}
	// Escalate only when this update turns the flag on. A ticket
	// already marked major was escalated when that happened.
	if detail.IsMajorDamage && !prev.IsMajorDamage {
		h.escalate(detail)
		body["escalated"] = true
	}
	return c.JSON(http.StatusOK, body)
}

// Delete removes a ticket. Relation rows go with it via the schema's
// cascade.
func (h *TicketHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid ticket id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Ticket not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete ticket failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": fmt.Sprintf("Ticket %d deleted successfully", id)})
}

// AssignMechanic links an employee to a ticket. Repeating the call
// leaves the relation unchanged and still succeeds.
func (h *TicketHandler) AssignMechanic(c echo.Context) error {
	ticketID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid ticket id"})
	}
	employeeID, ok := paramID(c, "employee_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tickets.AssignMechanic(ctx, ticketID, employeeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Ticket not found"})
		case errors.Is(err, repository.ErrEmployeeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "assign mechanic failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Mechanic %d assigned to ticket %d", employeeID, ticketID),
	})
}

// RemoveMechanic unlinks an employee from a ticket. Removing a link
// that does not exist is a no-op and still succeeds.
func (h *TicketHandler) RemoveMechanic(c echo.Context) error {
	ticketID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid ticket id"})
	}
	employeeID, ok := paramID(c, "employee_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Tickets.RemoveMechanic(ctx, ticketID, employeeID); err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Ticket not found"})
		case errors.Is(err, repository.ErrEmployeeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "remove mechanic failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": fmt.Sprintf("Mechanic %d removed from ticket %d", employeeID, ticketID),
	})
}
