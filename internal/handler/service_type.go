package handler

import (
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/javiertc/mechanic-shop-api/internal/model"
	"github.com/javiertc/mechanic-shop-api/internal/repository"
)

// ServiceTypeHandler bundles dependencies for the catalog endpoints.
// Assign and Remove also need the ticket store because those routes
// mutate the ticket relation.
type ServiceTypeHandler struct {
	ServiceTypes ServiceTypeStore
	Tickets      TicketStore
}

func NewServiceTypeHandler(serviceTypes ServiceTypeStore, tickets TicketStore) *ServiceTypeHandler {
	return &ServiceTypeHandler{ServiceTypes: serviceTypes, Tickets: tickets}
}

type serviceTypeReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

type serviceTypeView struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

func toServiceTypeView(s model.ServiceType) serviceTypeView {
	return serviceTypeView{ID: s.ID, Name: s.Name, Description: s.Description,
		Price: float64(s.PriceCents) / 100.0}
}

func (r serviceTypeReq) validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "name is required"
	}
	if r.Price < 0 {
		errs["price"] = "price must not be negative"
	}
	return errs
}

// Create adds a catalog entry. Admin-gated in the router.
func (h *ServiceTypeHandler) Create(c echo.Context) error {
	var req serviceTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.ServiceTypes.Create(ctx, req.Name, req.Description, uint64(math.Round(req.Price*100)))
	if err != nil {
		if errors.Is(err, repository.ErrNameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "service type name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create service type failed"})
	}
	st, err := h.ServiceTypes.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load service type failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Service type added", "service_type": toServiceTypeView(st)})
}

// List returns the whole catalog. The catalog is small and read often,
// so it is served unpaginated and sits behind the response cache.
func (h *ServiceTypeHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	types, err := h.ServiceTypes.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	views := make([]serviceTypeView, 0, len(types))
	for _, s := range types {
		views = append(views, toServiceTypeView(s))
	}
	return c.JSON(http.StatusOK, views)
}

// Get returns one catalog entry by id.
func (h *ServiceTypeHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid service type id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	st, err := h.ServiceTypes.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Service type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, toServiceTypeView(st))
}

// Update rewrites a catalog entry. Admin-gated in the router.
func (h *ServiceTypeHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid service type id"})
	}
	var req serviceTypeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.ServiceTypes.Update(ctx, id, req.Name, req.Description, uint64(math.Round(req.Price*100)))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Service type not found"})
		case errors.Is(err, repository.ErrNameExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "service type name already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update service type failed"})
	}
	st, err := h.ServiceTypes.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load service type failed"})
	}
	return c.JSON(http.StatusOK, toServiceTypeView(st))
}

// Delete removes a catalog entry. Relation rows referencing it are
// removed by the schema's cascade. Admin-gated in the router.
func (h *ServiceTypeHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid service type id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.ServiceTypes.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Service type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete service type failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Service type deleted successfully"})
}

// AssignToTicket links this service type to a ticket. Repeating the
// call leaves the relation unchanged and still succeeds.
func (h *ServiceTypeHandler) AssignToTicket(c echo.Context) error {
	serviceTypeID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid service type id"})
	}
	ticketID, ok := paramID(c, "ticket_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid ticket id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Tickets.AssignServiceType(ctx, serviceTypeID, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Ticket not found"})
		case errors.Is(err, repository.ErrServiceTypeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Service type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "assign service type failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Service type assigned to ticket",
		"ticket":  detail,
	})
}

// RemoveFromTicket unlinks this service type from a ticket. Removing a
// link that does not exist is a no-op and still succeeds.
func (h *ServiceTypeHandler) RemoveFromTicket(c echo.Context) error {
	serviceTypeID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid service type id"})
	}
	ticketID, ok := paramID(c, "ticket_id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid ticket id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Tickets.RemoveServiceType(ctx, serviceTypeID, ticketID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Ticket not found"})
		case errors.Is(err, repository.ErrServiceTypeNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Service type not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "remove service type failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Service type removed from ticket"})
}
