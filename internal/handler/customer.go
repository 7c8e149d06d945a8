package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/javiertc/mechanic-shop-api/internal/config"
	"github.com/javiertc/mechanic-shop-api/internal/model"
	"github.com/javiertc/mechanic-shop-api/internal/repository"
	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

// CustomerHandler bundles dependencies for customer endpoints,
// including the cars sub-resource scoped to the owning customer.
type CustomerHandler struct {
	Cfg       config.Config
	Customers CustomerStore
	Cars      CarStore
}

func NewCustomerHandler(cfg config.Config, customers CustomerStore, cars CarStore) *CustomerHandler {
	return &CustomerHandler{Cfg: cfg, Customers: customers, Cars: cars}
}

// ----- DTOs -----

type customerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Password string `json:"password"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type customerView struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

func toCustomerView(c model.Customer) customerView {
	return customerView{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Address: c.Address}
}

// validate collects every missing field so the client sees the whole
// problem in one round trip. requirePassword is false on update,
// where an empty password means "keep the current one".
func (r customerReq) validate(requirePassword bool) map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(r.Email) == "" {
		errs["email"] = "email is required"
	}
	if strings.TrimSpace(r.Phone) == "" {
		errs["phone"] = "phone is required"
	}
	if strings.TrimSpace(r.Address) == "" {
		errs["address"] = "address is required"
	}
	if requirePassword && r.Password == "" {
		errs["password"] = "password is required"
	}
	return errs
}

// Create registers a new customer. Open route: customers sign
// themselves up.
func (h *CustomerHandler) Create(c echo.Context) error {
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := req.validate(true); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Customers.Create(ctx, req.Name, req.Email, req.Phone, req.Address, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create customer failed"})
	}
	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load customer failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "New customer added successfully!",
		"customer": toCustomerView(cust),
	})
}

// Login verifies credentials and returns a bearer token carrying the
// customer role. Wrong email and wrong password produce the identical
// message so the endpoint cannot be used to enumerate accounts.
func (h *CustomerHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid payload, expecting email and password"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cust, err := h.Customers.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !utils.VerifyPassword(cust.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}

	token, err := utils.IssueToken(h.Cfg.JWTSecret, cust.ID, cust.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":     "success",
		"message":    "Successfully Logged In",
		"auth_token": token.Token,
	})
}

// List returns one page of customers inside the standard envelope.
func (h *CustomerHandler) List(c echo.Context) error {
	page, perPage := utils.ParsePagination(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	customers, total, err := h.Customers.List(ctx, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	views := make([]customerView, 0, len(customers))
	for _, cust := range customers {
		views = append(views, toCustomerView(cust))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":            page,
		"per_page":        perPage,
		"total_customers": total,
		"customers":       views,
	})
}

// Get returns one customer by id.
func (h *CustomerHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid customer id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, toCustomerView(cust))
}

// Update rewrites a customer record. Customers may update only their
// own record; staff may update anyone's.
func (h *CustomerHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid customer id"})
	}
	if !isStaff(callerRole(c)) && callerID(c) != id {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req customerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := req.validate(false); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Customers.Update(ctx, id, req.Name, req.Email, req.Phone, req.Address, req.Password, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Customer not found"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update customer failed"})
	}
	cust, err := h.Customers.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load customer failed"})
	}
	return c.JSON(http.StatusOK, toCustomerView(cust))
}

// Delete removes a customer record (self or staff).
func (h *CustomerHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid customer id"})
	}
	if !isStaff(callerRole(c)) && callerID(c) != id {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Customers.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete customer failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Customer deleted successfully"})
}

// CreateCar adds a car under /customers/:id/cars. A customer may only
// create cars for themselves; staff may create for any customer. The
// owning customer id comes from the path, not the body.
func (h *CustomerHandler) CreateCar(c echo.Context) error {
	customerID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid customer id"})
	}
	if !isStaff(callerRole(c)) && callerID(c) != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req carReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	id, err := h.Cars.Create(ctx, req.Make, req.Model, req.ModelYear, req.Color, customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create car failed"})
	}
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load car failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Car added", "car": toCarView(car)})
}

// ListCars returns the cars owned by a customer (self or staff).
func (h *CustomerHandler) ListCars(c echo.Context) error {
	customerID, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid customer id"})
	}
	if !isStaff(callerRole(c)) && callerID(c) != customerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if _, err := h.Customers.GetByID(ctx, customerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Customer not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	cars, err := h.Cars.ListByCustomer(ctx, customerID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	views := make([]carView, 0, len(cars))
	for _, car := range cars {
		views = append(views, toCarView(car))
	}
	return c.JSON(http.StatusOK, echo.Map{"cars": views})
}
