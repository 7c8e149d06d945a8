package handler

import (
	"database/sql"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/javiertc/mechanic-shop-api/internal/config"
	"github.com/javiertc/mechanic-shop-api/internal/model"
	"github.com/javiertc/mechanic-shop-api/internal/repository"
	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

// EmployeeHandler bundles dependencies for employee endpoints.
type EmployeeHandler struct {
	Cfg       config.Config
	Employees EmployeeStore
}

func NewEmployeeHandler(cfg config.Config, employees EmployeeStore) *EmployeeHandler {
	return &EmployeeHandler{Cfg: cfg, Employees: employees}
}

type employeeReq struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Address  string  `json:"address"`
	Password string  `json:"password"`
	Salary   float64 `json:"salary"`
	Role     string  `json:"role"`
}

type employeeView struct {
	ID      uint64  `json:"id"`
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Salary  float64 `json:"salary"`
	Role    string  `json:"role"`
}

func toEmployeeView(e model.Employee) employeeView {
	return employeeView{ID: e.ID, Name: e.Name, Email: e.Email, Phone: e.Phone,
		Address: e.Address, Salary: float64(e.SalaryCents) / 100.0, Role: e.Role}
}

func (r employeeReq) validate(requirePassword bool) map[string]string {
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
	if r.Salary < 0 {
		errs["salary"] = "salary must not be negative"
	}
	switch r.Role {
	case "mechanic", "admin":
	default:
		errs["role"] = "role must be mechanic or admin"
	}
	return errs
}

func salaryCents(salary float64) uint64 {
	return uint64(math.Round(salary * 100))
}

// Create registers a new employee.
func (h *EmployeeHandler) Create(c echo.Context) error {
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := req.validate(true); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Employees.Create(ctx, req.Name, req.Email, req.Phone, req.Address,
		req.Password, salaryCents(req.Salary), req.Role, h.Cfg.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create employee failed"})
	}
	emp, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load employee failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Employee added", "employee": toEmployeeView(emp)})
}

// Login verifies credentials and returns a bearer token carrying the
// employee's stored role (mechanic or admin). The failure message is
// identical for unknown email and wrong password.
func (h *EmployeeHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid payload, expecting email and password"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	emp, err := h.Employees.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !utils.VerifyPassword(emp.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid email or password"})
	}

	token, err := utils.IssueToken(h.Cfg.JWTSecret, emp.ID, emp.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "issue token failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":     "success",
		"message":    "Successfully Logged In",
		"auth_token": token.Token,
	})
}

// List returns one page of employees inside the standard envelope.
func (h *EmployeeHandler) List(c echo.Context) error {
	page, perPage := utils.ParsePagination(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	employees, total, err := h.Employees.List(ctx, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error fetching Employees"})
	}
	views := make([]employeeView, 0, len(employees))
	for _, e := range employees {
		views = append(views, toEmployeeView(e))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":            page,
		"per_page":        perPage,
		"total_employees": total,
		"employees":       views,
	})
}

// Get returns one employee by id.
func (h *EmployeeHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	emp, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, toEmployeeView(emp))
}

// Update rewrites an employee record. Admin-gated in the router.
func (h *EmployeeHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee id"})
	}
	var req employeeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := req.validate(false); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	err := h.Employees.Update(ctx, id, req.Name, req.Email, req.Phone, req.Address,
		req.Password, salaryCents(req.Salary), req.Role, h.Cfg.BcryptCost)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found"})
		case errors.Is(err, repository.ErrEmailExists):
			return c.JSON(http.StatusConflict, echo.Map{"message": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update employee failed"})
	}
	emp, err := h.Employees.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load employee failed"})
	}
	return c.JSON(http.StatusOK, toEmployeeView(emp))
}

// Delete removes an employee. Admin-gated in the router.
func (h *EmployeeHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid employee id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Employees.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Employee not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete employee failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Employee deleted successfully"})
}

// WorkingTickets reports mechanics with at least one assigned ticket,
// busiest first.
func (h *EmployeeHandler) WorkingTickets(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	report, err := h.Employees.WorkingTickets(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, report)
}
