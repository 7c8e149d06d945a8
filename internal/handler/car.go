package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/javiertc/mechanic-shop-api/internal/model"
	"github.com/javiertc/mechanic-shop-api/internal/repository"
	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

// CarHandler bundles dependencies for the top-level car endpoints.
type CarHandler struct {
	Cars CarStore
}

func NewCarHandler(cars CarStore) *CarHandler { return &CarHandler{Cars: cars} }

type carReq struct {
	Make       string `json:"make"`
	Model      string `json:"model"`
	ModelYear  uint32 `json:"model_year"`
	Color      string `json:"color"`
	CustomerID uint64 `json:"customer_id"`
}

type carView struct {
	ID         uint64 `json:"id"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	ModelYear  uint32 `json:"model_year"`
	Color      string `json:"color"`
	CustomerID uint64 `json:"customer_id"`
}

func toCarView(c model.Car) carView {
	return carView{ID: c.ID, Make: c.Make, Model: c.Model, ModelYear: c.ModelYear,
		Color: c.Color, CustomerID: c.CustomerID}
}

func (r carReq) validate() map[string]string {
	errs := map[string]string{}
	if strings.TrimSpace(r.Make) == "" {
		errs["make"] = "make is required"
	}
	if strings.TrimSpace(r.Model) == "" {
		errs["model"] = "model is required"
	}
	if r.ModelYear == 0 {
		errs["model_year"] = "model_year is required"
	}
	return errs
}

// Create adds a car owned by the customer named in the body. A
// customer may only register cars for themselves; staff may register
// for any customer.
func (h *CarHandler) Create(c echo.Context) error {
	var req carReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	errs := req.validate()
	if req.CustomerID == 0 {
		errs["customer_id"] = "customer_id is required"
	}
	if len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}
	if !isStaff(callerRole(c)) && callerID(c) != req.CustomerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Cars.Create(ctx, req.Make, req.Model, req.ModelYear, req.Color, req.CustomerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"customer_id": "customer does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "create car failed"})
	}
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load car failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Car added", "car": toCarView(car)})
}

// List returns one page of cars.
func (h *CarHandler) List(c echo.Context) error {
	page, perPage := utils.ParsePagination(c)

	ctx, cancel := reqCtx(c)
	defer cancel()

	cars, total, err := h.Cars.List(ctx, page, perPage)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	views := make([]carView, 0, len(cars))
	for _, car := range cars {
		views = append(views, toCarView(car))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"page":       page,
		"per_page":   perPage,
		"total_cars": total,
		"cars":       views,
	})
}

// Get returns one car by id.
func (h *CarHandler) Get(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid car id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	return c.JSON(http.StatusOK, toCarView(car))
}

// Update rewrites a car. The caller must be staff or the car's
// owner; ownership is checked against the stored row, not the body.
func (h *CarHandler) Update(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid car id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !isStaff(callerRole(c)) && callerID(c) != existing.CustomerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}

	var req carReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	if errs := req.validate(); len(errs) > 0 {
		return c.JSON(http.StatusBadRequest, errs)
	}
	if req.CustomerID == 0 {
		req.CustomerID = existing.CustomerID
	}
	if err := h.Cars.Update(ctx, id, req.Make, req.Model, req.ModelYear, req.Color, req.CustomerID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Car not found"})
		case errors.Is(err, repository.ErrCustomerNotFound):
			return c.JSON(http.StatusBadRequest, echo.Map{"customer_id": "customer does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "update car failed"})
	}
	car, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "load car failed"})
	}
	return c.JSON(http.StatusOK, toCarView(car))
}

// Delete removes a car (staff or owner).
func (h *CarHandler) Delete(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid car id"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Cars.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "query failed"})
	}
	if !isStaff(callerRole(c)) && callerID(c) != existing.CustomerID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	if err := h.Cars.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Car not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "delete car failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Car deleted successfully"})
}
