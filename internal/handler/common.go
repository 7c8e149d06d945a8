package handler // handler defines http handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every store call made from a handler.
const dbTimeout = 5 * time.Second

// reqCtx derives a bounded context from the request.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// paramID parses a positive integer path parameter.
func paramID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

// callerID extracts the authenticated user's id stored by the JWT
// middleware. It returns 0 when the route is unprotected.
func callerID(c echo.Context) uint64 {
	id, _ := c.Get("user_id").(uint64)
	return id
}

// callerRole extracts the authenticated user's role, or "".
func callerRole(c echo.Context) string {
	role, _ := c.Get("role").(string)
	return role
}

// isStaff reports whether the caller holds a shop-staff role.
// Staff may act on resources owned by any customer.
func isStaff(role string) bool {
	return role == "mechanic" || role == "admin"
}
