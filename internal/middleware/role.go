package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireRole returns a middleware that enforces that the
// authenticated caller holds one of the given roles, matching the
// values embedded in the token's "role" claim. Requests with a
// missing or disallowed role are rejected with 403 before the handler
// runs. JWTAuth must run earlier in the chain.
//
// Route-to-role policy lives in one place (the router) so individual
// handlers never compare role strings themselves.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, ok := c.Get("role").(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}
