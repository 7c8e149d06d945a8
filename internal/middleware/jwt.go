package middleware // middleware contains reusable HTTP middleware functions

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the caller's identity into the request context.
// Handlers on protected routes read it via `c.Get("user_id")` (uint64)
// and `c.Get("role")` (string).
//
// Failure responses are deliberately distinct so clients can tell the
// cases apart: a missing or malformed Authorization header, an expired
// token, and an otherwise invalid token all produce 401 with different
// messages. The wrapped handler is never invoked on failure.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is missing"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token is missing"})
			}

			userID, role, err := utils.VerifyToken(secret, raw)
			if err != nil {
				if errors.Is(err, utils.ErrTokenExpired) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Token has expired!"})
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid token!"})
			}

			c.Set("user_id", userID)
			c.Set("role", role)
			return next(c)
		}
	}
}

// Identity returns the caller's id and role previously stored by
// JWTAuth. ok is false when the middleware did not run on this route.
func Identity(c echo.Context) (userID uint64, role string, ok bool) {
	userID, uok := c.Get("user_id").(uint64)
	role, rok := c.Get("role").(string)
	return userID, role, uok && rok
}
