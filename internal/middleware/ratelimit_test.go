package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiertc/mechanic-shop-api/internal/config"
)

func TestLoginRateLimitDisabledPassesThrough(t *testing.T) {
	e := echo.New()
	mw := NewLoginRateLimit(config.RateLimitConfig{Enabled: false}, nil)
	e.POST("/customers/login", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	}, mw)

	req := httptest.NewRequest(http.MethodPost, "/customers/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-RateLimit-Limit"))
}

func TestLoginRateLimitNilClientPassesThrough(t *testing.T) {
	e := echo.New()
	mw := NewLoginRateLimit(config.RateLimitConfig{Enabled: true, Capacity: 1}, nil)
	e.POST("/employees/login", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, mw)

	req := httptest.NewRequest(http.MethodPost, "/employees/login", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateKeySeparatesClientsAndRoutes(t *testing.T) {
	e := echo.New()
	makeCtx := func(ip, target string) echo.Context {
		req := httptest.NewRequest(http.MethodPost, target, nil)
		req.Header.Set(echo.HeaderXRealIP, ip)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(target)
		return c
	}

	a := rateKey("ratelimit", makeCtx("10.0.0.1", "/customers/login"))
	b := rateKey("ratelimit", makeCtx("10.0.0.2", "/customers/login"))
	d := rateKey("ratelimit", makeCtx("10.0.0.1", "/employees/login"))

	assert.Equal(t, "ratelimit:ip:10.0.0.1:route:POST /customers/login", a)
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, d)
}

func TestScriptInt(t *testing.T) {
	assert.Equal(t, int64(3), scriptInt(int64(3)))
	assert.Equal(t, int64(3), scriptInt(3))
	assert.Equal(t, int64(3), scriptInt("3"))
	assert.Equal(t, int64(0), scriptInt("nope"))
	assert.Equal(t, int64(0), scriptInt(nil))
}
