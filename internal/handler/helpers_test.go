package handler

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/javiertc/mechanic-shop-api/internal/config"
)

// testConfig uses a low bcrypt cost so hashing does not dominate the
// test run.
func testConfig() config.Config {
	return config.Config{JWTSecret: "test-secret", AccessTTLMin: 60, BcryptCost: 4}
}

// newCtx builds an echo context for a handler call. Path params are
// given as alternating name, value pairs.
func newCtx(t *testing.T, method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.Zero(t, len(params)%2, "params must be name,value pairs")
	names := make([]string, 0, len(params)/2)
	values := make([]string, 0, len(params)/2)
	for i := 0; i < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

// asCaller injects the identity normally stored by the auth middleware.
func asCaller(c echo.Context, id uint64, role string) {
	c.Set("user_id", id)
	c.Set("role", role)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	require.Equal(t, want, rec.Code, "body: %s", rec.Body.String())
}
