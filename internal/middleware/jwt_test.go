package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javiertc/mechanic-shop-api/internal/utils"
)

const testSecret = "test-secret"

func authRequest(t *testing.T, header string, mw ...echo.MiddlewareFunc) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/protected", ok, mw...)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func TestJWTAuthMissingToken(t *testing.T) {
	mw := JWTAuth(testSecret)

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer"} {
		rec := authRequest(t, header, mw)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Equal(t, "Token is missing", message(t, rec), "header %q", header)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.IssueToken(testSecret, 1, "mechanic", -5)
	require.NoError(t, err)

	rec := authRequest(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has expired!", message(t, rec))
}

func TestJWTAuthInvalidToken(t *testing.T) {
	tok, err := utils.IssueToken("another-secret", 1, "mechanic", 60)
	require.NoError(t, err)

	for _, raw := range []string{tok.Token, "garbage"} {
		rec := authRequest(t, "Bearer "+raw, JWTAuth(testSecret))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "Invalid token!", message(t, rec))
	}
}

func TestJWTAuthSetsIdentity(t *testing.T) {
	tok, err := utils.IssueToken(testSecret, 99, "admin", 60)
	require.NoError(t, err)

	e := echo.New()
	e.GET("/who", func(c echo.Context) error {
		uid, role, ok := Identity(c)
		require.True(t, ok)
		assert.Equal(t, uint64(99), uid)
		assert.Equal(t, "admin", role)
		return c.NoContent(http.StatusOK)
	}, JWTAuth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireRole(t *testing.T) {
	mw := []echo.MiddlewareFunc{JWTAuth(testSecret), RequireRole("admin")}

	mech, err := utils.IssueToken(testSecret, 2, "mechanic", 60)
	require.NoError(t, err)
	rec := authRequest(t, "Bearer "+mech.Token, mw...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", message(t, rec))

	admin, err := utils.IssueToken(testSecret, 3, "admin", 60)
	require.NoError(t, err)
	rec = authRequest(t, "Bearer "+admin.Token, mw...)
	assert.Equal(t, http.StatusOK, rec.Code)
}
