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

func TestCachePayloadRoundTrip(t *testing.T) {
	hdr := http.Header{}
	hdr.Set("Content-Type", "application/json")
	body := []byte(`{"tickets":[]}`)

	payload, err := encodePayload(http.StatusOK, hdr, body)
	require.NoError(t, err)

	status, gotHdr, gotBody, ok := decodePayload(payload)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
	assert.Equal(t, body, gotBody)
}

func TestCachePayloadRejectsTruncated(t *testing.T) {
	for _, bs := range [][]byte{nil, {1, 2, 3}, {0, 0, 0, 200, 0, 0, 1, 0}} {
		_, _, _, ok := decodePayload(bs)
		assert.False(t, ok)
	}
}

func TestCacheKeyVariesByRouteAndQuery(t *testing.T) {
	e := echo.New()
	ctx := func(path, query string) echo.Context {
		req := httptest.NewRequest(http.MethodGet, "/x?"+query, nil)
		c := e.NewContext(req, httptest.NewRecorder())
		c.SetPath(path)
		return c
	}

	a := cacheKey("cache", ctx("/tickets", "page=1"))
	b := cacheKey("cache", ctx("/tickets", "page=2"))
	d := cacheKey("cache", ctx("/customers", "page=1"))
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, d)
	assert.Equal(t, a, cacheKey("cache", ctx("/tickets", "page=1")))
}

func TestCacheDisabledIsPassThrough(t *testing.T) {
	mw := NewRedisCache(config.CacheConfig{Enabled: false}, nil)

	e := echo.New()
	e.GET("/ping", func(c echo.Context) error { return c.String(http.StatusOK, "pong") }, mw)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	assert.Empty(t, rec.Header().Get("X-Cache"))
}
