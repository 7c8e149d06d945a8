package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	defaultPerPage = 10
	maxPerPage     = 100
)

// ParsePagination reads the `page` and `per_page` query parameters
// (with `limit` accepted as an alias for per_page). Missing or garbage
// values fall back to page 1 / 10 per page rather than erroring, and
// per_page is capped at 100 so a single request cannot drag the whole
// table into memory.
func ParsePagination(c echo.Context) (page, perPage int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	raw := c.QueryParam("per_page")
	if raw == "" {
		raw = c.QueryParam("limit")
	}
	perPage, _ = strconv.Atoi(raw)
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}

// Offset converts 1-based page numbers into a SQL offset.
func Offset(page, perPage int) int {
	return (page - 1) * perPage
}
