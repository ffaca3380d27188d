package transport

import (
	"net/http"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ParsePageLimit reads page/limit query params, clamping to sane bounds.
func ParsePageLimit(r *http.Request) (page, limit int) {
	page = DefaultPage
	limit = DefaultLimit

	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= MaxLimit {
			limit = l
		}
	}

	return page, limit
}

// Offset converts page/limit to a row offset.
func Offset(page, limit int) int {
	return (page - 1) * limit
}
