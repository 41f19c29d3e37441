package http

import (
	"net/http"
	"strconv"

	apperrors "stayhub/pkg/errors"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// ExtractPageLimit parses the page/limit query parameters with the
// storefront defaults (page 1, limit 10, limit capped at 100).
func ExtractPageLimit(r *http.Request) (int, int, error) {
	query := r.URL.Query()

	page := DefaultPage
	if s := query.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.InvalidInput("invalid page parameter: " + s)
		}
		page = v
	}

	limit := DefaultLimit
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return page, limit, nil
}

// Offset converts page/limit into the skip value used by the repositories.
func Offset(page, limit int) int64 {
	return int64(page-1) * int64(limit)
}

// QueryFloat parses an optional float query parameter, returning nil when absent.
func QueryFloat(r *http.Request, key string) (*float64, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return &v, nil
}

// QueryInt parses an optional integer query parameter, returning nil when absent.
func QueryInt(r *http.Request, key string) (*int, error) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, apperrors.InvalidInput("invalid " + key + " parameter: " + s)
	}
	return &v, nil
}
