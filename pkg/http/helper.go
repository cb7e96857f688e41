package http

import (
	"net/http"
	"strconv"
	"time"

	"fixwell/pkg/config"
	apperrors "fixwell/pkg/errors"
)

const DateLayout = "2006-01-02"

func ExtractLimitOffset(r *http.Request) (int, int64, error) {
	query := r.URL.Query()

	limit := 0
	if s := query.Get("limit"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid limit parameter: " + s)
		}
		limit = v
	}

	var offset int64 = 0
	if s := query.Get("offset"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, apperrors.InvalidInput("invalid offset parameter: " + s)
		}
		offset = int64(v)
	}

	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	return limit, offset, nil
}

// ExtractDate parses a required YYYY-MM-DD query parameter in loc.
func ExtractDate(r *http.Request, param string, loc *time.Location) (time.Time, error) {
	s := r.URL.Query().Get(param)
	if s == "" {
		return time.Time{}, apperrors.InvalidInput(param + " parameter is required (YYYY-MM-DD)")
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, apperrors.InvalidInput("invalid " + param + " parameter: " + s)
	}
	return d, nil
}

// ExtractOptionalInt parses an optional integer query parameter,
// returning fallback when absent.
func ExtractOptionalInt(r *http.Request, param string, fallback int) (int, error) {
	s := r.URL.Query().Get(param)
	if s == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperrors.InvalidInput("invalid " + param + " parameter: " + s)
	}
	return v, nil
}
