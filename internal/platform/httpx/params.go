package httpx

import (
	"net/http"
	"strconv"
)

// QueryInt parses an integer query parameter, falling back to def on absence
// or parse failure.
func QueryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return parsed
}

// QueryBool parses an optional boolean query parameter. Returns nil when absent.
func QueryBool(r *http.Request, name string) *bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	val := raw == "true" || raw == "1"
	return &val
}

// QueryString returns a query parameter value, empty when absent.
func QueryString(r *http.Request, name string) string {
	return r.URL.Query().Get(name)
}

// PageParams extracts limit/offset with clamped defaults.
func PageParams(r *http.Request, defaultLimit, maxLimit int) (limit, offset int) {
	limit = QueryInt(r, "limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset = QueryInt(r, "offset", 0)
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
