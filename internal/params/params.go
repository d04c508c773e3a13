package params

import (
	"net/url"
	"strconv"
	"strings"
)

// Pagination holds the parsed ?limit=...&page=... pair. Keys are case
// sensitive.
type Pagination struct {
	Limit  int `json:"limit"`
	Page   int `json:"page"`
	Offset int `json:"offset"`
}

const (
	defaultLimit = 15
	maxLimit     = 100
)

// ParsePagination parses limit and page safely: junk and out-of-range values
// fall back to defaults rather than erroring, so listing endpoints never 400
// on pagination alone.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{Limit: defaultLimit, Page: 1}

	if raw := strings.TrimSpace(q.Get("limit")); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			switch {
			case limit <= 0:
				p.Limit = defaultLimit
			case limit > maxLimit:
				p.Limit = maxLimit
			default:
				p.Limit = limit
			}
		}
	}

	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			p.Page = page
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}
