// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/prepboard/internal/app/store/records"
)

// DefaultPageSize matches the ten-row lists the board shows.
const DefaultPageSize = 10

// MaxPageSize bounds page_size so a client cannot pull a whole collection.
const MaxPageSize = 50

// Params is a parsed page request. Page is 1-based.
type Params struct {
	Page     int
	PageSize int
}

// Parse reads page and page_size from the query string. Missing or invalid
// values fall back to page 1 and defSize; page_size is clamped to
// [1, MaxPageSize].
func Parse(r *http.Request, defSize int) Params {
	if defSize <= 0 {
		defSize = DefaultPageSize
	}
	p := Params{
		Page:     atoiOr(r.URL.Query().Get("page"), 1),
		PageSize: atoiOr(r.URL.Query().Get("page_size"), defSize),
	}
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 1
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func atoiOr(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// Offset is the number of rows to skip for this page.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// ListOptions converts p into repository options.
func (p Params) ListOptions() records.ListOptions {
	return records.ListOptions{Offset: p.Offset(), Limit: p.PageSize}
}

// Meta is the pagination block of a list response.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasPrev    bool  `json:"has_prev"`
	HasNext    bool  `json:"has_next"`
}

// Compute builds Meta for a page of p given the total matching rows.
func Compute(p Params, total int64) Meta {
	pages := 0
	if total > 0 {
		pages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		Total:      total,
		TotalPages: pages,
		HasPrev:    p.Page > 1,
		HasNext:    p.Page < pages,
	}
}
