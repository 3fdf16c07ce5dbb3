// internal/app/features/assignments/list.go
package assignments

import (
	"net/http"
	"strings"

	"github.com/dalemusser/prepboard/internal/app/features/shared/views"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/paging"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// List returns one page of assignments.
// GET /api/assignments?page=&page_size=&q=&sort=newest|due&status=open|closed
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := paging.Parse(r, paging.DefaultPageSize)
	opts := p.ListOptions()
	opts.Query = strings.TrimSpace(q.Get("q"))

	switch s := strings.ToLower(strings.TrimSpace(q.Get("sort"))); s {
	case "", records.SortNewest:
		opts.Sort = records.SortNewest
	case records.SortDue:
		opts.Sort = records.SortDue
	default:
		jsonio.FieldError(w, "sort", `sort must be "newest" or "due"`)
		return
	}
	switch s := strings.ToLower(strings.TrimSpace(q.Get("status"))); s {
	case "", "all":
		opts.Status = records.StatusAll
	case records.StatusOpen, records.StatusClosed:
		opts.Status = s
	default:
		jsonio.FieldError(w, "status", `status must be "open" or "closed"`)
		return
	}

	now := h.Now().UTC()
	opts.Now = now

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list assignments")
	defer cancel()

	rows, total, err := h.Store.List(ctx, opts)
	if err != nil {
		h.ErrLog.StoreError(w, r, "list assignments", err)
		return
	}

	jsonio.Write(w, http.StatusOK, views.List[views.Assignment]{
		Items: views.Assignments(h.Fmt, rows, now),
		Meta:  paging.Compute(p, total),
	})
}

// Show returns a single assignment.
// GET /api/assignments/{id}
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get assignment")
	defer cancel()

	a, err := h.Store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.StoreError(w, r, "get assignment", err)
		return
	}
	jsonio.Write(w, http.StatusOK, views.NewAssignment(h.Fmt, a, h.Now()))
}
