// internal/app/features/announcements/list.go
package announcements

import (
	"net/http"
	"strings"

	"github.com/dalemusser/prepboard/internal/app/features/shared/views"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/paging"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"github.com/go-chi/chi/v5"
)

// List returns one page of announcements, pinned first then newest.
// GET /api/announcements?page=&page_size=&q=
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list announcements")
	defer cancel()

	p := paging.Parse(r, paging.DefaultPageSize)
	opts := p.ListOptions()
	opts.Query = strings.TrimSpace(r.URL.Query().Get("q"))

	rows, total, err := h.Store.List(ctx, opts)
	if err != nil {
		h.ErrLog.StoreError(w, r, "list announcements", err)
		return
	}

	jsonio.Write(w, http.StatusOK, views.List[views.Announcement]{
		Items: views.Announcements(h.Fmt, rows),
		Meta:  paging.Compute(p, total),
	})
}

// Show returns a single announcement.
// GET /api/announcements/{id}
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "get announcement")
	defer cancel()

	a, err := h.Store.GetByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.StoreError(w, r, "get announcement", err)
		return
	}
	jsonio.Write(w, http.StatusOK, views.NewAnnouncement(h.Fmt, a))
}
