// internal/app/features/announcements/routes.go
package announcements

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes mounts the announcement API. Reads are public; writes go
// through requireAdmin.
func (h *Handler) MountRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Show)

	r.Group(func(r chi.Router) {
		r.Use(requireAdmin)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Patch("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/attachments", h.AddAttachment)
		r.Delete("/{id}/attachments/{attachmentID}", h.RemoveAttachment)
	})
}
