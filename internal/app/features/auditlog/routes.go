// internal/app/features/auditlog/routes.go
package auditlog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// MountRoutes mounts the audit trail; every route requires an admin.
func (h *Handler) MountRoutes(r chi.Router, requireAdmin func(http.Handler) http.Handler) {
	r.With(requireAdmin).Get("/", h.ServeList)
}
