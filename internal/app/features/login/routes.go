// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the sign-in endpoints under the caller's prefix
// (/api/auth).
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.HandlePassword)
	r.Post("/firebase", h.HandleFirebase)
	r.With(h.Tokens.RequireAdmin).Get("/me", h.ServeMe)
}
