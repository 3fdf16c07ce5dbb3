// internal/app/features/login/me.go
package login

import (
	"net/http"
	"time"

	"github.com/dalemusser/prepboard/internal/app/system/auth"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
)

type meResponse struct {
	adminView
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ServeMe returns the identity behind the request's token.
// GET /api/auth/me
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.CurrentAdmin(r)
	if !ok {
		jsonio.Error(w, http.StatusUnauthorized, jsonio.CodeUnauthorized, "not signed in")
		return
	}
	jsonio.Write(w, http.StatusOK, meResponse{
		adminView: adminView{Email: id.Email, Name: id.Name, Method: id.Method},
		IssuedAt:  id.IssuedAt,
		ExpiresAt: id.IssuedAt.Add(h.Tokens.TTL()),
	})
}
