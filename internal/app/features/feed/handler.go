// internal/app/features/feed/handler.go
package feed

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Handler struct {
	Svc *Service
	Log *zap.Logger
}

func NewHandler(svc *Service, logger *zap.Logger) *Handler {
	return &Handler{Svc: svc, Log: logger}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Serve)
}

// Serve returns the external feed. It never fails with a 5xx: upstream
// trouble shows up as stale=true.
// GET /api/feed?limit=
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonio.FieldError(w, "limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	res := h.Svc.Current(r.Context())
	if len(res.Items) > limit {
		res.Items = res.Items[:limit]
	}
	if res.Stale {
		w.Header().Set("Warning", `110 - "Response is Stale"`)
	}
	jsonio.Write(w, http.StatusOK, res)
}
