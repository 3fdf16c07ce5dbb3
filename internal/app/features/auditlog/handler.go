// internal/app/features/auditlog/handler.go
package auditlog

import (
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/prepboard/internal/app/features/errors"
	"github.com/dalemusser/prepboard/internal/app/store/audit"
	auditlogger "github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Handler serves the stored audit trail to admins.
type Handler struct {
	Sink   auditlogger.Sink // nil when events are not stored
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(sink auditlogger.Sink, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Sink: sink, ErrLog: errLog, Log: logger}
}

type listResponse struct {
	Items []audit.Event `json:"items"`
}

// ServeList returns the newest events first.
// GET /api/audit?limit=&category=auth|admin
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	if h.Sink == nil {
		h.ErrLog.Unavailable(w, r, "audit events are not stored (audit_log is log or off)", nil)
		return
	}

	q := r.URL.Query()
	category := strings.ToLower(strings.TrimSpace(q.Get("category")))
	switch category {
	case "", audit.CategoryAuth, audit.CategoryAdmin:
	default:
		jsonio.FieldError(w, "category", `category must be "auth" or "admin"`)
		return
	}

	limit := defaultLimit
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			jsonio.FieldError(w, "limit", "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list audit events")
	defer cancel()

	events, err := h.Sink.Recent(ctx, category, limit)
	if err != nil {
		h.ErrLog.ServerError(w, r, "list audit events", err)
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	jsonio.Write(w, http.StatusOK, listResponse{Items: events})
}
