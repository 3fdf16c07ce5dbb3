// internal/app/features/calendar/handler.go
package calendar

import (
	"net/http"

	uierrors "github.com/dalemusser/prepboard/internal/app/features/errors"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type Handler struct {
	Cal    models.Calendar
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(cal models.Calendar, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Cal: cal, Log: logger, ErrLog: errLog}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Serve)
	r.Get("/export.xlsx", h.ServeXLSX)
}

// Serve returns the calendar as JSON.
// GET /api/calendar
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	jsonio.Write(w, http.StatusOK, h.Cal)
}
