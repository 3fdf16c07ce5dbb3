// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/prepboard/internal/app/store/audit"
	"github.com/dalemusser/prepboard/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// Modes for the audit_log setting.
const (
	ModeAll = "all" // store + zap
	ModeDB  = "db"  // store only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Sink persists audit events.
type Sink interface {
	Log(ctx context.Context, event audit.Event) error
	Recent(ctx context.Context, category string, limit int) ([]audit.Event, error)
}

// Logger records login attempts and admin writes.
// A nil *Logger is a valid no-op.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	mode   string
}

// New creates a Logger. sink may be nil, in which case "db" and "all" fall
// back to zap only.
func New(sink Sink, zapLog *zap.Logger, mode string) *Logger {
	if mode == "" {
		mode = ModeLog
	}
	if sink == nil && (mode == ModeAll || mode == ModeDB) {
		mode = ModeLog
	}
	return &Logger{sink: sink, zapLog: zapLog, mode: mode}
}

// Sink returns the backing store, or nil.
func (l *Logger) Sink() Sink {
	if l == nil || l.mode == ModeOff || l.mode == ModeLog {
		return nil
	}
	return l.sink
}

func (l *Logger) logToZap(event audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("category", event.Category),
		zap.String("event_type", event.EventType),
		zap.Bool("success", event.Success),
		zap.String("ip", event.IP),
	}
	if event.Actor != "" {
		fields = append(fields, zap.String("actor", event.Actor))
	}
	if event.TargetID != "" {
		fields = append(fields, zap.String("target_id", event.TargetID))
	}
	if event.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", event.FailureReason))
	}
	for k, v := range event.Details {
		fields = append(fields, zap.String("detail_"+k, v))
	}

	if event.Success {
		l.zapLog.Info("audit event", fields...)
	} else {
		l.zapLog.Warn("audit event", fields...)
	}
}

// Log records event according to the configured mode.
func (l *Logger) Log(ctx context.Context, event audit.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}
	if l.mode == ModeAll || l.mode == ModeLog {
		l.logToZap(event)
	}
	if (l.mode == ModeAll || l.mode == ModeDB) && l.sink != nil {
		if err := l.sink.Log(ctx, event); err != nil {
			l.zapLog.Error("failed to store audit event",
				zap.Error(err),
				zap.String("event_type", event.EventType))
		}
	}
}

func fromRequest(r *http.Request, category, eventType, actor string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		Actor:     actor,
		IP:        ratelimit.ClientIP(r),
		UserAgent: r.UserAgent(),
		Success:   success,
	}
}

// LoginSuccess logs a successful login by method ("password" or "firebase").
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, email, method string) {
	e := fromRequest(r, audit.CategoryAuth, audit.EventLoginSuccess, email, true)
	e.Details = map[string]string{"auth_method": method}
	l.Log(ctx, e)
}

// LoginFailed logs a refused login. eventType is one of the audit.EventLoginFailed* values.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, email, method, eventType, reason string) {
	e := fromRequest(r, audit.CategoryAuth, eventType, email, false)
	e.FailureReason = reason
	e.Details = map[string]string{"auth_method": method}
	l.Log(ctx, e)
}

// AdminAction logs a successful admin write on the record targetID.
func (l *Logger) AdminAction(ctx context.Context, r *http.Request, actor, eventType, targetID string, details map[string]string) {
	e := fromRequest(r, audit.CategoryAdmin, eventType, actor, true)
	e.TargetID = targetID
	e.Details = details
	l.Log(ctx, e)
}
