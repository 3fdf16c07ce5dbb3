// internal/app/features/errors/errors.go
package errors

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/dalemusser/prepboard/internal/app/features/shared/uploads"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/filestore"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// ErrorLogger logs request failures and writes the JSON error body.
type ErrorLogger struct {
	Log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{Log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	f := []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if id := middleware.GetReqID(r.Context()); id != "" {
		f = append(f, zap.String("request_id", id))
	}
	if err != nil {
		f = append(f, zap.Error(err))
	}
	return f
}

// NotFound writes 404 not_found.
func (e *ErrorLogger) NotFound(w http.ResponseWriter, r *http.Request, message string) {
	jsonio.Error(w, http.StatusNotFound, jsonio.CodeNotFound, message)
}

// BadRequest logs at debug and writes 400 bad_request.
func (e *ErrorLogger) BadRequest(w http.ResponseWriter, r *http.Request, message string, err error) {
	e.Log.Debug(message, e.fields(r, err)...)
	jsonio.Error(w, http.StatusBadRequest, jsonio.CodeBadRequest, message)
}

// Validation writes 400 validation naming the field.
func (e *ErrorLogger) Validation(w http.ResponseWriter, r *http.Request, ve *models.ValidationError) {
	jsonio.FieldError(w, ve.Field, ve.Message)
}

// ServerError logs at error and writes 500 internal with a generic message.
func (e *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error) {
	e.Log.Error(logMsg, e.fields(r, err)...)
	jsonio.Error(w, http.StatusInternalServerError, jsonio.CodeInternal, "an internal error occurred")
}

// Unavailable logs at warn and writes 503 unavailable.
func (e *ErrorLogger) Unavailable(w http.ResponseWriter, r *http.Request, message string, err error) {
	e.Log.Warn(message, e.fields(r, err)...)
	jsonio.Error(w, http.StatusServiceUnavailable, jsonio.CodeUnavailable, message)
}

// StoreError maps a repository error to a response: ErrNotFound is 404,
// validation failures 400, ErrDuplicate 409, timeouts 504, anything else 500.
func (e *ErrorLogger) StoreError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var ve *models.ValidationError
	switch {
	case stderrors.Is(err, records.ErrNotFound):
		e.NotFound(w, r, "record not found")
	case stderrors.As(err, &ve):
		e.Validation(w, r, ve)
	case stderrors.Is(err, records.ErrDuplicate):
		jsonio.Error(w, http.StatusConflict, "conflict", "record already exists")
	case stderrors.Is(err, context.DeadlineExceeded):
		e.Log.Warn(op+" timed out", e.fields(r, err)...)
		jsonio.Error(w, http.StatusGatewayTimeout, jsonio.CodeUnavailable, "the data store did not respond in time")
	default:
		e.ServerError(w, r, op+" failed", err)
	}
}

// NotFoundHandler is the router-level 404 for unknown paths.
func (e *ErrorLogger) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	e.NotFound(w, r, "no such endpoint")
}

// MethodNotAllowed is the router-level 405.
func (e *ErrorLogger) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	jsonio.Error(w, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" is not allowed here")
}

// UploadError maps attachment upload failures: oversize is 413, bad input
// is a 400 validation error on "file" or "kind", anything else 500.
func (e *ErrorLogger) UploadError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case stderrors.Is(err, filestore.ErrTooLarge):
		jsonio.Error(w, http.StatusRequestEntityTooLarge, jsonio.CodeTooLarge, err.Error())
	case stderrors.Is(err, uploads.ErrBadKind):
		jsonio.FieldError(w, "kind", err.Error())
	case stderrors.Is(err, uploads.ErrNoFile),
		stderrors.Is(err, filestore.ErrNotImage),
		stderrors.Is(err, filestore.ErrEmpty):
		jsonio.FieldError(w, "file", err.Error())
	default:
		e.ServerError(w, r, "store upload failed", err)
	}
}
