// Package jsonio writes JSON responses and decodes JSON request bodies on
// top of waffle's httputil, adding the "field" member validation errors
// carry and a no-store cache header.
package jsonio

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/dalemusser/waffle/httputil"
	"go.uber.org/zap"
)

// DefaultMaxBody bounds request bodies read by Decode.
const DefaultMaxBody = 1 << 20

// Error codes carried in ErrorBody.Error.
const (
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation"
	CodeUnauthorized = "unauthorized"
	CodeForbidden    = "forbidden"
	CodeNotFound     = "not_found"
	CodeTooLarge     = "too_large"
	CodeRateLimited  = "rate_limited"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal"
)

// ErrorBody is the shape of every error response: httputil.ErrorResponse
// plus the offending field for validation errors.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Field   string `json:"field,omitempty"`
}

// ErrEmptyBody is returned by Decode when the request has no body.
var ErrEmptyBody = errors.New("request body is empty")

// Write encodes v with the given status.
func Write(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Cache-Control", "no-store")
	if v == nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		return
	}
	httputil.WriteJSON(w, status, v)
}

// Error writes an ErrorBody without a field.
func Error(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Cache-Control", "no-store")
	httputil.JSONError(w, status, code, message)
}

// FieldError writes a 400 validation error naming the offending field.
func FieldError(w http.ResponseWriter, field, message string) {
	Write(w, http.StatusBadRequest, ErrorBody{Error: CodeValidation, Message: message, Field: field})
}

// Decode reads one JSON value from r.Body into v, limited to
// DefaultMaxBody. Unknown members are ignored. Error text is safe to show
// to clients.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0 {
		return ErrEmptyBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, DefaultMaxBody)
	if err := httputil.BindJSONAllowUnknown(r, v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// zapJSONLogger reports encode failures that happen after headers are sent.
type zapJSONLogger struct {
	log *zap.Logger
}

func (z zapJSONLogger) Error(msg string, args ...any) {
	z.log.Error(msg, zap.Any("args", args))
}

// SetLogger routes httputil's late encoding errors to logger.
func SetLogger(logger *zap.Logger) {
	if logger == nil {
		return
	}
	httputil.SetJSONLogger(zapJSONLogger{log: logger})
}
