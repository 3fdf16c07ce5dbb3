package errors_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	uierrors "github.com/dalemusser/prepboard/internal/app/features/errors"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"go.uber.org/zap"
)

func TestStoreError(t *testing.T) {
	errLog := uierrors.NewErrorLogger(zap.NewNop())

	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"not found", fmt.Errorf("get: %w", records.ErrNotFound), http.StatusNotFound, jsonio.CodeNotFound, ""},
		{"validation", &models.ValidationError{Field: "title", Message: "title is required"}, http.StatusBadRequest, jsonio.CodeValidation, "title"},
		{"duplicate", records.ErrDuplicate, http.StatusConflict, "conflict", ""},
		{"timeout", context.DeadlineExceeded, http.StatusGatewayTimeout, jsonio.CodeUnavailable, ""},
		{"other", fmt.Errorf("boom"), http.StatusInternalServerError, jsonio.CodeInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			errLog.StoreError(rec, httptest.NewRequest("GET", "/api/x", nil), "load", tt.err)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			var body jsonio.ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if body.Error != tt.code || body.Field != tt.field {
				t.Errorf("body = %+v", body)
			}
		})
	}
}

func TestNotFoundHandler(t *testing.T) {
	errLog := uierrors.NewErrorLogger(zap.NewNop())
	rec := httptest.NewRecorder()
	errLog.NotFoundHandler(rec, httptest.NewRequest("GET", "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d", rec.Code)
	}
}
