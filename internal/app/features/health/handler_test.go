package health_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/prepboard/internal/app/features/health"
	"github.com/dalemusser/prepboard/internal/testutil"
	"go.uber.org/zap"
)

func ok(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func serve(t *testing.T, checks ...health.Check) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	health.Routes(health.NewHandler(checks, zap.NewNop())).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	var body map[string]any
	testutil.DecodeJSON(t, rec, &body)
	return rec.Code, body
}

func TestHealth(t *testing.T) {
	cases := []struct {
		name   string
		checks []health.Check
		code   int
		status string
	}{
		{"all ok", []health.Check{{Name: "mongo", Critical: true, Ping: ok}, {Name: "redis", Ping: ok}}, http.StatusOK, "ok"},
		{"cache down", []health.Check{{Name: "mongo", Critical: true, Ping: ok}, {Name: "redis", Ping: down}}, http.StatusOK, "degraded"},
		{"db down", []health.Check{{Name: "mongo", Critical: true, Ping: down}, {Name: "redis", Ping: down}}, http.StatusServiceUnavailable, "error"},
		{"no checks", nil, http.StatusOK, "ok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, body := serve(t, tc.checks...)
			if code != tc.code || body["status"] != tc.status {
				t.Errorf("got %d %v, want %d %s", code, body, tc.code, tc.status)
			}
		})
	}
}

func TestHealth_ReportsEachCheck(t *testing.T) {
	_, body := serve(t, health.Check{Name: "mongo", Critical: true, Ping: ok}, health.Check{Name: "gcs", Ping: down})
	checks, _ := body["checks"].(map[string]any)
	if checks["mongo"] != "ok" || checks["gcs"] != "connection refused" {
		t.Errorf("checks = %v", checks)
	}
}

func TestHealth_Head(t *testing.T) {
	h := health.Routes(health.NewHandler([]health.Check{{Name: "mongo", Critical: true, Ping: down}}, zap.NewNop()))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("HEAD status = %d, want 503", rec.Code)
	}
}
