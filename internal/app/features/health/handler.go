package health

import (
	"context"
	"net/http"
	"sync"

	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Check is one dependency check. A failing Critical check makes /health
// answer 503; other failures only degrade the status.
type Check struct {
	Name     string
	Critical bool
	Ping     func(ctx context.Context) error
}

// Handler holds the dependency checks for the health endpoint.
type Handler struct {
	Checks []Check
	Log    *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(checks []Check, logger *zap.Logger) *Handler {
	return &Handler{Checks: checks, Log: logger}
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Serve handles GET /health.
//
// All checks run concurrently under the ping timeout. Responses:
//
//	200 {"status":"ok","checks":{"mongo":"ok"}}
//	200 {"status":"degraded","checks":{"mongo":"ok","redis":"dial tcp: ..."}}
//	503 {"status":"error","checks":{"mongo":"server selection timeout"}}
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(h.Checks))}
	errs := make([]error, len(h.Checks))

	var wg sync.WaitGroup
	for i, c := range h.Checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = c.Ping(ctx)
		}()
	}
	wg.Wait()

	code := http.StatusOK
	for i, c := range h.Checks {
		if errs[i] == nil {
			resp.Checks[c.Name] = "ok"
			continue
		}
		resp.Checks[c.Name] = errs[i].Error()
		h.Log.Error("health-check failed", zap.String("check", c.Name), zap.Error(errs[i]))
		if c.Critical {
			resp.Status = "error"
			code = http.StatusServiceUnavailable
		} else if resp.Status == "ok" {
			resp.Status = "degraded"
		}
	}
	jsonio.Write(w, code, resp)
}
