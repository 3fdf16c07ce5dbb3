// Package timeouts centralizes the deadlines handlers put on database and
// upstream calls.
//
//   - Ping: health checks
//   - Short: single-document reads and writes, login lookups
//   - Medium: paged list queries, deletes that also clean up storage
//   - Upstream: requests to the external announcements feed
//
// Values start at the defaults below and may be overridden once at startup
// with Configure.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing     = 2 * time.Second
	DefaultShort    = 5 * time.Second
	DefaultMedium   = 10 * time.Second
	DefaultUpstream = 8 * time.Second
)

var (
	mu       sync.RWMutex
	ping     = DefaultPing
	short    = DefaultShort
	medium   = DefaultMedium
	upstream = DefaultUpstream
)

func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

func Upstream() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return upstream
}

// Config holds overrides. Zero values keep the current value.
type Config struct {
	Ping     time.Duration
	Short    time.Duration
	Medium   time.Duration
	Upstream time.Duration
}

// Configure applies non-zero values from cfg.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Medium > 0 {
		medium = cfg.Medium
	}
	if cfg.Upstream > 0 {
		upstream = cfg.Upstream
	}
}

// Reset restores the defaults. Tests use it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping, short, medium, upstream = DefaultPing, DefaultShort, DefaultMedium, DefaultUpstream
}

// Current returns the active values, for startup logging.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Short: short, Medium: medium, Upstream: upstream}
}

// WithTimeout derives a context with the given timeout. The returned cancel
// logs a warning when the deadline was what ended the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list assignments")
//	defer cancel()
func WithTimeout(parent context.Context, d time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, d)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", d),
			)
		}
		cancel()
	}
}
