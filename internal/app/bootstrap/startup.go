// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	calendarfeature "github.com/dalemusser/prepboard/internal/app/features/calendar"
	feedfeature "github.com/dalemusser/prepboard/internal/app/features/feed"
	metricsstore "github.com/dalemusser/prepboard/internal/app/store/metrics"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/prepboard/internal/app/system/auth"
	"github.com/dalemusser/prepboard/internal/app/system/feedcache"
	"github.com/dalemusser/prepboard/internal/app/system/feedsource"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/metrics"
	"github.com/dalemusser/prepboard/internal/app/system/ratelimit"
	"github.com/dalemusser/prepboard/internal/app/system/timefmt"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"github.com/dalemusser/prepboard/internal/app/system/workers"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Runtime holds the services built once at startup and shared by the
// handlers.
type Runtime struct {
	Tokens   *auth.TokenManager
	Limiter  *ratelimit.LoginLimiter
	Audit    *auditlog.Logger
	Fmt      timefmt.Formatter
	Calendar models.Calendar
	Feed     *feedfeature.Service
	Metrics  *metrics.Metrics

	feedWorker *workers.Refresher
	// feedCancel ends the context the feed's OAuth2 token source runs on.
	feedCancel context.CancelFunc
}

// Startup builds the shared services, ensures the bootstrap admin exists and
// starts the feed refresher.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.Runtime == nil {
		return errors.New("startup: DBDeps.Runtime is nil")
	}
	rt := deps.Runtime
	jsonio.SetLogger(logger)

	timeouts.Configure(timeouts.Config{
		Ping:     appCfg.TimeoutPing,
		Short:    appCfg.TimeoutShort,
		Medium:   appCfg.TimeoutMedium,
		Upstream: appCfg.TimeoutUpstream,
	})

	loc, err := time.LoadLocation(appCfg.DisplayTimezone)
	if err != nil {
		return fmt.Errorf("display_timezone: %w", err)
	}
	rt.Fmt = timefmt.New(loc)

	rt.Tokens, err = auth.NewTokenManager(appCfg.TokenSecret, appCfg.TokenTTL, appCfg.AdminEmails, logger)
	if err != nil {
		return err
	}
	rt.Limiter = ratelimit.NewLoginLimiter(appCfg.LoginIPLimit, appCfg.LoginEmailLimit)
	rt.Audit = auditlog.New(deps.AuditSink, logger, appCfg.AuditLog)

	if appCfg.AdminBootstrapEmail != "" {
		actx, cancel := context.WithTimeout(ctx, timeouts.Medium())
		err := ensureAdmin(actx, deps.Backend.Admins, appCfg.AdminBootstrapEmail, appCfg.AdminBootstrapPassword, logger)
		cancel()
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
	}

	rt.Calendar, err = calendarfeature.Load(appCfg.CalendarFile, logger)
	if err != nil {
		return err
	}

	if appCfg.MetricsEnabled {
		rt.Metrics = metrics.New()
		backend := deps.Backend
		count := func(ctx context.Context) (metricsstore.Counts, error) {
			return metricsstore.FetchCounts(ctx, backend, time.Now().UTC())
		}
		if err := rt.Metrics.RegisterRecordCounts(count, timeouts.Short(), logger); err != nil {
			return fmt.Errorf("register record metrics: %w", err)
		}
	}

	startFeed(appCfg, deps, rt, logger)
	return nil
}

// startFeed builds the feed service and, when a refresh interval is set,
// the background worker that keeps its cache warm.
func startFeed(appCfg AppConfig, deps DBDeps, rt *Runtime, logger *zap.Logger) {
	var cache feedcache.Cache = feedcache.NewMemory()
	if deps.Redis != nil {
		cache = feedcache.NewRedis(deps.Redis, appCfg.RedisKey)
	}

	var src feedsource.Fetcher
	if appCfg.FeedURL != "" {
		fctx, cancel := context.WithCancel(context.Background())
		rt.feedCancel = cancel
		src = feedsource.New(fctx, feedsource.Config{
			URL:          appCfg.FeedURL,
			Format:       appCfg.FeedFormat,
			ClientID:     appCfg.FeedClientID,
			ClientSecret: appCfg.FeedClientSecret,
			TokenURL:     appCfg.FeedTokenURL,
			Scopes:       appCfg.FeedScopes,
			Timeout:      timeouts.Upstream(),
		})
	}
	rt.Feed = feedfeature.NewService(src, cache, appCfg.FeedTTL, appCfg.FeedKeep, rt.Metrics, logger)

	if src == nil {
		logger.Info("external feed disabled (feed_url is empty)")
		return
	}
	if appCfg.FeedRefresh > 0 {
		rt.feedWorker = workers.NewRefresher("feed-refresh", rt.Feed.Refresh, logger, appCfg.FeedRefresh, timeouts.Upstream())
		rt.feedWorker.Start()
	}
}

// ensureAdmin creates the admin credential for email, or resets its password
// when the stored hash does not match. Repeated runs with the same input
// change nothing.
func ensureAdmin(ctx context.Context, repo records.AdminRepo, email, password string, logger *zap.Logger) error {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	existing, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if auth.CheckPassword(existing.PasswordHash, password) {
			logger.Info("bootstrap admin present", zap.String("email", email))
			return nil
		}
		if err := repo.SetPassword(ctx, existing.ID, hash); err != nil {
			return err
		}
		logger.Info("bootstrap admin password reset", zap.String("email", email))
		return nil
	case !errors.Is(err, records.ErrNotFound):
		return err
	}

	_, err = repo.Create(ctx, models.Admin{Email: email, PasswordHash: hash})
	if errors.Is(err, records.ErrDuplicate) {
		// Created concurrently by another instance.
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("bootstrap admin created", zap.String("email", email))
	return nil
}
