// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"strings"

	announcementsfeature "github.com/dalemusser/prepboard/internal/app/features/announcements"
	assignmentsfeature "github.com/dalemusser/prepboard/internal/app/features/assignments"
	auditlogfeature "github.com/dalemusser/prepboard/internal/app/features/auditlog"
	calendarfeature "github.com/dalemusser/prepboard/internal/app/features/calendar"
	errorsfeature "github.com/dalemusser/prepboard/internal/app/features/errors"
	feedfeature "github.com/dalemusser/prepboard/internal/app/features/feed"
	healthfeature "github.com/dalemusser/prepboard/internal/app/features/health"
	loginfeature "github.com/dalemusser/prepboard/internal/app/features/login"
	firestorestore "github.com/dalemusser/prepboard/internal/app/store/firestore"
	"github.com/dalemusser/prepboard/internal/app/system/filestore"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router.
//
//	/health                 dependency checks
//	/metrics                Prometheus (metrics_enabled)
//	/files/*                local attachments (storage_type=local)
//	/api/auth/...           sign-in
//	/api/announcements/...  announcements CRUD
//	/api/assignments/...    assignments CRUD
//	/api/calendar/...       academic calendar
//	/api/feed               external feed proxy
//	/api/audit              audit trail (admin)
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	rt := deps.Runtime
	if rt == nil || rt.Tokens == nil {
		return nil, errors.New("build handler: Startup has not run")
	}

	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   appCfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Location", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if rt.Metrics != nil {
		r.Use(rt.Metrics.Middleware)
		r.Handle("/metrics", rt.Metrics.Handler())
	}
	r.NotFound(errLog.NotFoundHandler)
	r.MethodNotAllowed(errLog.MethodNotAllowed)

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(healthChecks(deps), logger)))

	if deps.Local != nil {
		base := strings.TrimRight(filestore.MountPath(appCfg.StorageLocalURL), "/")
		r.Handle(base+"/*", filestore.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	var files *filestore.Saver
	if deps.Files != nil {
		files = &filestore.Saver{Store: deps.Files, MaxBytes: appCfg.UploadMaxBytes()}
	}

	var verifier loginfeature.IDTokenVerifier
	if deps.FirebaseAuth != nil {
		verifier = deps.FirebaseAuth
	}

	requireAdmin := rt.Tokens.RequireAdmin

	loginHandler := loginfeature.NewHandler(deps.Backend.Admins, rt.Tokens, verifier, rt.Limiter, rt.Audit, errLog, logger)
	annHandler := announcementsfeature.NewHandler(deps.Backend.Announcements, files, rt.Fmt, rt.Audit, errLog, logger)
	asgHandler := assignmentsfeature.NewHandler(deps.Backend.Assignments, files, rt.Fmt, rt.Audit, errLog, logger)
	calHandler := calendarfeature.NewHandler(rt.Calendar, errLog, logger)
	feedHandler := feedfeature.NewHandler(rt.Feed, logger)
	auditHandler := auditlogfeature.NewHandler(rt.Audit.Sink(), errLog, logger)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.NoCache)
		api.Route("/auth", loginHandler.MountRoutes)
		api.Route("/announcements", func(r chi.Router) { annHandler.MountRoutes(r, requireAdmin) })
		api.Route("/assignments", func(r chi.Router) { asgHandler.MountRoutes(r, requireAdmin) })
		api.Route("/calendar", calHandler.MountRoutes)
		api.Route("/feed", feedHandler.MountRoutes)
		api.Route("/audit", func(r chi.Router) { auditHandler.MountRoutes(r, requireAdmin) })
	})

	logger.Info("routes ready",
		zap.String("backend", deps.Backend.Name),
		zap.Bool("firebase_auth", verifier != nil),
		zap.Bool("feed", rt.Feed.Enabled()),
		zap.Bool("metrics", rt.Metrics != nil))
	return r, nil
}

// healthChecks returns a check per connected backend. Record storage is
// critical; the feed cache and object storage only degrade the status.
func healthChecks(deps DBDeps) []healthfeature.Check {
	var checks []healthfeature.Check
	if deps.MongoClient != nil {
		client := deps.MongoClient
		checks = append(checks, healthfeature.Check{Name: "mongo", Critical: true, Ping: func(ctx context.Context) error {
			return client.Ping(ctx, readpref.Primary())
		}})
	}
	if deps.Firestore != nil {
		fs := deps.Firestore
		checks = append(checks, healthfeature.Check{Name: "firestore", Critical: true, Ping: func(ctx context.Context) error {
			return firestorestore.Ping(ctx, fs)
		}})
	}
	if deps.Redis != nil {
		rdb := deps.Redis
		checks = append(checks, healthfeature.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	if deps.GCS != nil {
		gcs := deps.GCS
		checks = append(checks, healthfeature.Check{Name: "gcs", Ping: func(ctx context.Context) error {
			_, err := gcs.List(ctx, "", &storage.ListOptions{MaxKeys: 1})
			return err
		}})
	}
	return checks
}
