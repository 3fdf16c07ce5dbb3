// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"
	"errors"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops the feed worker and closes every client ConnectDB opened.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if rt := deps.Runtime; rt != nil {
		if rt.feedWorker != nil {
			rt.feedWorker.Stop()
		}
		if rt.feedCancel != nil {
			rt.feedCancel()
		}
	}
	return closeDeps(ctx, deps, logger)
}

// closeDeps closes whatever clients are set, returning the first error.
func closeDeps(ctx context.Context, deps DBDeps, logger *zap.Logger) error {
	var errs []error
	if deps.Redis != nil {
		if err := deps.Redis.Close(); err != nil {
			logger.Error("redis close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.GCS != nil {
		if err := deps.GCS.Close(); err != nil {
			logger.Error("gcs close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.Firestore != nil {
		if err := deps.Firestore.Close(); err != nil {
			logger.Error("firestore close failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
