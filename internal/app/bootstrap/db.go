// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	adminstore "github.com/dalemusser/prepboard/internal/app/store/admins"
	announcementstore "github.com/dalemusser/prepboard/internal/app/store/announcements"
	assignmentstore "github.com/dalemusser/prepboard/internal/app/store/assignments"
	"github.com/dalemusser/prepboard/internal/app/store/audit"
	firestorestore "github.com/dalemusser/prepboard/internal/app/store/firestore"
	"github.com/dalemusser/prepboard/internal/app/store/memory"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/indexes"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// auditMemoryEvents bounds the in-process audit trail used without Mongo.
const auditMemoryEvents = 1000

// ConnectDB opens every backend the configuration asks for. On error any
// client already opened is closed again.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (deps DBDeps, err error) {
	deps.Runtime = &Runtime{}
	defer func() {
		if err != nil {
			closeDeps(context.Background(), deps, logger)
			deps = DBDeps{}
		}
	}()

	var fbApp *firebase.App
	if appCfg.FirebaseProjectID != "" {
		fbApp, err = connectFirebase(ctx, appCfg)
		if err != nil {
			return deps, err
		}
	}

	switch appCfg.StoreBackend {
	case BackendMongo:
		if err = connectMongo(ctx, appCfg, &deps, logger); err != nil {
			return deps, err
		}
		deps.Backend = records.Backend{
			Name:          BackendMongo,
			Announcements: announcementstore.New(deps.MongoDatabase),
			Assignments:   assignmentstore.New(deps.MongoDatabase),
			Admins:        adminstore.New(deps.MongoDatabase),
		}
		deps.AuditSink = audit.New(deps.MongoDatabase)
	case BackendFirestore:
		deps.Firestore, err = fbApp.Firestore(ctx)
		if err != nil {
			return deps, fmt.Errorf("firestore client: %w", err)
		}
		deps.Backend = firestorestore.New(deps.Firestore)
		deps.AuditSink = audit.NewMemory(auditMemoryEvents)
		logger.Info("connected to Firestore", zap.String("project", appCfg.FirebaseProjectID))
	default:
		deps.Backend = memory.New()
		deps.AuditSink = audit.NewMemory(auditMemoryEvents)
	}

	if appCfg.FirebaseAuth {
		deps.FirebaseAuth, err = fbApp.Auth(ctx)
		if err != nil {
			return deps, fmt.Errorf("firebase auth client: %w", err)
		}
	}

	if err = connectStorage(ctx, appCfg, &deps, logger); err != nil {
		return deps, err
	}

	if appCfg.FeedURL != "" && appCfg.FeedCache == FeedCacheRedis {
		if err = connectRedis(ctx, appCfg, &deps, logger); err != nil {
			return deps, err
		}
	}
	return deps, nil
}

func googleOptions(appCfg AppConfig) []option.ClientOption {
	var opts []option.ClientOption
	if f := strings.TrimSpace(appCfg.FirebaseCredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	return opts
}

func connectFirebase(ctx context.Context, appCfg AppConfig) (*firebase.App, error) {
	cfg := &firebase.Config{ProjectID: appCfg.FirebaseProjectID}
	if appCfg.StorageType == StorageGCS {
		cfg.StorageBucket = appCfg.StorageGCSBucket
	}
	app, err := firebase.NewApp(ctx, cfg, googleOptions(appCfg)...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	return app, nil
}

func connectMongo(ctx context.Context, appCfg AppConfig, deps *DBDeps, logger *zap.Logger) error {
	opts := options.Client().
		ApplyURI(appCfg.MongoURI).
		SetMaxPoolSize(appCfg.MongoMaxPoolSize).
		SetMinPoolSize(appCfg.MongoMinPoolSize)

	cctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	client, err := mongo.Connect(cctx, opts)
	if err != nil {
		return fmt.Errorf("mongo connect: %w", err)
	}
	deps.MongoClient = client
	if err := client.Ping(cctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))
	return nil
}

func connectStorage(ctx context.Context, appCfg AppConfig, deps *DBDeps, logger *zap.Logger) error {
	switch appCfg.StorageType {
	case StorageGCS:
		g, err := storage.NewGCS(ctx, storage.GCSConfig{
			Bucket:          appCfg.StorageGCSBucket,
			CredentialsFile: strings.TrimSpace(appCfg.FirebaseCredentialsFile),
			ProjectID:       appCfg.FirebaseProjectID,
			BaseURL:         strings.TrimRight(appCfg.StorageGCSPublicURL, "/"),
		})
		if err != nil {
			return fmt.Errorf("gcs client: %w", err)
		}
		deps.GCS, deps.Files = g, g
		logger.Info("attachments stored in Cloud Storage", zap.String("bucket", appCfg.StorageGCSBucket))
	default:
		l, err := storage.NewLocal(storage.LocalConfig{
			BasePath: appCfg.StorageLocalPath,
			BaseURL:  appCfg.StorageLocalURL,
		})
		if err != nil {
			return fmt.Errorf("local storage: %w", err)
		}
		deps.Local, deps.Files = l, l
		logger.Info("attachments stored on disk",
			zap.String("dir", appCfg.StorageLocalPath),
			zap.String("url", appCfg.StorageLocalURL))
	}
	return nil
}

func connectRedis(ctx context.Context, appCfg AppConfig, deps *DBDeps, logger *zap.Logger) error {
	rdb := redis.NewClient(&redis.Options{
		Addr:     appCfg.RedisAddr,
		Password: appCfg.RedisPassword,
		DB:       appCfg.RedisDB,
	})
	deps.Redis = rdb

	pctx, cancel := context.WithTimeout(ctx, timeouts.Ping())
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", appCfg.RedisAddr, err)
	}
	logger.Info("connected to Redis", zap.String("addr", appCfg.RedisAddr))
	return nil
}

// EnsureSchema creates Mongo indexes. Firestore composite indexes are
// declared in the Firebase project, not here.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	return indexes.EnsureAll(ctx, deps.MongoDatabase, logger)
}
