// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/prepboard/internal/app/system/auth"
	"github.com/dalemusser/prepboard/internal/app/system/feedsource"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

const devTokenSecret = "dev-only-change-me-please-0123456789ABCDEF"

// minProdSecretLen is the shortest token_secret accepted when env is prod.
const minProdSecretLen = 32

// appConfigKeys defines PrepBoard's configuration keys. Each is available as
// a config file key (token_ttl), an environment variable (PREPBOARD_TOKEN_TTL)
// and a flag (--token_ttl). List values are comma separated.
var appConfigKeys = []config.AppKey{
	{Name: "store_backend", Default: BackendMongo, Desc: "Record backend: 'mongo', 'firestore' or 'memory'"},

	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "prepboard", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 50, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 2, Desc: "MongoDB min connection pool size"},

	{Name: "firebase_project_id", Default: "", Desc: "Firebase / Google Cloud project ID"},
	{Name: "firebase_credentials_file", Default: "", Desc: "Service account JSON (blank uses Application Default Credentials)"},
	{Name: "firebase_auth", Default: false, Desc: "Enable sign-in with Firebase ID tokens"},

	{Name: "token_secret", Default: devTokenSecret, Desc: "Admin token signing secret (at least 32 chars in prod)"},
	{Name: "token_ttl", Default: "12h", Desc: "Admin token lifetime"},
	{Name: "admin_emails", Default: "", Desc: "Comma-separated emails allowed to sign in through Firebase"},
	{Name: "admin_bootstrap_email", Default: "", Desc: "Admin credential created or reset at startup"},
	{Name: "admin_bootstrap_password", Default: "", Desc: "Password for admin_bootstrap_email"},
	{Name: "login_ip_limit", Default: 20, Desc: "Login attempts per minute per IP"},
	{Name: "login_email_limit", Default: 5, Desc: "Login attempts per five minutes per email"},

	{Name: "display_timezone", Default: "UTC", Desc: "IANA timezone for display dates and countdowns"},

	{Name: "storage_type", Default: StorageLocal, Desc: "Attachment storage: 'local' or 'gcs'"},
	{Name: "storage_local_path", Default: "./uploads", Desc: "Directory for local attachments"},
	{Name: "storage_local_url", Default: "/files", Desc: "URL prefix for serving local attachments"},
	{Name: "storage_gcs_bucket", Default: "", Desc: "Cloud Storage bucket for attachments"},
	{Name: "storage_gcs_public_url", Default: "", Desc: "Public URL base for the bucket"},
	{Name: "upload_max_mb", Default: 20, Desc: "Maximum attachment size in MB"},

	{Name: "feed_url", Default: "", Desc: "External announcements feed URL (blank disables the feed)"},
	{Name: "feed_format", Default: feedsource.FormatJSON, Desc: "Feed format: 'json' or 'rss'"},
	{Name: "feed_client_id", Default: "", Desc: "OAuth2 client ID for the feed (client credentials)"},
	{Name: "feed_client_secret", Default: "", Desc: "OAuth2 client secret for the feed"},
	{Name: "feed_token_url", Default: "", Desc: "OAuth2 token URL for the feed"},
	{Name: "feed_scopes", Default: "", Desc: "Comma-separated OAuth2 scopes for the feed"},
	{Name: "feed_ttl", Default: "5m", Desc: "How long a fetched feed is served without refetching"},
	{Name: "feed_keep", Default: "24h", Desc: "How long a stale feed is kept as a fallback"},
	{Name: "feed_refresh", Default: "5m", Desc: "Background feed refresh interval (0 disables)"},
	{Name: "feed_cache", Default: FeedCacheMemory, Desc: "Feed cache: 'memory' or 'redis'"},

	{Name: "redis_addr", Default: "127.0.0.1:6379", Desc: "Redis address for the feed cache"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "redis_key", Default: "prepboard:feed", Desc: "Redis key holding the feed snapshot"},

	{Name: "calendar_file", Default: "", Desc: "YAML academic calendar (blank uses the built-in one)"},

	{Name: "audit_log", Default: auditlog.ModeAll, Desc: "Audit trail: 'all' (db+log), 'db', 'log' or 'off'"},

	{Name: "cors_allowed_origins", Default: "*", Desc: "Comma-separated origins allowed to call the API"},

	{Name: "timeout_ping", Default: "2s", Desc: "Health check timeout"},
	{Name: "timeout_short", Default: "5s", Desc: "Single-record operation timeout"},
	{Name: "timeout_medium", Default: "10s", Desc: "List and cleanup operation timeout"},
	{Name: "timeout_upstream", Default: "8s", Desc: "External feed request timeout"},

	{Name: "metrics_enabled", Default: true, Desc: "Serve Prometheus metrics at /metrics"},
}

// LoadConfig loads WAFFLE core config and PrepBoard's app config.
// Precedence: flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, v, err := config.LoadWithAppConfig(logger, "PREPBOARD", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		StoreBackend: strings.ToLower(strings.TrimSpace(v.String("store_backend"))),

		MongoURI:         v.String("mongo_uri"),
		MongoDatabase:    v.String("mongo_database"),
		MongoMaxPoolSize: uint64(v.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(v.Int("mongo_min_pool_size")),

		FirebaseProjectID:       v.String("firebase_project_id"),
		FirebaseCredentialsFile: v.String("firebase_credentials_file"),
		FirebaseAuth:            v.Bool("firebase_auth"),

		TokenSecret:            v.String("token_secret"),
		TokenTTL:               v.Duration("token_ttl", 12*time.Hour),
		AdminEmails:            splitList(v.String("admin_emails")),
		AdminBootstrapEmail:    auth.NormalizeEmail(v.String("admin_bootstrap_email")),
		AdminBootstrapPassword: v.String("admin_bootstrap_password"),
		LoginIPLimit:           v.Int("login_ip_limit"),
		LoginEmailLimit:        v.Int("login_email_limit"),

		DisplayTimezone: v.String("display_timezone"),

		StorageType:         strings.ToLower(strings.TrimSpace(v.String("storage_type"))),
		StorageLocalPath:    v.String("storage_local_path"),
		StorageLocalURL:     v.String("storage_local_url"),
		StorageGCSBucket:    v.String("storage_gcs_bucket"),
		StorageGCSPublicURL: v.String("storage_gcs_public_url"),
		UploadMaxMB:         v.Int("upload_max_mb"),

		FeedURL:          strings.TrimSpace(v.String("feed_url")),
		FeedFormat:       strings.ToLower(strings.TrimSpace(v.String("feed_format"))),
		FeedClientID:     v.String("feed_client_id"),
		FeedClientSecret: v.String("feed_client_secret"),
		FeedTokenURL:     v.String("feed_token_url"),
		FeedScopes:       splitList(v.String("feed_scopes")),
		FeedTTL:          v.Duration("feed_ttl", 5*time.Minute),
		FeedKeep:         v.Duration("feed_keep", 24*time.Hour),
		FeedRefresh:      v.Duration("feed_refresh", 5*time.Minute),
		FeedCache:        strings.ToLower(strings.TrimSpace(v.String("feed_cache"))),

		RedisAddr:     v.String("redis_addr"),
		RedisPassword: v.String("redis_password"),
		RedisDB:       v.Int("redis_db"),
		RedisKey:      v.String("redis_key"),

		CalendarFile: v.String("calendar_file"),

		AuditLog: strings.ToLower(strings.TrimSpace(v.String("audit_log"))),

		CORSOrigins: splitList(v.String("cors_allowed_origins")),

		TimeoutPing:     v.Duration("timeout_ping", 0),
		TimeoutShort:    v.Duration("timeout_short", 0),
		TimeoutMedium:   v.Duration("timeout_medium", 0),
		TimeoutUpstream: v.Duration("timeout_upstream", 0),

		MetricsEnabled: v.Bool("metrics_enabled"),
	}

	// The bootstrap admin may always sign in through Firebase as well.
	if appCfg.AdminBootstrapEmail != "" {
		appCfg.AdminEmails = append(appCfg.AdminEmails, appCfg.AdminBootstrapEmail)
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configurations that would fail later in a less
// obvious way.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	switch appCfg.StoreBackend {
	case BackendMongo:
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if strings.TrimSpace(appCfg.MongoDatabase) == "" {
			return fmt.Errorf("mongo_database is required")
		}
	case BackendFirestore:
		if appCfg.FirebaseProjectID == "" {
			return fmt.Errorf("store_backend=firestore requires firebase_project_id")
		}
	case BackendMemory:
		logger.Warn("store_backend=memory: records are lost on restart")
	default:
		return fmt.Errorf("unknown store_backend %q (want mongo, firestore or memory)", appCfg.StoreBackend)
	}

	if appCfg.FirebaseAuth && appCfg.FirebaseProjectID == "" {
		return fmt.Errorf("firebase_auth requires firebase_project_id")
	}

	switch appCfg.StorageType {
	case StorageLocal:
		if strings.TrimSpace(appCfg.StorageLocalPath) == "" {
			return fmt.Errorf("storage_local_path is required for storage_type=local")
		}
		if !strings.HasPrefix(appCfg.StorageLocalURL, "/") {
			return fmt.Errorf("storage_local_url must start with /")
		}
	case StorageGCS:
		if appCfg.StorageGCSBucket == "" {
			return fmt.Errorf("storage_type=gcs requires storage_gcs_bucket")
		}
	default:
		return fmt.Errorf("unknown storage_type %q (want local or gcs)", appCfg.StorageType)
	}
	if appCfg.UploadMaxMB < 1 {
		return fmt.Errorf("upload_max_mb must be at least 1")
	}

	switch appCfg.FeedFormat {
	case feedsource.FormatJSON, feedsource.FormatRSS:
	default:
		return fmt.Errorf("unknown feed_format %q (want json or rss)", appCfg.FeedFormat)
	}
	switch appCfg.FeedCache {
	case FeedCacheMemory, FeedCacheRedis:
	default:
		return fmt.Errorf("unknown feed_cache %q (want memory or redis)", appCfg.FeedCache)
	}
	if appCfg.FeedClientID != "" && appCfg.FeedTokenURL == "" {
		return fmt.Errorf("feed_client_id requires feed_token_url")
	}
	if appCfg.FeedTTL <= 0 {
		return fmt.Errorf("feed_ttl must be positive")
	}

	switch appCfg.AuditLog {
	case auditlog.ModeAll, auditlog.ModeDB, auditlog.ModeLog, auditlog.ModeOff:
	default:
		return fmt.Errorf("unknown audit_log %q (want all, db, log or off)", appCfg.AuditLog)
	}

	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive")
	}
	if coreCfg != nil && coreCfg.Env == "prod" {
		if appCfg.TokenSecret == devTokenSecret || len(appCfg.TokenSecret) < minProdSecretLen {
			return fmt.Errorf("token_secret must be set to at least %d characters in prod", minProdSecretLen)
		}
	}
	if (appCfg.AdminBootstrapEmail == "") != (appCfg.AdminBootstrapPassword == "") {
		return fmt.Errorf("admin_bootstrap_email and admin_bootstrap_password must be set together")
	}
	if appCfg.AdminBootstrapPassword != "" && len(appCfg.AdminBootstrapPassword) < auth.MinPasswordLen {
		return auth.ErrWeakPassword
	}

	if _, err := time.LoadLocation(appCfg.DisplayTimezone); err != nil {
		return fmt.Errorf("invalid display_timezone %q: %w", appCfg.DisplayTimezone, err)
	}
	return nil
}

// splitList parses a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
