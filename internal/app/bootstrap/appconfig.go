// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// Record backends (store_backend).
const (
	BackendMongo     = "mongo"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Attachment storage (storage_type).
const (
	StorageLocal = "local"
	StorageGCS   = "gcs"
)

// Feed cache (feed_cache).
const (
	FeedCacheMemory = "memory"
	FeedCacheRedis  = "redis"
)

// AppConfig holds PrepBoard's configuration, loaded in LoadConfig from
// flags, PREPBOARD_* environment variables, config files and defaults.
//
// WAFFLE's CoreConfig covers ports, TLS, log level and the environment name;
// everything here is specific to the board.
type AppConfig struct {
	// Where records live: "mongo", "firestore" or "memory".
	StoreBackend string

	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Firebase project. Required for the firestore backend, firebase sign-in
	// and GCS attachments on the project's default bucket.
	FirebaseProjectID       string
	FirebaseCredentialsFile string // blank uses Application Default Credentials
	FirebaseAuth            bool   // enable POST /api/auth/firebase

	// Admin tokens and sign-in.
	TokenSecret            string
	TokenTTL               time.Duration
	AdminEmails            []string
	AdminBootstrapEmail    string
	AdminBootstrapPassword string
	LoginIPLimit           int // attempts per minute per IP
	LoginEmailLimit        int // attempts per five minutes per email

	DisplayTimezone string

	// Attachments.
	StorageType         string
	StorageLocalPath    string
	StorageLocalURL     string
	StorageGCSBucket    string
	StorageGCSPublicURL string // blank means https://storage.googleapis.com/<bucket>
	UploadMaxMB         int

	// External announcements feed.
	FeedURL          string
	FeedFormat       string
	FeedClientID     string
	FeedClientSecret string
	FeedTokenURL     string
	FeedScopes       []string
	FeedTTL          time.Duration
	FeedKeep         time.Duration
	FeedRefresh      time.Duration
	FeedCache        string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisKey      string

	CalendarFile string

	// Audit trail: "all", "db", "log" or "off".
	AuditLog string

	CORSOrigins []string

	TimeoutPing     time.Duration
	TimeoutShort    time.Duration
	TimeoutMedium   time.Duration
	TimeoutUpstream time.Duration

	MetricsEnabled bool
}

// UploadMaxBytes converts UploadMaxMB to bytes.
func (c AppConfig) UploadMaxBytes() int64 {
	return int64(c.UploadMaxMB) << 20
}
