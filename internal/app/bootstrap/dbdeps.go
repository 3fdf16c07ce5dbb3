// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"cloud.google.com/go/firestore"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backends opened in ConnectDB. Only the clients for the
// configured backends are non-nil.
type DBDeps struct {
	Backend records.Backend

	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Firestore    *firestore.Client
	FirebaseAuth *fbauth.Client

	Redis *redis.Client

	// Files is the attachment store; Local or GCS is set to the same value.
	Files storage.Store
	Local *storage.Local
	GCS   *storage.GCS

	AuditSink auditlog.Sink

	// Runtime is filled in by Startup and read by BuildHandler and Shutdown.
	Runtime *Runtime
}
