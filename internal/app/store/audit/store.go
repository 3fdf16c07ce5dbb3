// internal/app/store/audit/store.go
package audit

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUnknownEmail  = "login_failed_unknown_email"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedNotAdmin      = "login_failed_not_admin"
	EventLoginFailedRateLimit     = "login_failed_rate_limit"
	EventLoginFailedInvalidToken  = "login_failed_invalid_token"
	EventLoginFailedUnverified    = "login_failed_unverified_email"
)

// Admin event types
const (
	EventAnnouncementCreated = "announcement_created"
	EventAnnouncementUpdated = "announcement_updated"
	EventAnnouncementDeleted = "announcement_deleted"
	EventAssignmentCreated   = "assignment_created"
	EventAssignmentUpdated   = "assignment_updated"
	EventAssignmentDeleted   = "assignment_deleted"
	EventAttachmentAdded     = "attachment_added"
	EventAttachmentRemoved   = "attachment_removed"
)

// Event is one audit record.
type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`

	Category  string `bson:"category" json:"category"`
	EventType string `bson:"event_type" json:"event_type"`

	// Actor is the admin email, or the attempted email for failed logins.
	Actor    string `bson:"actor,omitempty" json:"actor,omitempty"`
	TargetID string `bson:"target_id,omitempty" json:"target_id,omitempty"`

	IP        string `bson:"ip" json:"ip"`
	UserAgent string `bson:"user_agent,omitempty" json:"user_agent,omitempty"`

	Success       bool   `bson:"success" json:"success"`
	FailureReason string `bson:"failure_reason,omitempty" json:"failure_reason,omitempty"`

	Details map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// Store is the MongoDB audit event collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// Log records an audit event.
func (s *Store) Log(ctx context.Context, event Event) error {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, event)
	return err
}

// Recent returns up to limit events, newest first, optionally one category.
func (s *Store) Recent(ctx context.Context, category string, limit int) ([]Event, error) {
	query := bson.M{}
	if category != "" {
		query["category"] = category
	}
	if limit <= 0 {
		limit = 100
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	events := []Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Memory keeps the most recent events in a fixed-size ring, for backends
// without a database.
type Memory struct {
	mu     sync.Mutex
	events []Event
	max    int
}

func NewMemory(max int) *Memory {
	if max <= 0 {
		max = 500
	}
	return &Memory{max: max}
}

func (m *Memory) Log(_ context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	if len(m.events) > m.max {
		m.events = append([]Event(nil), m.events[len(m.events)-m.max:]...)
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, category string, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 100
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Event{}
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		if category == "" || m.events[i].Category == category {
			out = append(out, m.events[i])
		}
	}
	return out, nil
}
