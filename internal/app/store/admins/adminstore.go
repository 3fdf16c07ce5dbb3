// internal/app/store/admins/adminstore.go
package adminstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the MongoDB admin credential repository. email_ci carries a
// unique index (see system/indexes).
type Store struct {
	c *mongo.Collection
}

var _ records.AdminRepo = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("admins")}
}

// GetByEmail looks up an admin by folded email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.Admin, error) {
	var a models.Admin
	err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Admin{}, records.ErrNotFound
	}
	if err != nil {
		return models.Admin{}, err
	}
	return a, nil
}

// Create inserts a new admin. PasswordHash must already be a bcrypt hash.
func (s *Store) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	now := time.Now().UTC()
	a.Email = strings.TrimSpace(a.Email)
	if a.Email == "" {
		return models.Admin{}, &models.ValidationError{Field: "email", Message: "email is required"}
	}
	a.ID = primitive.NewObjectID().Hex()
	a.EmailCI = text.Fold(a.Email)
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Admin{}, records.ErrDuplicate
		}
		return models.Admin{}, err
	}
	return a, nil
}

// SetPassword replaces the stored bcrypt hash.
func (s *Store) SetPassword(ctx context.Context, id, hash string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hash": hash,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return records.ErrNotFound
	}
	return nil
}

// TouchLogin records a successful login.
func (s *Store) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"last_login_at": at.UTC()}})
	return err
}
