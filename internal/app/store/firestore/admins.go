package firestorestore

import (
	"context"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Admins is the Firestore admin credential repository. The document id is
// the folded email, which also makes Create fail on duplicates.
type Admins struct {
	c *firestore.CollectionRef
}

var _ records.AdminRepo = (*Admins)(nil)

func NewAdmins(client *firestore.Client) *Admins {
	return &Admins{c: client.Collection("admins")}
}

func (s *Admins) GetByEmail(ctx context.Context, email string) (models.Admin, error) {
	key := text.Fold(strings.TrimSpace(email))
	if key == "" || strings.Contains(key, "/") {
		return models.Admin{}, records.ErrNotFound
	}
	snap, err := s.c.Doc(key).Get(ctx)
	if isNotFound(err) {
		return models.Admin{}, records.ErrNotFound
	}
	if err != nil {
		return models.Admin{}, err
	}
	var a models.Admin
	if err := snap.DataTo(&a); err != nil {
		return models.Admin{}, err
	}
	a.ID = snap.Ref.ID
	return a, nil
}

func (s *Admins) Create(ctx context.Context, a models.Admin) (models.Admin, error) {
	a.Email = strings.TrimSpace(a.Email)
	if a.Email == "" {
		return models.Admin{}, &models.ValidationError{Field: "email", Message: "email is required"}
	}
	a.EmailCI = text.Fold(a.Email)
	if strings.Contains(a.EmailCI, "/") {
		return models.Admin{}, &models.ValidationError{Field: "email", Message: "email is invalid"}
	}
	now := time.Now().UTC()
	a.ID = a.EmailCI
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.Doc(a.ID).Create(ctx, a); err != nil {
		if isAlreadyExists(err) {
			return models.Admin{}, records.ErrDuplicate
		}
		return models.Admin{}, err
	}
	return a, nil
}

func (s *Admins) SetPassword(ctx context.Context, id, hash string) error {
	_, err := s.c.Doc(id).Update(ctx, []firestore.Update{
		{Path: "password_hash", Value: hash},
		{Path: "updated_at", Value: time.Now().UTC()},
	})
	if isNotFound(err) {
		return records.ErrNotFound
	}
	return err
}

func (s *Admins) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := s.c.Doc(id).Update(ctx, []firestore.Update{
		{Path: "last_login_at", Value: at.UTC()},
	})
	if isNotFound(err) {
		return records.ErrNotFound
	}
	return err
}
