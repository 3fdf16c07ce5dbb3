package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Admins is the in-memory admin credential repository, keyed by folded email.
type Admins struct {
	t *table[models.Admin]
}

var _ records.AdminRepo = (*Admins)(nil)

func NewAdmins() *Admins {
	return &Admins{t: newTable[models.Admin]()}
}

func (s *Admins) GetByEmail(_ context.Context, email string) (models.Admin, error) {
	a, ok := s.t.get(text.Fold(strings.TrimSpace(email)))
	if !ok {
		return models.Admin{}, records.ErrNotFound
	}
	return a, nil
}

func (s *Admins) Create(_ context.Context, a models.Admin) (models.Admin, error) {
	a.Email = strings.TrimSpace(a.Email)
	if a.Email == "" {
		return models.Admin{}, &models.ValidationError{Field: "email", Message: "email is required"}
	}
	a.EmailCI = text.Fold(a.Email)

	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	if _, exists := s.t.rows[a.EmailCI]; exists {
		return models.Admin{}, records.ErrDuplicate
	}
	now := time.Now().UTC()
	a.ID = a.EmailCI
	a.CreatedAt = now
	a.UpdatedAt = now
	s.t.rows[a.EmailCI] = a
	return a, nil
}

func (s *Admins) SetPassword(_ context.Context, id, hash string) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	a, ok := s.t.rows[id]
	if !ok {
		return records.ErrNotFound
	}
	a.PasswordHash = hash
	a.UpdatedAt = time.Now().UTC()
	s.t.rows[id] = a
	return nil
}

func (s *Admins) TouchLogin(_ context.Context, id string, at time.Time) error {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()
	a, ok := s.t.rows[id]
	if !ok {
		return records.ErrNotFound
	}
	t := at.UTC()
	a.LastLoginAt = &t
	s.t.rows[id] = a
	return nil
}
