package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Assignments is the in-memory assignment repository.
type Assignments struct {
	t *table[models.Assignment]
}

var _ records.AssignmentRepo = (*Assignments)(nil)

func NewAssignments() *Assignments {
	return &Assignments{t: newTable[models.Assignment]()}
}

func (s *Assignments) Create(_ context.Context, a models.Assignment) (models.Assignment, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Subject = strings.TrimSpace(a.Subject)
	if err := a.Validate(); err != nil {
		return models.Assignment{}, err
	}
	now := time.Now().UTC()
	a.ID = newID()
	a.TitleCI = text.Fold(a.Title)
	if a.DueDate != nil {
		d := a.DueDate.UTC()
		a.DueDate = &d
	}
	if a.Images == nil {
		a.Images = []models.Attachment{}
	}
	if a.Files == nil {
		a.Files = []models.Attachment{}
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	s.t.put(a.ID, a)
	return a, nil
}

func (s *Assignments) GetByID(_ context.Context, id string) (models.Assignment, error) {
	a, ok := s.t.get(id)
	if !ok {
		return models.Assignment{}, records.ErrNotFound
	}
	return a, nil
}

func (s *Assignments) List(_ context.Context, opts records.ListOptions) ([]models.Assignment, int64, error) {
	keep := func(a models.Assignment) bool {
		return matchesPrefix(a.TitleCI, opts.Query) && records.MatchStatus(a, opts.Status, opts.Now)
	}
	rows, total := s.t.selectPage(keep, records.AssignmentLess(opts.Sort), opts.Offset, opts.Limit)
	return rows, total, nil
}

func (s *Assignments) Update(_ context.Context, id string, upd models.AssignmentUpdate) (models.Assignment, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	a, ok := s.t.rows[id]
	if !ok {
		return models.Assignment{}, records.ErrNotFound
	}
	upd.Apply(&a, time.Now().UTC())
	if err := a.Validate(); err != nil {
		return models.Assignment{}, err
	}
	a.TitleCI = text.Fold(a.Title)
	s.t.rows[id] = a
	return a, nil
}

func (s *Assignments) Delete(_ context.Context, id string) error {
	if !s.t.remove(id) {
		return records.ErrNotFound
	}
	return nil
}
