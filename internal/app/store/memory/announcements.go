package memory

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Announcements is the in-memory announcement repository.
type Announcements struct {
	t *table[models.Announcement]
}

var _ records.AnnouncementRepo = (*Announcements)(nil)

func NewAnnouncements() *Announcements {
	return &Announcements{t: newTable[models.Announcement]()}
}

func (s *Announcements) Create(_ context.Context, a models.Announcement) (models.Announcement, error) {
	a.Title = strings.TrimSpace(a.Title)
	if err := a.Validate(); err != nil {
		return models.Announcement{}, err
	}
	now := time.Now().UTC()
	a.ID = newID()
	a.TitleCI = text.Fold(a.Title)
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

func (s *Announcements) GetByID(_ context.Context, id string) (models.Announcement, error) {
	a, ok := s.t.get(id)
	if !ok {
		return models.Announcement{}, records.ErrNotFound
	}
	return a, nil
}

func (s *Announcements) List(_ context.Context, opts records.ListOptions) ([]models.Announcement, int64, error) {
	keep := func(a models.Announcement) bool { return matchesPrefix(a.TitleCI, opts.Query) }
	rows, total := s.t.selectPage(keep, records.AnnouncementLess, opts.Offset, opts.Limit)
	return rows, total, nil
}

func (s *Announcements) Update(_ context.Context, id string, upd models.AnnouncementUpdate) (models.Announcement, error) {
	s.t.mu.Lock()
	defer s.t.mu.Unlock()

	a, ok := s.t.rows[id]
	if !ok {
		return models.Announcement{}, records.ErrNotFound
	}
	upd.Apply(&a, time.Now().UTC())
	if err := a.Validate(); err != nil {
		return models.Announcement{}, err
	}
	a.TitleCI = text.Fold(a.Title)
	s.t.rows[id] = a
	return a, nil
}

func (s *Announcements) Delete(_ context.Context, id string) error {
	if !s.t.remove(id) {
		return records.ErrNotFound
	}
	return nil
}
