package firestorestore

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

// Announcements is the Firestore announcement repository.
type Announcements struct {
	client *firestore.Client
	c      *firestore.CollectionRef
}

var _ records.AnnouncementRepo = (*Announcements)(nil)

func NewAnnouncements(client *firestore.Client) *Announcements {
	return &Announcements{client: client, c: client.Collection("announcements")}
}

func setAnnouncementID(a *models.Announcement, id string) { a.ID = id }

func (s *Announcements) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	a.Title = strings.TrimSpace(a.Title)
	if err := a.Validate(); err != nil {
		return models.Announcement{}, err
	}
	now := time.Now().UTC()
	ref := s.c.NewDoc()
	a.ID = ref.ID
	a.TitleCI = text.Fold(a.Title)
	if a.Images == nil {
		a.Images = []models.Attachment{}
	}
	if a.Files == nil {
		a.Files = []models.Attachment{}
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := ref.Create(ctx, a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

func (s *Announcements) GetByID(ctx context.Context, id string) (models.Announcement, error) {
	if id == "" || strings.Contains(id, "/") {
		return models.Announcement{}, records.ErrNotFound
	}
	snap, err := s.c.Doc(id).Get(ctx)
	if isNotFound(err) {
		return models.Announcement{}, records.ErrNotFound
	}
	if err != nil {
		return models.Announcement{}, err
	}
	var a models.Announcement
	if err := snap.DataTo(&a); err != nil {
		return models.Announcement{}, err
	}
	a.ID = snap.Ref.ID
	return a, nil
}

// List pages in Firestore when there is no title query. A title prefix forces
// the query to order by title first, so prefixed lists read the matching set
// and order it in process.
func (s *Announcements) List(ctx context.Context, opts records.ListOptions) ([]models.Announcement, int64, error) {
	q := s.c.Query
	if lo, hi := text.PrefixRange(opts.Query); lo != "" {
		all, err := collect(titlePrefix(q, lo, hi).Documents(ctx), setAnnouncementID)
		if err != nil {
			return nil, 0, err
		}
		sort.SliceStable(all, func(i, j int) bool { return records.AnnouncementLess(all[i], all[j]) })
		return records.Window(all, opts.Offset, opts.Limit), int64(len(all)), nil
	}
	total, err := count(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	q = q.OrderBy("pinned", firestore.Desc).
		OrderBy("created_at", firestore.Desc).
		Offset(opts.Offset).
		Limit(opts.Limit)

	rows, err := collect(q.Documents(ctx), setAnnouncementID)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Update runs read-modify-write in a transaction so concurrent edits retry
// instead of overwriting each other.
func (s *Announcements) Update(ctx context.Context, id string, upd models.AnnouncementUpdate) (models.Announcement, error) {
	if id == "" || strings.Contains(id, "/") {
		return models.Announcement{}, records.ErrNotFound
	}
	ref := s.c.Doc(id)
	var out models.Announcement

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var a models.Announcement
		if err := snap.DataTo(&a); err != nil {
			return err
		}
		a.ID = id
		upd.Apply(&a, time.Now().UTC())
		if err := a.Validate(); err != nil {
			return err
		}
		a.TitleCI = text.Fold(a.Title)
		out = a
		return tx.Set(ref, a)
	})
	if isNotFound(err) {
		return models.Announcement{}, records.ErrNotFound
	}
	if err != nil {
		return models.Announcement{}, err
	}
	return out, nil
}

func (s *Announcements) Delete(ctx context.Context, id string) error {
	if id == "" || strings.Contains(id, "/") {
		return records.ErrNotFound
	}
	_, err := s.c.Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return records.ErrNotFound
	}
	return err
}
