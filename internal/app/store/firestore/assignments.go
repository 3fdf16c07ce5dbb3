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

// Assignments is the Firestore assignment repository.
type Assignments struct {
	client *firestore.Client
	c      *firestore.CollectionRef
}

var _ records.AssignmentRepo = (*Assignments)(nil)

func NewAssignments(client *firestore.Client) *Assignments {
	return &Assignments{client: client, c: client.Collection("assignments")}
}

func setAssignmentID(a *models.Assignment, id string) { a.ID = id }

func (s *Assignments) Create(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Subject = strings.TrimSpace(a.Subject)
	if err := a.Validate(); err != nil {
		return models.Assignment{}, err
	}
	now := time.Now().UTC()
	ref := s.c.NewDoc()
	a.ID = ref.ID
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

	if _, err := ref.Create(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

func (s *Assignments) GetByID(ctx context.Context, id string) (models.Assignment, error) {
	if id == "" || strings.Contains(id, "/") {
		return models.Assignment{}, records.ErrNotFound
	}
	snap, err := s.c.Doc(id).Get(ctx)
	if isNotFound(err) {
		return models.Assignment{}, records.ErrNotFound
	}
	if err != nil {
		return models.Assignment{}, err
	}
	var a models.Assignment
	if err := snap.DataTo(&a); err != nil {
		return models.Assignment{}, err
	}
	a.ID = snap.Ref.ID
	return a, nil
}

// List pages directly in Firestore for the default ordering. Due-date
// ordering and the open/closed filter need "missing field sorts last"
// semantics Firestore queries cannot express, and a title prefix forces a
// title-first order, so those read the matching set and order it in process.
func (s *Assignments) List(ctx context.Context, opts records.ListOptions) ([]models.Assignment, int64, error) {
	q := s.c.Query
	prefixed := false
	if lo, hi := text.PrefixRange(opts.Query); lo != "" {
		q = titlePrefix(q, lo, hi)
		prefixed = true
	}

	if prefixed || opts.Sort == records.SortDue || opts.Status != records.StatusAll {
		all, err := collect(q.Documents(ctx), setAssignmentID)
		if err != nil {
			return nil, 0, err
		}
		kept := all[:0]
		for _, a := range all {
			if records.MatchStatus(a, opts.Status, opts.Now) {
				kept = append(kept, a)
			}
		}
		sort.SliceStable(kept, func(i, j int) bool { return records.AssignmentLess(opts.Sort)(kept[i], kept[j]) })
		return records.Window(kept, opts.Offset, opts.Limit), int64(len(kept)), nil
	}

	total, err := count(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	q = q.OrderBy("created_at", firestore.Desc).Offset(opts.Offset).Limit(opts.Limit)
	rows, err := collect(q.Documents(ctx), setAssignmentID)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *Assignments) Update(ctx context.Context, id string, upd models.AssignmentUpdate) (models.Assignment, error) {
	if id == "" || strings.Contains(id, "/") {
		return models.Assignment{}, records.ErrNotFound
	}
	ref := s.c.Doc(id)
	var out models.Assignment

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}
		var a models.Assignment
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
		return models.Assignment{}, records.ErrNotFound
	}
	if err != nil {
		return models.Assignment{}, err
	}
	return out, nil
}

func (s *Assignments) Delete(ctx context.Context, id string) error {
	if id == "" || strings.Contains(id, "/") {
		return records.ErrNotFound
	}
	_, err := s.c.Doc(id).Delete(ctx, firestore.Exists)
	if isNotFound(err) {
		return records.ErrNotFound
	}
	return err
}
