// internal/app/store/announcements/announcementstore.go
package announcementstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store is the MongoDB announcement repository.
type Store struct {
	c *mongo.Collection
}

var _ records.AnnouncementRepo = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("announcements")}
}

// Create inserts a new announcement, assigning ID, TitleCI and timestamps.
func (s *Store) Create(ctx context.Context, a models.Announcement) (models.Announcement, error) {
	now := time.Now().UTC()

	a.Title = strings.TrimSpace(a.Title)
	if err := a.Validate(); err != nil {
		return models.Announcement{}, err
	}
	a.ID = primitive.NewObjectID().Hex()
	a.TitleCI = text.Fold(a.Title)
	if a.Images == nil {
		a.Images = []models.Attachment{}
	}
	if a.Files == nil {
		a.Files = []models.Attachment{}
	}
	a.CreatedAt = now
	a.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

// GetByID returns the announcement or records.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (models.Announcement, error) {
	var a models.Announcement
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Announcement{}, records.ErrNotFound
	}
	if err != nil {
		return models.Announcement{}, err
	}
	return a, nil
}

// List returns one page ordered pinned-first, newest-first, plus the total
// number of matching documents.
func (s *Store) List(ctx context.Context, opts records.ListOptions) ([]models.Announcement, int64, error) {
	filter := bson.M{}
	if lo, hi := text.PrefixRange(opts.Query); lo != "" {
		filter["title_ci"] = bson.M{"$gte": lo, "$lt": hi}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	find := options.Find().
		SetSort(bson.D{
			{Key: "pinned", Value: -1},
			{Key: "created_at", Value: -1},
			{Key: "_id", Value: -1},
		}).
		SetSkip(int64(opts.Offset)).
		SetLimit(int64(opts.Limit))

	cur, err := s.c.Find(ctx, filter, find)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Announcement{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update applies upd and returns the stored result.
func (s *Store) Update(ctx context.Context, id string, upd models.AnnouncementUpdate) (models.Announcement, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Announcement{}, err
	}
	upd.Apply(&cur, time.Now().UTC())
	if err := cur.Validate(); err != nil {
		return models.Announcement{}, err
	}
	cur.TitleCI = text.Fold(cur.Title)

	set := bson.M{
		"title":      cur.Title,
		"title_ci":   cur.TitleCI,
		"content":    cur.Content,
		"author":     cur.Author,
		"pinned":     cur.Pinned,
		"images":     cur.Images,
		"files":      cur.Files,
		"updated_at": cur.UpdatedAt,
	}
	if cur.UpdatedBy != "" {
		set["updated_by"] = cur.UpdatedBy
	}

	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return models.Announcement{}, err
	}
	if res.MatchedCount == 0 {
		return models.Announcement{}, records.ErrNotFound
	}
	return cur, nil
}

// Delete removes an announcement by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return records.ErrNotFound
	}
	return nil
}
