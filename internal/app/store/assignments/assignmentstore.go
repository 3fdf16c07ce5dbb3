// internal/app/store/assignments/assignmentstore.go
package assignmentstore

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

// Store is the MongoDB assignment repository.
type Store struct {
	c *mongo.Collection
}

var _ records.AssignmentRepo = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("assignments")}
}

// Create inserts a new assignment, assigning ID, TitleCI and timestamps.
func (s *Store) Create(ctx context.Context, a models.Assignment) (models.Assignment, error) {
	now := time.Now().UTC()

	a.Title = strings.TrimSpace(a.Title)
	a.Subject = strings.TrimSpace(a.Subject)
	if err := a.Validate(); err != nil {
		return models.Assignment{}, err
	}
	a.ID = primitive.NewObjectID().Hex()
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

	if _, err := s.c.InsertOne(ctx, a); err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// GetByID returns the assignment or records.ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (models.Assignment, error) {
	var a models.Assignment
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Assignment{}, records.ErrNotFound
	}
	if err != nil {
		return models.Assignment{}, err
	}
	return a, nil
}

// List returns one page of assignments and the total number matching.
// SortDue orders by due date ascending with undated assignments last.
func (s *Store) List(ctx context.Context, opts records.ListOptions) ([]models.Assignment, int64, error) {
	filter := bson.M{}
	if lo, hi := text.PrefixRange(opts.Query); lo != "" {
		filter["title_ci"] = bson.M{"$gte": lo, "$lt": hi}
	}
	switch opts.Status {
	case records.StatusOpen:
		filter["$or"] = []bson.M{
			{"due_date": bson.M{"$exists": false}},
			{"due_date": nil},
			{"due_date": bson.M{"$gte": opts.Now}},
		}
	case records.StatusClosed:
		filter["due_date"] = bson.M{"$lt": opts.Now}
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if opts.Sort == records.SortDue {
		return s.listByDue(ctx, filter, opts, total)
	}

	find := options.Find().
		SetSort(bson.D{
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

	out := []models.Assignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// listByDue uses an aggregation so that undated assignments land after every
// dated one instead of first (Mongo sorts missing fields lowest).
func (s *Store) listByDue(ctx context.Context, filter bson.M, opts records.ListOptions, total int64) ([]models.Assignment, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$addFields", Value: bson.M{
			"_no_due": bson.M{"$cond": bson.A{bson.M{"$ifNull": bson.A{"$due_date", false}}, 0, 1}},
		}}},
		{{Key: "$sort", Value: bson.D{
			{Key: "_no_due", Value: 1},
			{Key: "due_date", Value: 1},
			{Key: "_id", Value: 1},
		}}},
		{{Key: "$skip", Value: int64(opts.Offset)}},
		{{Key: "$limit", Value: int64(opts.Limit)}},
		{{Key: "$project", Value: bson.M{"_no_due": 0}}},
	}

	cur, err := s.c.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	out := []models.Assignment{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Update applies upd and returns the stored result.
func (s *Store) Update(ctx context.Context, id string, upd models.AssignmentUpdate) (models.Assignment, error) {
	cur, err := s.GetByID(ctx, id)
	if err != nil {
		return models.Assignment{}, err
	}
	upd.Apply(&cur, time.Now().UTC())
	if err := cur.Validate(); err != nil {
		return models.Assignment{}, err
	}
	cur.TitleCI = text.Fold(cur.Title)

	set := bson.M{
		"title":       cur.Title,
		"title_ci":    cur.TitleCI,
		"description": cur.Description,
		"subject":     cur.Subject,
		"images":      cur.Images,
		"files":       cur.Files,
		"updated_at":  cur.UpdatedAt,
	}
	if cur.UpdatedBy != "" {
		set["updated_by"] = cur.UpdatedBy
	}
	update := bson.M{"$set": set}
	if cur.DueDate != nil {
		set["due_date"] = *cur.DueDate
	} else {
		update["$unset"] = bson.M{"due_date": ""}
	}

	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return models.Assignment{}, err
	}
	if res.MatchedCount == 0 {
		return models.Assignment{}, records.ErrNotFound
	}
	return cur, nil
}

// Delete removes an assignment by ID.
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
