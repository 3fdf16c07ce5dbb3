// Package records defines the repository contracts shared by the Mongo,
// Firestore and in-memory backends.
//
// Handlers depend only on these interfaces; bootstrap picks the backend from
// the store_backend setting.
package records

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/prepboard/internal/domain/models"
)

var (
	// ErrNotFound is returned when no record matches the given id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique key (admin email) already exists.
	ErrDuplicate = errors.New("record already exists")
)

// Sort orders for assignment lists.
const (
	SortNewest = "newest"
	SortDue    = "due"
)

// Status filters for assignment lists.
const (
	StatusAll    = ""
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// ListOptions selects one page of records. Page is 1-based; Offset and Limit
// are derived by the caller (see paging.Params).
type ListOptions struct {
	Offset int
	Limit  int
	Query  string // title prefix, matched against the folded title

	// Assignment-only options.
	Sort   string
	Status string
	Now    time.Time // reference time for Status
}

// AnnouncementRepo stores announcements.
type AnnouncementRepo interface {
	List(ctx context.Context, opts ListOptions) ([]models.Announcement, int64, error)
	GetByID(ctx context.Context, id string) (models.Announcement, error)
	Create(ctx context.Context, a models.Announcement) (models.Announcement, error)
	Update(ctx context.Context, id string, upd models.AnnouncementUpdate) (models.Announcement, error)
	Delete(ctx context.Context, id string) error
}

// AssignmentRepo stores assignments.
type AssignmentRepo interface {
	List(ctx context.Context, opts ListOptions) ([]models.Assignment, int64, error)
	GetByID(ctx context.Context, id string) (models.Assignment, error)
	Create(ctx context.Context, a models.Assignment) (models.Assignment, error)
	Update(ctx context.Context, id string, upd models.AssignmentUpdate) (models.Assignment, error)
	Delete(ctx context.Context, id string) error
}

// AdminRepo stores password credentials for admins.
type AdminRepo interface {
	GetByEmail(ctx context.Context, email string) (models.Admin, error)
	Create(ctx context.Context, a models.Admin) (models.Admin, error)
	SetPassword(ctx context.Context, id, hash string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

// Backend bundles the repositories of one storage backend.
type Backend struct {
	Name          string
	Announcements AnnouncementRepo
	Assignments   AssignmentRepo
	Admins        AdminRepo
}
