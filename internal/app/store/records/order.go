package records

import (
	"time"

	"github.com/dalemusser/prepboard/internal/domain/models"
)

// AnnouncementLess orders pinned announcements first, then newest first.
// Backends that sort in process use it so every backend agrees on order.
func AnnouncementLess(a, b models.Announcement) bool {
	if a.Pinned != b.Pinned {
		return a.Pinned
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// AssignmentLess returns the ordering for the given sort key. SortDue puts
// the earliest due date first and undated assignments last.
func AssignmentLess(sortKey string) func(a, b models.Assignment) bool {
	if sortKey != SortDue {
		return func(a, b models.Assignment) bool {
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID > b.ID
		}
	}
	return func(a, b models.Assignment) bool {
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			return a.ID < b.ID
		case a.DueDate == nil:
			return false
		case b.DueDate == nil:
			return true
		case !a.DueDate.Equal(*b.DueDate):
			return a.DueDate.Before(*b.DueDate)
		}
		return a.ID < b.ID
	}
}

// MatchStatus reports whether a passes the open/closed filter at now.
func MatchStatus(a models.Assignment, status string, now time.Time) bool {
	switch status {
	case StatusOpen:
		return !a.Closed(now)
	case StatusClosed:
		return a.Closed(now)
	}
	return true
}

// Window returns rows[offset:offset+limit], clamped. A non-positive limit
// means "to the end".
func Window[T any](rows []T, offset, limit int) []T {
	if offset >= len(rows) {
		return []T{}
	}
	if offset < 0 {
		offset = 0
	}
	end := offset + limit
	if limit <= 0 || end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end]
}
