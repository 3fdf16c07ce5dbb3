package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
)

// Fixtures creates records through any backend.
type Fixtures struct {
	b records.Backend
	t *testing.T
}

// NewFixtures creates a Fixtures bound to b.
func NewFixtures(t *testing.T, b records.Backend) *Fixtures {
	t.Helper()
	return &Fixtures{b: b, t: t}
}

// CreateAnnouncement stores an announcement with the given title.
func (f *Fixtures) CreateAnnouncement(ctx context.Context, title string, pinned bool) models.Announcement {
	f.t.Helper()
	a, err := f.b.Announcements.Create(ctx, models.Announcement{
		Title:     title,
		Content:   "<p>" + title + "</p>",
		Pinned:    pinned,
		CreatedBy: AdminEmail,
	})
	if err != nil {
		f.t.Fatalf("failed to create test announcement: %v", err)
	}
	// Keep created_at strictly increasing across fixtures.
	time.Sleep(time.Millisecond)
	return a
}

// CreateAssignment stores an assignment; due may be nil.
func (f *Fixtures) CreateAssignment(ctx context.Context, title string, due *time.Time) models.Assignment {
	f.t.Helper()
	a, err := f.b.Assignments.Create(ctx, models.Assignment{
		Title:       title,
		Description: "<p>" + title + "</p>",
		Subject:     "Math",
		DueDate:     due,
		CreatedBy:   AdminEmail,
	})
	if err != nil {
		f.t.Fatalf("failed to create test assignment: %v", err)
	}
	time.Sleep(time.Millisecond)
	return a
}
