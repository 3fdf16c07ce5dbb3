// internal/app/features/shared/views/views.go

// Package views shapes stored records into API responses: display dates,
// due countdowns and list envelopes.
package views

import (
	"time"

	"github.com/dalemusser/prepboard/internal/app/system/paging"
	"github.com/dalemusser/prepboard/internal/app/system/timefmt"
	"github.com/dalemusser/prepboard/internal/domain/models"
)

// Announcement is an announcement as returned to clients.
type Announcement struct {
	models.Announcement
	CreatedDisplay string `json:"created_display"`
	UpdatedDisplay string `json:"updated_display"`
}

// Assignment is an assignment as returned to clients.
type Assignment struct {
	models.Assignment
	CreatedDisplay string `json:"created_display"`
	DueDisplay     string `json:"due_display,omitempty"`
	timefmt.Countdown
}

// List is the envelope for paged list responses.
type List[T any] struct {
	Items []T `json:"items"`
	paging.Meta
}

func NewAnnouncement(f timefmt.Formatter, a models.Announcement) Announcement {
	return Announcement{
		Announcement:   a,
		CreatedDisplay: f.Date(a.CreatedAt),
		UpdatedDisplay: f.Date(a.UpdatedAt),
	}
}

func NewAssignment(f timefmt.Formatter, a models.Assignment, now time.Time) Assignment {
	v := Assignment{
		Assignment:     a,
		CreatedDisplay: f.Date(a.CreatedAt),
		Countdown:      f.Countdown(a.DueDate, now),
	}
	if a.DueDate != nil {
		v.DueDisplay = f.DateTime(*a.DueDate)
	}
	return v
}

func Announcements(f timefmt.Formatter, rows []models.Announcement) []Announcement {
	out := make([]Announcement, 0, len(rows))
	for _, a := range rows {
		out = append(out, NewAnnouncement(f, a))
	}
	return out
}

func Assignments(f timefmt.Formatter, rows []models.Assignment, now time.Time) []Assignment {
	out := make([]Assignment, 0, len(rows))
	for _, a := range rows {
		out = append(out, NewAssignment(f, a, now))
	}
	return out
}
