package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/memory"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
)

func TestAnnouncements_CRUD(t *testing.T) {
	ctx := context.Background()
	s := memory.NewAnnouncements()

	created, err := s.Create(ctx, models.Announcement{Title: "  Étude hall  ", Content: "<p>hi</p>"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" || created.Title != "Étude hall" || created.TitleCI != text.Fold("Étude hall") {
		t.Fatalf("created = %+v", created)
	}
	if created.Images == nil || created.Files == nil {
		t.Error("attachment slices should be empty, not nil")
	}

	title := "Study hall"
	updated, err := s.Update(ctx, created.ID, models.AnnouncementUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.TitleCI != text.Fold("Study hall") || updated.Content != "<p>hi</p>" {
		t.Errorf("updated = %+v", updated)
	}

	blank := " "
	var ve *models.ValidationError
	if _, err := s.Update(ctx, created.ID, models.AnnouncementUpdate{Title: &blank}); !errors.As(err, &ve) {
		t.Fatalf("blank title update: %v", err)
	}
	got, _ := s.GetByID(ctx, created.ID)
	if got.Title != "Study hall" {
		t.Error("failed update must not change the stored record")
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.GetByID(ctx, created.ID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("GetByID after delete: %v", err)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("second Delete: %v", err)
	}
	if _, err := s.Update(ctx, "missing", models.AnnouncementUpdate{}); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("Update missing: %v", err)
	}
}

func TestAnnouncements_ListOrderAndSearch(t *testing.T) {
	ctx := context.Background()
	s := memory.NewAnnouncements()

	for _, a := range []models.Announcement{
		{Title: "Math quiz"},
		{Title: "Library hours", Pinned: true},
		{Title: "Mathématiques review"},
	} {
		if _, err := s.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	rows, total, err := s.List(ctx, records.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(rows) != 3 {
		t.Fatalf("total=%d rows=%d", total, len(rows))
	}
	want := []string{"Library hours", "Mathématiques review", "Math quiz"}
	for i, title := range want {
		if rows[i].Title != title {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i].Title, title)
		}
	}

	rows, total, _ = s.List(ctx, records.ListOptions{Limit: 10, Query: "MATH"})
	if total != 2 || len(rows) != 2 {
		t.Fatalf("search total=%d rows=%d", total, len(rows))
	}

	rows, total, _ = s.List(ctx, records.ListOptions{Offset: 10, Limit: 10})
	if total != 3 || len(rows) != 0 || rows == nil {
		t.Errorf("page past the end: total=%d rows=%v", total, rows)
	}
}

func TestAssignments_StatusAndDueSort(t *testing.T) {
	ctx := context.Background()
	s := memory.NewAssignments()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	past := now.Add(-24 * time.Hour)
	soon := now.Add(24 * time.Hour)
	later := now.Add(72 * time.Hour)

	for _, a := range []models.Assignment{
		{Title: "Later", DueDate: &later},
		{Title: "Undated"},
		{Title: "Past", DueDate: &past},
		{Title: "Soon", DueDate: &soon},
	} {
		if _, err := s.Create(ctx, a); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	rows, _, _ := s.List(ctx, records.ListOptions{Limit: 10, Sort: records.SortDue, Now: now})
	want := []string{"Past", "Soon", "Later", "Undated"}
	for i, title := range want {
		if rows[i].Title != title {
			t.Errorf("due sort rows[%d] = %q, want %q", i, rows[i].Title, title)
		}
	}

	_, open, _ := s.List(ctx, records.ListOptions{Limit: 10, Status: records.StatusOpen, Now: now})
	_, closed, _ := s.List(ctx, records.ListOptions{Limit: 10, Status: records.StatusClosed, Now: now})
	if open != 3 || closed != 1 {
		t.Errorf("open=%d closed=%d", open, closed)
	}
}

func TestAssignments_ClearDue(t *testing.T) {
	ctx := context.Background()
	s := memory.NewAssignments()
	due := time.Date(2026, 3, 13, 14, 59, 0, 0, time.UTC)

	a, err := s.Create(ctx, models.Assignment{Title: "Essay", DueDate: &due})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a, err = s.Update(ctx, a.ID, models.AssignmentUpdate{ClearDue: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if a.DueDate != nil {
		t.Error("due date should be cleared")
	}
}

func TestAdmins(t *testing.T) {
	ctx := context.Background()
	s := memory.NewAdmins()

	a, err := s.Create(ctx, models.Admin{Email: "Teacher@School.edu", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := s.Create(ctx, models.Admin{Email: "teacher@school.edu"}); !errors.Is(err, records.ErrDuplicate) {
		t.Fatalf("duplicate Create: %v", err)
	}
	if _, err := s.Create(ctx, models.Admin{Email: " "}); err == nil {
		t.Fatal("blank email should fail")
	}

	got, err := s.GetByEmail(ctx, " TEACHER@school.edu ")
	if err != nil || got.ID != a.ID {
		t.Fatalf("GetByEmail = %+v, %v", got, err)
	}

	if err := s.SetPassword(ctx, a.ID, "h2"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	at := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	if err := s.TouchLogin(ctx, a.ID, at); err != nil {
		t.Fatalf("TouchLogin: %v", err)
	}
	got, _ = s.GetByEmail(ctx, "teacher@school.edu")
	if got.PasswordHash != "h2" || got.LastLoginAt == nil || !got.LastLoginAt.Equal(at) {
		t.Errorf("after updates: %+v", got)
	}

	if err := s.SetPassword(ctx, "nobody", "x"); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("SetPassword missing: %v", err)
	}
	if _, err := s.GetByEmail(ctx, "nobody@school.edu"); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("GetByEmail missing: %v", err)
	}
}
