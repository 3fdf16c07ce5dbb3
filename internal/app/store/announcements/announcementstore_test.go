package announcementstore_test

import (
	"errors"
	"testing"

	announcementstore "github.com/dalemusser/prepboard/internal/app/store/announcements"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/prepboard/internal/testutil"
)

func TestStore_CreateGetUpdateDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := announcementstore.New(db)

	created, err := s.Create(ctx, models.Announcement{Title: "  Exam week ", Content: "<p>Room 101</p>"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" || created.Title != "Exam week" {
		t.Fatalf("unexpected created record: %+v", created)
	}

	got, err := s.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Content != "<p>Room 101</p>" || got.Images == nil {
		t.Errorf("round trip lost data: %+v", got)
	}

	pinned := true
	upd, err := s.Update(ctx, created.ID, models.AnnouncementUpdate{Pinned: &pinned, UpdatedBy: testutil.AdminEmail})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if !upd.Pinned || upd.UpdatedBy != testutil.AdminEmail {
		t.Errorf("update not applied: %+v", upd)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.GetByID(ctx, created.ID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, created.ID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStore_CreateRejectsBlankTitle(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	var ve *models.ValidationError
	if _, err := announcementstore.New(db).Create(ctx, models.Announcement{Title: "  "}); !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestStore_ListPinnedFirstAndSearch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	s := announcementstore.New(db)
	fx := testutil.NewFixtures(t, records.Backend{Announcements: s})

	fx.CreateAnnouncement(ctx, "Math quiz", false)
	fx.CreateAnnouncement(ctx, "Library hours", true)
	fx.CreateAnnouncement(ctx, "Math review", false)

	rows, total, err := s.List(ctx, records.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	want := []string{"Library hours", "Math review", "Math quiz"}
	for i, title := range want {
		if rows[i].Title != title {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i].Title, title)
		}
	}

	rows, total, err = s.List(ctx, records.ListOptions{Limit: 1, Offset: 1, Query: "math"})
	if err != nil {
		t.Fatalf("List with query failed: %v", err)
	}
	if total != 2 || len(rows) != 1 || rows[0].Title != "Math quiz" {
		t.Errorf("search page: total=%d rows=%+v", total, rows)
	}
}
