package firestorestore_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/firestore"
	firestorestore "github.com/dalemusser/prepboard/internal/app/store/firestore"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/dalemusser/prepboard/internal/testutil"
)

// newBackend connects to the Firestore emulator, using a fresh project per
// test so collections start empty. Skipped when FIRESTORE_EMULATOR_HOST is
// unset.
func newBackend(t *testing.T) (records.Backend, *firestore.Client) {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set; skipping")
	}
	ctx, cancel := testutil.TestContext()
	defer cancel()
	client, err := firestore.NewClient(ctx, fmt.Sprintf("prepboard-test-%d", time.Now().UnixNano()))
	if err != nil {
		t.Fatalf("firestore.NewClient: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return firestorestore.New(client), client
}

func TestBackend_AnnouncementLifecycle(t *testing.T) {
	b, client := newBackend(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := firestorestore.Ping(ctx, client); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	fx := testutil.NewFixtures(t, b)
	first := fx.CreateAnnouncement(ctx, "Math quiz", false)
	fx.CreateAnnouncement(ctx, "Library hours", true)

	got, err := b.Announcements.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Title != "Math quiz" || got.ID != first.ID {
		t.Errorf("GetByID = %+v", got)
	}

	rows, total, err := b.Announcements.List(ctx, records.ListOptions{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 2 || rows[0].Title != "Library hours" {
		t.Errorf("List: total=%d first=%q", total, rows[0].Title)
	}

	_, total, err = b.Announcements.List(ctx, records.ListOptions{Limit: 10, Query: "ma"})
	if err != nil {
		t.Fatalf("List with query: %v", err)
	}
	if total != 1 {
		t.Errorf("search total = %d, want 1", total)
	}

	title := "Math quiz (moved)"
	upd, err := b.Announcements.Update(ctx, first.ID, models.AnnouncementUpdate{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if upd.Title != title {
		t.Errorf("Update title = %q", upd.Title)
	}

	if err := b.Announcements.Delete(ctx, first.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := b.Announcements.GetByID(ctx, first.ID); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("GetByID after delete: %v", err)
	}
	if _, err := b.Announcements.GetByID(ctx, "a/b"); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("GetByID with slash: %v", err)
	}
}

func TestBackend_TitleQueryKeepsListOrder(t *testing.T) {
	b, _ := newBackend(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, b)

	fx.CreateAnnouncement(ctx, "Mb pinned notice", true)
	fx.CreateAnnouncement(ctx, "Ma older", false)
	fx.CreateAnnouncement(ctx, "Mc newest", false)
	fx.CreateAnnouncement(ctx, "Other", true)

	rows, total, err := b.Announcements.List(ctx, records.ListOptions{Limit: 10, Query: "m"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d, want 3", total)
	}
	want := []string{"Mb pinned notice", "Mc newest", "Ma older"}
	for i, title := range want {
		if rows[i].Title != title {
			t.Errorf("announcements[%d] = %q, want %q", i, rows[i].Title, title)
		}
	}

	page, _, err := b.Announcements.List(ctx, records.ListOptions{Offset: 1, Limit: 1, Query: "m"})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if len(page) != 1 || page[0].Title != "Mc newest" {
		t.Errorf("page = %+v", page)
	}

	fx.CreateAssignment(ctx, "Ma essay", nil)
	fx.CreateAssignment(ctx, "Mb worksheet", nil)
	fx.CreateAssignment(ctx, "Other", nil)
	arows, atotal, err := b.Assignments.List(ctx, records.ListOptions{Limit: 10, Query: "m"})
	if err != nil {
		t.Fatalf("Assignments.List: %v", err)
	}
	if atotal != 2 || len(arows) != 2 || arows[0].Title != "Mb worksheet" || arows[1].Title != "Ma essay" {
		t.Errorf("assignments = %d %+v", atotal, arows)
	}
}

func TestBackend_AssignmentDueSort(t *testing.T) {
	b, _ := newBackend(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, b)

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	soon := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)
	fx.CreateAssignment(ctx, "Undated", nil)
	fx.CreateAssignment(ctx, "Soon", &soon)
	fx.CreateAssignment(ctx, "Past", &past)

	rows, total, err := b.Assignments.List(ctx, records.ListOptions{Limit: 10, Sort: records.SortDue, Now: now})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 {
		t.Fatalf("total = %d", total)
	}
	want := []string{"Past", "Soon", "Undated"}
	for i, title := range want {
		if rows[i].Title != title {
			t.Errorf("rows[%d] = %q, want %q", i, rows[i].Title, title)
		}
	}

	_, closed, err := b.Assignments.List(ctx, records.ListOptions{Limit: 10, Status: records.StatusClosed, Now: now})
	if err != nil {
		t.Fatalf("List closed: %v", err)
	}
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}
}

func TestBackend_Admins(t *testing.T) {
	b, _ := newBackend(t)
	ctx := context.Background()

	a, err := b.Admins.Create(ctx, models.Admin{Email: "Teacher@School.edu", PasswordHash: "h1"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := b.Admins.Create(ctx, models.Admin{Email: "teacher@school.edu"}); !errors.Is(err, records.ErrDuplicate) {
		t.Fatalf("duplicate Create: %v", err)
	}
	got, err := b.Admins.GetByEmail(ctx, "TEACHER@school.edu")
	if err != nil || got.ID != a.ID {
		t.Fatalf("GetByEmail = %+v, %v", got, err)
	}
	if err := b.Admins.SetPassword(ctx, a.ID, "h2"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	got, _ = b.Admins.GetByEmail(ctx, "teacher@school.edu")
	if got.PasswordHash != "h2" {
		t.Errorf("hash = %q", got.PasswordHash)
	}
}
