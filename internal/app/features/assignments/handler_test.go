package assignments_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/prepboard/internal/app/features/assignments"
	uierrors "github.com/dalemusser/prepboard/internal/app/features/errors"
	"github.com/dalemusser/prepboard/internal/app/features/shared/views"
	"github.com/dalemusser/prepboard/internal/app/store/memory"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/prepboard/internal/app/system/filestore"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/timefmt"
	"github.com/dalemusser/prepboard/internal/testutil"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func passThrough(next http.Handler) http.Handler { return next }

func newHandler(t *testing.T) (http.Handler, records.Backend) {
	t.Helper()
	logger := zap.NewNop()
	backend := memory.New()
	local, err := storage.NewLocal(storage.LocalConfig{BasePath: t.TempDir(), BaseURL: "/files"})
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	h := assignments.NewHandler(backend.Assignments, &filestore.Saver{Store: local, MaxBytes: 1 << 20},
		timefmt.New(time.UTC), auditlog.New(nil, logger, auditlog.ModeOff), uierrors.NewErrorLogger(logger), logger)
	h.Now = func() time.Time { return fixedNow }

	r := chi.NewRouter()
	r.Route("/api/assignments", func(r chi.Router) { h.MountRoutes(r, passThrough) })
	return r, backend
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func ptr(t time.Time) *time.Time { return &t }

func TestCreate_WithDueDate(t *testing.T) {
	h, _ := newHandler(t)
	rec := serve(h, testutil.AsAdmin(testutil.JSONRequest(t, "POST", "/api/assignments", map[string]any{
		"title":       "Problem set 3",
		"description": "Chapter 4\nexercises 1-10",
		"subject":     " Physics ",
		"due_date":    "2026-03-13",
	})))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}

	var got views.Assignment
	testutil.DecodeJSON(t, rec, &got)
	if got.Subject != "Physics" {
		t.Errorf("subject = %q", got.Subject)
	}
	if got.Description != "Chapter 4<br>exercises 1-10" {
		t.Errorf("description = %q", got.Description)
	}
	if got.DueDisplay != "2026.03.13 23:59" {
		t.Errorf("due_display = %q", got.DueDisplay)
	}
	if got.Label != "D-3" || got.DaysLeft == nil || *got.DaysLeft != 3 || got.Overdue {
		t.Errorf("countdown = %+v", got.Countdown)
	}
}

func TestCreate_BadDueDate(t *testing.T) {
	h, _ := newHandler(t)
	rec := serve(h, testutil.AsAdmin(testutil.JSONRequest(t, "POST", "/api/assignments", map[string]any{
		"title":    "Essay",
		"due_date": "next friday",
	})))
	var body jsonio.ErrorBody
	testutil.DecodeJSON(t, rec, &body)
	if rec.Code != http.StatusBadRequest || body.Field != "due_date" {
		t.Fatalf("got %d %+v", rec.Code, body)
	}
}

func TestUpdate_ClearsDueDateWithNull(t *testing.T) {
	h, b := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := testutil.NewFixtures(t, b).CreateAssignment(ctx, "Lab report", ptr(fixedNow.Add(48*time.Hour)))

	rec := serve(h, testutil.AsAdmin(testutil.JSONRequest(t, "PUT", "/api/assignments/"+a.ID, `{"due_date": null}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var got views.Assignment
	testutil.DecodeJSON(t, rec, &got)
	if got.DueDate != nil || got.DueDisplay != "" || got.Label != "" {
		t.Errorf("due date should be cleared: %+v", got)
	}
	if got.Title != "Lab report" {
		t.Errorf("title changed: %q", got.Title)
	}
}

func TestUpdate_KeepsDueDateWhenAbsent(t *testing.T) {
	h, b := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	due := fixedNow.Add(-time.Hour)
	a := testutil.NewFixtures(t, b).CreateAssignment(ctx, "Quiz", &due)

	rec := serve(h, testutil.AsAdmin(testutil.JSONRequest(t, "PATCH", "/api/assignments/"+a.ID, map[string]any{"subject": "Chem"})))
	var got views.Assignment
	testutil.DecodeJSON(t, rec, &got)
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("due date lost: %+v", got.DueDate)
	}
	if !got.Overdue || got.Label != timefmt.LabelClosed {
		t.Errorf("countdown = %+v", got.Countdown)
	}
}

func TestList_SortAndStatus(t *testing.T) {
	h, b := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	fx := testutil.NewFixtures(t, b)
	fx.CreateAssignment(ctx, "Undated", nil)
	fx.CreateAssignment(ctx, "Later", ptr(fixedNow.Add(72*time.Hour)))
	fx.CreateAssignment(ctx, "Past", ptr(fixedNow.Add(-24*time.Hour)))
	fx.CreateAssignment(ctx, "Soon", ptr(fixedNow.Add(2*time.Hour)))

	list := func(query string) []string {
		t.Helper()
		rec := serve(h, httptest.NewRequest("GET", "/api/assignments"+query, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status = %d", query, rec.Code)
		}
		var page views.List[views.Assignment]
		testutil.DecodeJSON(t, rec, &page)
		var out []string
		for _, a := range page.Items {
			out = append(out, a.Title)
		}
		return out
	}

	cases := []struct {
		query string
		want  []string
	}{
		{"", []string{"Soon", "Past", "Later", "Undated"}},
		{"?sort=due", []string{"Past", "Soon", "Later", "Undated"}},
		{"?sort=due&status=open", []string{"Soon", "Later", "Undated"}},
		{"?status=closed", []string{"Past"}},
	}
	for _, tc := range cases {
		got := list(tc.query)
		if len(got) != len(tc.want) {
			t.Errorf("%q: got %v, want %v", tc.query, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%q: got %v, want %v", tc.query, got, tc.want)
				break
			}
		}
	}
}

func TestList_RejectsUnknownSort(t *testing.T) {
	h, _ := newHandler(t)
	for _, q := range []string{"?sort=title", "?status=late"} {
		rec := serve(h, httptest.NewRequest("GET", "/api/assignments"+q, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", q, rec.Code)
		}
	}
}

func TestDeleteAndShow(t *testing.T) {
	h, b := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := testutil.NewFixtures(t, b).CreateAssignment(ctx, "Worksheet", nil)

	if rec := serve(h, httptest.NewRequest("GET", "/api/assignments/"+a.ID, nil)); rec.Code != http.StatusOK {
		t.Fatalf("show status = %d", rec.Code)
	}
	if rec := serve(h, testutil.AsAdmin(httptest.NewRequest("DELETE", "/api/assignments/"+a.ID, nil))); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := serve(h, httptest.NewRequest("GET", "/api/assignments/"+a.ID, nil)); rec.Code != http.StatusNotFound {
		t.Errorf("after delete status = %d", rec.Code)
	}
}

func TestAttachment_File(t *testing.T) {
	h, b := newHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	a := testutil.NewFixtures(t, b).CreateAssignment(ctx, "Reading", nil)

	req := testutil.MultipartRequest(t, "/api/assignments/"+a.ID+"/attachments", "notes.pdf", []byte("%PDF-1.4\n"), nil)
	rec := serve(h, testutil.AsAdmin(req))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
	}
	var got struct {
		Assignment views.Assignment `json:"assignment"`
	}
	testutil.DecodeJSON(t, rec, &got)
	if len(got.Assignment.Files) != 1 || got.Assignment.Files[0].Name != "notes.pdf" {
		t.Errorf("files = %+v", got.Assignment.Files)
	}
	if len(got.Assignment.Images) != 0 {
		t.Errorf("images = %+v", got.Assignment.Images)
	}
}
