// internal/app/features/announcements/write.go
package announcements

import (
	"context"
	"net/http"

	"github.com/dalemusser/prepboard/internal/app/features/shared/views"
	"github.com/dalemusser/prepboard/internal/app/store/audit"
	"github.com/dalemusser/prepboard/internal/app/system/auth"
	"github.com/dalemusser/prepboard/internal/app/system/htmlsanitize"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// input is the JSON body for create and update. Absent fields are nil.
type input struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Author  *string `json:"author"`
	Pinned  *bool   `json:"pinned"`
}

func (in input) update(actor string) models.AnnouncementUpdate {
	upd := models.AnnouncementUpdate{
		Title:     in.Title,
		Author:    in.Author,
		Pinned:    in.Pinned,
		UpdatedBy: actor,
	}
	if in.Content != nil {
		c := htmlsanitize.Body(*in.Content)
		upd.Content = &c
	}
	return upd
}

func actor(r *http.Request) string {
	id, _ := auth.CurrentAdmin(r)
	return id.Email
}

// Create stores a new announcement and returns it with 201.
// POST /api/announcements
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in input
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.BadRequest(w, r, "invalid JSON body", err)
		return
	}
	who := actor(r)

	a := models.Announcement{CreatedBy: who, UpdatedBy: who}
	in.update(who).Apply(&a, h.Now().UTC())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create announcement")
	defer cancel()

	created, err := h.Store.Create(ctx, a)
	if err != nil {
		h.ErrLog.StoreError(w, r, "create announcement", err)
		return
	}

	h.Audit.AdminAction(ctx, r, who, audit.EventAnnouncementCreated, created.ID, map[string]string{"title": created.Title})
	w.Header().Set("Location", "/api/announcements/"+created.ID)
	jsonio.Write(w, http.StatusCreated, views.NewAnnouncement(h.Fmt, created))
}

// Update applies the fields present in the body.
// PUT|PATCH /api/announcements/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in input
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.BadRequest(w, r, "invalid JSON body", err)
		return
	}
	who := actor(r)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update announcement")
	defer cancel()

	updated, err := h.Store.Update(ctx, id, in.update(who))
	if err != nil {
		h.ErrLog.StoreError(w, r, "update announcement", err)
		return
	}

	h.Audit.AdminAction(ctx, r, who, audit.EventAnnouncementUpdated, id, nil)
	jsonio.Write(w, http.StatusOK, views.NewAnnouncement(h.Fmt, updated))
}

// Delete removes the announcement, then its stored attachments.
// DELETE /api/announcements/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete announcement")
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.StoreError(w, r, "get announcement", err)
		return
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.StoreError(w, r, "delete announcement", err)
		return
	}
	h.removeFiles(ctx, id, a.Images, a.Files)

	h.Audit.AdminAction(ctx, r, actor(r), audit.EventAnnouncementDeleted, id, map[string]string{"title": a.Title})
	w.WriteHeader(http.StatusNoContent)
}

// removeFiles deletes stored bytes; failures are logged, not returned, since
// the record is already gone.
func (h *Handler) removeFiles(ctx context.Context, id string, lists ...[]models.Attachment) {
	if h.Files == nil {
		return
	}
	if err := h.Files.DeleteAll(ctx, lists...); err != nil {
		h.Log.Warn("failed to delete announcement attachments",
			zap.String("announcement_id", id), zap.Error(err))
	}
}
