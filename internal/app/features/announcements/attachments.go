// internal/app/features/announcements/attachments.go
package announcements

import (
	"net/http"

	"github.com/dalemusser/prepboard/internal/app/features/shared/uploads"
	"github.com/dalemusser/prepboard/internal/app/features/shared/views"
	"github.com/dalemusser/prepboard/internal/app/store/audit"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// AddAttachment stores an uploaded image or file and appends it.
// POST /api/announcements/{id}/attachments (multipart: file, kind)
func (h *Handler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	if h.Files == nil {
		h.ErrLog.Unavailable(w, r, "file storage is not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add announcement attachment")
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.StoreError(w, r, "get announcement", err)
		return
	}

	up, done, err := uploads.Read(w, r, h.UploadMax)
	if err != nil {
		h.ErrLog.UploadError(w, r, err)
		return
	}
	defer done()

	att, err := h.Files.Save(ctx, storagePrefix, up)
	if err != nil {
		h.ErrLog.UploadError(w, r, err)
		return
	}

	upd := models.AnnouncementUpdate{UpdatedBy: actor(r)}
	if up.Kind == models.AttachmentImage {
		list := append(append([]models.Attachment{}, a.Images...), att)
		upd.Images = &list
	} else {
		list := append(append([]models.Attachment{}, a.Files...), att)
		upd.Files = &list
	}

	updated, err := h.Store.Update(ctx, id, upd)
	if err != nil {
		h.removeFiles(ctx, id, []models.Attachment{att})
		h.ErrLog.StoreError(w, r, "attach to announcement", err)
		return
	}

	h.Audit.AdminAction(ctx, r, actor(r), audit.EventAttachmentAdded, id, map[string]string{
		"attachment_id": att.ID,
		"kind":          string(up.Kind),
		"name":          att.Name,
	})
	jsonio.Write(w, http.StatusCreated, struct {
		Attachment models.Attachment  `json:"attachment"`
		Record     views.Announcement `json:"announcement"`
	}{att, views.NewAnnouncement(h.Fmt, updated)})
}

// RemoveAttachment detaches an image or file and deletes its bytes.
// DELETE /api/announcements/{id}/attachments/{attachmentID}
func (h *Handler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	attID := chi.URLParam(r, "attachmentID")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove announcement attachment")
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.StoreError(w, r, "get announcement", err)
		return
	}

	upd := models.AnnouncementUpdate{UpdatedBy: actor(r)}
	var removed models.Attachment
	if i := models.FindAttachment(a.Images, attID); i >= 0 {
		removed = a.Images[i]
		list := models.WithoutAttachment(a.Images, attID)
		upd.Images = &list
	} else if i := models.FindAttachment(a.Files, attID); i >= 0 {
		removed = a.Files[i]
		list := models.WithoutAttachment(a.Files, attID)
		upd.Files = &list
	} else {
		h.ErrLog.NotFound(w, r, "attachment not found")
		return
	}

	updated, err := h.Store.Update(ctx, id, upd)
	if err != nil {
		h.ErrLog.StoreError(w, r, "detach from announcement", err)
		return
	}
	h.removeFiles(ctx, id, []models.Attachment{removed})

	h.Audit.AdminAction(ctx, r, actor(r), audit.EventAttachmentRemoved, id, map[string]string{"attachment_id": attID})
	jsonio.Write(w, http.StatusOK, views.NewAnnouncement(h.Fmt, updated))
}
