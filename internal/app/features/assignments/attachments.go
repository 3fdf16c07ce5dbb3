// internal/app/features/assignments/attachments.go
package assignments

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

// AddAttachment stores an upload and appends it to the assignment.
// POST /api/assignments/{id}/attachments (multipart: file, kind)
func (h *Handler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	if h.Files == nil {
		h.ErrLog.Unavailable(w, r, "file storage is not configured", nil)
		return
	}
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "add assignment attachment")
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.StoreError(w, r, "get assignment", err)
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

	upd := models.AssignmentUpdate{UpdatedBy: actor(r)}
	switch up.Kind {
	case models.AttachmentImage:
		list := append(append([]models.Attachment{}, a.Images...), att)
		upd.Images = &list
	default:
		list := append(append([]models.Attachment{}, a.Files...), att)
		upd.Files = &list
	}

	updated, err := h.Store.Update(ctx, id, upd)
	if err != nil {
		h.removeFiles(ctx, id, []models.Attachment{att})
		h.ErrLog.StoreError(w, r, "attach to assignment", err)
		return
	}

	h.Audit.AdminAction(ctx, r, actor(r), audit.EventAttachmentAdded, id, map[string]string{
		"attachment_id": att.ID,
		"kind":          string(up.Kind),
		"record":        "assignment",
	})
	jsonio.Write(w, http.StatusCreated, struct {
		Attachment models.Attachment `json:"attachment"`
		Record     views.Assignment  `json:"assignment"`
	}{att, views.NewAssignment(h.Fmt, updated, h.Now())})
}

// RemoveAttachment detaches an attachment and deletes its bytes.
// DELETE /api/assignments/{id}/attachments/{attachmentID}
func (h *Handler) RemoveAttachment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	attID := chi.URLParam(r, "attachmentID")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "remove assignment attachment")
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.StoreError(w, r, "get assignment", err)
		return
	}

	upd := models.AssignmentUpdate{UpdatedBy: actor(r)}
	var removed models.Attachment
	switch {
	case models.FindAttachment(a.Images, attID) >= 0:
		removed = a.Images[models.FindAttachment(a.Images, attID)]
		list := models.WithoutAttachment(a.Images, attID)
		upd.Images = &list
	case models.FindAttachment(a.Files, attID) >= 0:
		removed = a.Files[models.FindAttachment(a.Files, attID)]
		list := models.WithoutAttachment(a.Files, attID)
		upd.Files = &list
	default:
		h.ErrLog.NotFound(w, r, "attachment not found")
		return
	}

	updated, err := h.Store.Update(ctx, id, upd)
	if err != nil {
		h.ErrLog.StoreError(w, r, "detach from assignment", err)
		return
	}
	h.removeFiles(ctx, id, []models.Attachment{removed})

	h.Audit.AdminAction(ctx, r, actor(r), audit.EventAttachmentRemoved, id, map[string]string{"attachment_id": attID})
	jsonio.Write(w, http.StatusOK, views.NewAssignment(h.Fmt, updated, h.Now()))
}
