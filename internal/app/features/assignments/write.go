// internal/app/features/assignments/write.go
package assignments

import (
	"bytes"
	"context"
	"encoding/json"
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

// input is the JSON body for create and update. due_date may be a string,
// null (clears it), or absent (unchanged).
type input struct {
	Title       *string         `json:"title"`
	Description *string         `json:"description"`
	Subject     *string         `json:"subject"`
	DueDate     json.RawMessage `json:"due_date"`
	ClearDue    bool            `json:"clear_due"`
}

// update converts the body; a malformed due date is reported as a
// ValidationError on due_date.
func (h *Handler) update(in input, actor string) (models.AssignmentUpdate, error) {
	upd := models.AssignmentUpdate{
		Title:     in.Title,
		Subject:   in.Subject,
		ClearDue:  in.ClearDue,
		UpdatedBy: actor,
	}
	if in.Description != nil {
		d := htmlsanitize.Body(*in.Description)
		upd.Description = &d
	}

	raw := bytes.TrimSpace(in.DueDate)
	switch {
	case len(raw) == 0:
	case bytes.Equal(raw, []byte("null")):
		upd.ClearDue = true
	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return upd, &models.ValidationError{Field: "due_date", Message: "due_date must be a string"}
		}
		if s == "" {
			upd.ClearDue = true
			break
		}
		due, err := h.Fmt.ParseDue(s)
		if err != nil {
			return upd, &models.ValidationError{Field: "due_date", Message: "due_date must be YYYY-MM-DD, YYYY-MM-DDTHH:MM or RFC 3339"}
		}
		upd.DueDate = &due
	}
	return upd, nil
}

func actor(r *http.Request) string {
	id, _ := auth.CurrentAdmin(r)
	return id.Email
}

// Create stores a new assignment and returns it with 201.
// POST /api/assignments
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in input
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.BadRequest(w, r, "invalid JSON body", err)
		return
	}
	who := actor(r)
	upd, err := h.update(in, who)
	if err != nil {
		h.ErrLog.StoreError(w, r, "create assignment", err)
		return
	}

	a := models.Assignment{CreatedBy: who}
	upd.Apply(&a, h.Now().UTC())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "create assignment")
	defer cancel()

	created, err := h.Store.Create(ctx, a)
	if err != nil {
		h.ErrLog.StoreError(w, r, "create assignment", err)
		return
	}

	h.Audit.AdminAction(ctx, r, who, audit.EventAssignmentCreated, created.ID, map[string]string{"title": created.Title})
	w.Header().Set("Location", "/api/assignments/"+created.ID)
	jsonio.Write(w, http.StatusCreated, views.NewAssignment(h.Fmt, created, h.Now()))
}

// Update applies the fields present in the body.
// PUT|PATCH /api/assignments/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var in input
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.BadRequest(w, r, "invalid JSON body", err)
		return
	}
	who := actor(r)
	upd, err := h.update(in, who)
	if err != nil {
		h.ErrLog.StoreError(w, r, "update assignment", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update assignment")
	defer cancel()

	updated, err := h.Store.Update(ctx, id, upd)
	if err != nil {
		h.ErrLog.StoreError(w, r, "update assignment", err)
		return
	}

	h.Audit.AdminAction(ctx, r, who, audit.EventAssignmentUpdated, id, nil)
	jsonio.Write(w, http.StatusOK, views.NewAssignment(h.Fmt, updated, h.Now()))
}

// Delete removes the assignment and its stored attachments.
// DELETE /api/assignments/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "delete assignment")
	defer cancel()

	a, err := h.Store.GetByID(ctx, id)
	if err != nil {
		h.ErrLog.StoreError(w, r, "get assignment", err)
		return
	}
	if err := h.Store.Delete(ctx, id); err != nil {
		h.ErrLog.StoreError(w, r, "delete assignment", err)
		return
	}
	h.removeFiles(ctx, id, a.Images, a.Files)

	h.Audit.AdminAction(ctx, r, actor(r), audit.EventAssignmentDeleted, id, map[string]string{"title": a.Title})
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) removeFiles(ctx context.Context, id string, lists ...[]models.Attachment) {
	if h.Files == nil {
		return
	}
	if err := h.Files.DeleteAll(ctx, lists...); err != nil {
		h.Log.Warn("failed to delete assignment attachments",
			zap.String("assignment_id", id), zap.Error(err))
	}
}
