// internal/app/features/login/password.go
package login

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/prepboard/internal/app/store/audit"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/auth"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"github.com/dalemusser/prepboard/internal/domain/models"
	"go.uber.org/zap"
)

const msgBadCredentials = "invalid email or password"

type passwordInput struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// rejectInvalid writes a 400 naming the first field whose validate tag
// fails and reports whether it did.
func (h *Handler) rejectInvalid(w http.ResponseWriter, r *http.Request, in any) bool {
	err := models.Check(in)
	if err == nil {
		return false
	}
	var ve *models.ValidationError
	if errors.As(err, &ve) {
		h.ErrLog.Validation(w, r, ve)
		return true
	}
	h.ErrLog.ServerError(w, r, "validate input", err)
	return true
}

// HandlePassword signs in with an admin credential from the record store.
// POST /api/auth/login
func (h *Handler) HandlePassword(w http.ResponseWriter, r *http.Request) {
	var in passwordInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.BadRequest(w, r, "invalid JSON body", err)
		return
	}
	if h.rejectInvalid(w, r, &in) {
		return
	}
	email := auth.NormalizeEmail(in.Email)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "password login")
	defer cancel()

	if ok, wait := h.Limiter.Check(r, email); !ok {
		h.Audit.LoginFailed(ctx, r, email, auth.MethodPassword, audit.EventLoginFailedRateLimit, "too many attempts")
		tooMany(w, wait)
		return
	}

	admin, err := h.Admins.GetByEmail(ctx, email)
	switch {
	case errors.Is(err, records.ErrNotFound):
		auth.CheckPassword("", in.Password)
		h.Audit.LoginFailed(ctx, r, email, auth.MethodPassword, audit.EventLoginFailedUnknownEmail, "no such admin")
		jsonio.Error(w, http.StatusUnauthorized, jsonio.CodeUnauthorized, msgBadCredentials)
		return
	case err != nil:
		h.ErrLog.StoreError(w, r, "look up admin", err)
		return
	}

	if !auth.CheckPassword(admin.PasswordHash, in.Password) {
		h.Audit.LoginFailed(ctx, r, email, auth.MethodPassword, audit.EventLoginFailedWrongPassword, "wrong password")
		jsonio.Error(w, http.StatusUnauthorized, jsonio.CodeUnauthorized, msgBadCredentials)
		return
	}

	h.Limiter.ResetEmail(email)
	if err := h.Admins.TouchLogin(ctx, admin.ID, h.Now().UTC()); err != nil {
		h.Log.Warn("failed to record admin login time", zap.String("email", email), zap.Error(err))
	}

	h.issue(w, r, auth.Identity{Email: admin.Email, Name: admin.Name, Method: auth.MethodPassword})
}

// issue writes the token response and audits the success.
func (h *Handler) issue(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	tok, exp, err := h.Tokens.Issue(id)
	if err != nil {
		h.ErrLog.ServerError(w, r, "issue admin token", err)
		return
	}
	h.Audit.LoginSuccess(r.Context(), r, auth.NormalizeEmail(id.Email), id.Method)
	jsonio.Write(w, http.StatusOK, tokenResponse{
		Token:     tok,
		TokenType: "Bearer",
		ExpiresAt: exp,
		Admin: adminView{
			Email:  auth.NormalizeEmail(id.Email),
			Name:   strings.TrimSpace(id.Name),
			Method: id.Method,
		},
	})
}

func tooMany(w http.ResponseWriter, wait time.Duration) {
	secs := int(wait.Round(time.Second) / time.Second)
	if secs < 1 {
		secs = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(secs))
	jsonio.Error(w, http.StatusTooManyRequests, jsonio.CodeRateLimited, "too many login attempts, try again later")
}
