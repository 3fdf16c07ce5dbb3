// internal/app/features/login/firebase.go
package login

import (
	"net/http"
	"strings"

	"github.com/dalemusser/prepboard/internal/app/store/audit"
	"github.com/dalemusser/prepboard/internal/app/system/auth"
	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/dalemusser/prepboard/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type firebaseInput struct {
	IDToken string `json:"id_token" validate:"required"`
}

// HandleFirebase exchanges a Firebase ID token for an admin token. The
// token's email must be verified and on the admin list.
// POST /api/auth/firebase
func (h *Handler) HandleFirebase(w http.ResponseWriter, r *http.Request) {
	if h.Firebase == nil {
		h.ErrLog.Unavailable(w, r, "firebase sign-in is not configured", nil)
		return
	}
	var in firebaseInput
	if err := jsonio.Decode(w, r, &in); err != nil {
		h.ErrLog.BadRequest(w, r, "invalid JSON body", err)
		return
	}
	if h.rejectInvalid(w, r, &in) {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Upstream(), h.Log, "verify firebase token")
	defer cancel()

	if ok, wait := h.Limiter.Check(r, ""); !ok {
		h.Audit.LoginFailed(ctx, r, "", auth.MethodFirebase, audit.EventLoginFailedRateLimit, "too many attempts")
		tooMany(w, wait)
		return
	}

	tok, err := h.Firebase.VerifyIDToken(ctx, strings.TrimSpace(in.IDToken))
	if err != nil {
		h.Log.Debug("firebase token rejected", zap.Error(err))
		h.Audit.LoginFailed(ctx, r, "", auth.MethodFirebase, audit.EventLoginFailedInvalidToken, "invalid id token")
		jsonio.Error(w, http.StatusUnauthorized, jsonio.CodeUnauthorized, "invalid id token")
		return
	}

	email, _ := tok.Claims["email"].(string)
	email = auth.NormalizeEmail(email)
	verified, _ := tok.Claims["email_verified"].(bool)
	name, _ := tok.Claims["name"].(string)

	if email == "" || !verified {
		h.Audit.LoginFailed(ctx, r, email, auth.MethodFirebase, audit.EventLoginFailedUnverified, "email missing or not verified")
		jsonio.Error(w, http.StatusForbidden, jsonio.CodeForbidden, "a verified email is required")
		return
	}
	if !h.Tokens.IsAdminEmail(email) {
		h.Audit.LoginFailed(ctx, r, email, auth.MethodFirebase, audit.EventLoginFailedNotAdmin, "not an admin email")
		jsonio.Error(w, http.StatusForbidden, jsonio.CodeForbidden, "this account is not an admin")
		return
	}

	h.issue(w, r, auth.Identity{Email: email, Name: name, Method: auth.MethodFirebase})
}
