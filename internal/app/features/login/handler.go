// internal/app/features/login/handler.go
package login

import (
	"context"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
	uierrors "github.com/dalemusser/prepboard/internal/app/features/errors"
	"github.com/dalemusser/prepboard/internal/app/store/records"
	"github.com/dalemusser/prepboard/internal/app/system/auditlog"
	"github.com/dalemusser/prepboard/internal/app/system/auth"
	"github.com/dalemusser/prepboard/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// IDTokenVerifier verifies Firebase ID tokens. *fbauth.Client satisfies it.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// Handler serves the admin sign-in endpoints.
type Handler struct {
	Admins   records.AdminRepo
	Tokens   *auth.TokenManager
	Firebase IDTokenVerifier // nil disables POST /firebase
	Limiter  *ratelimit.LoginLimiter
	Audit    *auditlog.Logger
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
	Now      func() time.Time
}

func NewHandler(admins records.AdminRepo, tokens *auth.TokenManager, firebase IDTokenVerifier, limiter *ratelimit.LoginLimiter, audit *auditlog.Logger, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter(20, 5)
	}
	return &Handler{
		Admins:   admins,
		Tokens:   tokens,
		Firebase: firebase,
		Limiter:  limiter,
		Audit:    audit,
		ErrLog:   errLog,
		Log:      logger,
		Now:      time.Now,
	}
}

// adminView is the identity part of a login response.
type adminView struct {
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Method string `json:"method"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Admin     adminView `json:"admin"`
}
