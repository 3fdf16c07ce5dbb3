// Package auth issues and checks the bearer tokens that guard admin writes.
//
// A token is a gorilla/securecookie value (HMAC-signed and AES-encrypted)
// holding an Identity. It is opaque to clients and expires after the
// configured TTL.
package auth

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dalemusser/prepboard/internal/app/system/jsonio"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// Login methods recorded in an Identity.
const (
	MethodPassword = "password"
	MethodFirebase = "firebase"
)

const tokenName = "prepboard-admin"

var (
	ErrNoToken      = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is what a token carries and what handlers see as the current admin.
type Identity struct {
	Email    string    `json:"email"`
	Name     string    `json:"name,omitempty"`
	Method   string    `json:"method"`
	IssuedAt time.Time `json:"issued_at"`
}

// TokenManager issues and verifies admin tokens.
type TokenManager struct {
	codec *securecookie.SecureCookie
	ttl   time.Duration
	log   *zap.Logger
	now   func() time.Time

	mu     sync.RWMutex
	admins map[string]struct{}
}

// NewTokenManager derives the signing and encryption keys from secret.
func NewTokenManager(secret string, ttl time.Duration, adminEmails []string, logger *zap.Logger) (*TokenManager, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("token secret is empty; provide 32+ random chars")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}
	if len(secret) < 32 {
		logger.Warn("token secret is short; 32+ chars recommended", zap.Int("length", len(secret)))
	}

	hashKey := sha256.Sum256([]byte("hash:" + secret))
	blockKey := sha256.Sum256([]byte("block:" + secret))

	codec := securecookie.New(hashKey[:], blockKey[:])
	codec.SetSerializer(securecookie.JSONEncoder{})
	codec.MaxAge(int(ttl.Seconds()) + 1)

	m := &TokenManager{
		codec: codec,
		ttl:   ttl,
		log:   logger,
		now:   time.Now,
	}
	m.SetAdminEmails(adminEmails)
	return m, nil
}

// TTL returns how long issued tokens stay valid.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// SetAdminEmails replaces the set of emails allowed to sign in through Firebase.
func (m *TokenManager) SetAdminEmails(emails []string) {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = NormalizeEmail(e); e != "" {
			set[e] = struct{}{}
		}
	}
	m.mu.Lock()
	m.admins = set
	m.mu.Unlock()
}

// IsAdminEmail reports whether email is on the admin list.
func (m *TokenManager) IsAdminEmail(email string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.admins[NormalizeEmail(email)]
	return ok
}

// Issue returns a token for id and the time it expires.
func (m *TokenManager) Issue(id Identity) (string, time.Time, error) {
	id.Email = NormalizeEmail(id.Email)
	id.IssuedAt = m.now().UTC()
	tok, err := m.codec.Encode(tokenName, id)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("encode token: %w", err)
	}
	return tok, id.IssuedAt.Add(m.ttl), nil
}

// Parse verifies tok and returns the Identity inside it.
func (m *TokenManager) Parse(tok string) (Identity, error) {
	var id Identity
	if err := m.codec.Decode(tokenName, tok, &id); err != nil {
		return Identity{}, ErrInvalidToken
	}
	if id.Email == "" || m.now().After(id.IssuedAt.Add(m.ttl)) {
		return Identity{}, ErrInvalidToken
	}
	return id, nil
}

// authorized decides whether a verified identity may still act as admin.
// Firebase identities are re-checked against the admin list so removing an
// email revokes its outstanding tokens.
func (m *TokenManager) authorized(id Identity) bool {
	if id.Method == MethodFirebase {
		return m.IsAdminEmail(id.Email)
	}
	return true
}

// RequireAdmin rejects requests without a valid admin token: 401 when the
// token is missing or invalid, 403 when it no longer belongs to an admin.
func (m *TokenManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentAdmin(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		tok, err := BearerToken(r)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="prepboard"`)
			jsonio.Error(w, http.StatusUnauthorized, jsonio.CodeUnauthorized, err.Error())
			return
		}
		id, err := m.Parse(tok)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="prepboard", error="invalid_token"`)
			jsonio.Error(w, http.StatusUnauthorized, jsonio.CodeUnauthorized, err.Error())
			return
		}
		if !m.authorized(id) {
			m.log.Warn("token holder is not an admin",
				zap.String("email", id.Email),
				zap.String("path", r.URL.Path))
			jsonio.Error(w, http.StatusForbidden, jsonio.CodeForbidden, "admin access required")
			return
		}
		next.ServeHTTP(w, withIdentity(r, id))
	})
}

// BearerToken extracts the token from the Authorization header.
func BearerToken(r *http.Request) (string, error) {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	if h == "" {
		return "", ErrNoToken
	}
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(tok) == "" {
		return "", ErrNoToken
	}
	return strings.TrimSpace(tok), nil
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

type ctxKey struct{}

// CurrentAdmin returns the identity attached by RequireAdmin.
func CurrentAdmin(r *http.Request) (Identity, bool) {
	id, ok := r.Context().Value(ctxKey{}).(Identity)
	return id, ok
}

func withIdentity(r *http.Request, id Identity) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))
}

// WithTestAdmin attaches an admin identity directly, bypassing the token.
// Only for tests.
func WithTestAdmin(r *http.Request, email string) *http.Request {
	return withIdentity(r, Identity{Email: NormalizeEmail(email), Method: MethodPassword, IssuedAt: time.Now().UTC()})
}
