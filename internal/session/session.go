// Package session implements server-side sessions keyed by a signed cookie.
//
// The only datum persisted for a session is the account ID. Every request
// re-resolves the account from the user store, so deleting an account
// invalidates its sessions immediately.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/inkpad/inkpad/pkg/models"
	"github.com/inkpad/inkpad/pkg/store"
)

// DefaultTTL is the session lifetime when none is configured.
const DefaultTTL = 24 * time.Hour

// DefaultCookieName is the session cookie name when none is configured.
const DefaultCookieName = "inkpad_session"

// ErrUnauthenticated is returned by Resolve whenever a request cannot be
// tied to a live account: missing cookie, bad signature, expired or unknown
// session, or a session reference that no longer resolves. Callers must not
// distinguish these cases.
var ErrUnauthenticated = errors.New("not authenticated")

// Data is the serialized session payload: the account ID reference plus
// issue time. Nothing else is cached across requests.
type Data struct {
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Config configures the session manager.
type Config struct {
	// Secret signs session cookies. Must be at least 32 characters.
	// Can also be set via the INKPAD_SESSION_SECRET environment variable.
	Secret string `mapstructure:"secret" yaml:"secret"`

	// TTL is the session lifetime. Default: 24h.
	TTL time.Duration `mapstructure:"ttl" yaml:"ttl"`

	// CookieName is the session cookie name. Default: inkpad_session.
	CookieName string `mapstructure:"cookie_name" yaml:"cookie_name"`

	// Secure marks the session cookie as HTTPS-only.
	Secure bool `mapstructure:"secure" yaml:"secure"`

	// Store selects the session store backend: memory or redis.
	Store string `mapstructure:"store" yaml:"store"`

	// Redis configures the redis backend.
	Redis RedisConfig `mapstructure:"redis" yaml:"redis"`
}

// Manager issues, resolves, and destroys sessions. It is the session codec:
// Create serializes a principal down to its account ID, Resolve deserializes
// the reference back into a full account.
type Manager struct {
	sessions   Store
	users      store.UserStore
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
}

// NewManager creates a session manager backed by the given session store and
// user store.
func NewManager(cfg Config, sessions Store, users store.UserStore) (*Manager, error) {
	if len(cfg.Secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 characters")
	}
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	return &Manager{
		sessions:   sessions,
		users:      users,
		secret:     []byte(cfg.Secret),
		ttl:        cfg.TTL,
		cookieName: cfg.CookieName,
		secure:     cfg.Secure,
	}, nil
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Create establishes a new session for the user and sets the signed session
// cookie on the response.
func (m *Manager) Create(ctx context.Context, w http.ResponseWriter, user *models.User) error {
	sid := uuid.New().String()
	data := Data{
		UserID:    user.ID,
		CreatedAt: time.Now().UTC(),
	}

	if err := m.sessions.Save(ctx, sid, data, m.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    m.sign(sid),
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Resolve reconstructs the authenticated account for the request. Any
// failure along the chain yields ErrUnauthenticated; an unresolvable account
// reference also destroys the dangling session so it cannot be retried.
func (m *Manager) Resolve(ctx context.Context, r *http.Request) (*models.User, error) {
	sid, ok := m.sessionID(r)
	if !ok {
		return nil, ErrUnauthenticated
	}

	data, err := m.sessions.Load(ctx, sid)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	user, err := m.users.GetUserByID(ctx, data.UserID)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			// Account deleted since the session was issued. Fail closed.
			_ = m.sessions.Delete(ctx, sid)
			return nil, ErrUnauthenticated
		}
		return nil, err
	}

	return user, nil
}

// Destroy removes the request's session from the store and clears the
// cookie. Destroying an already-destroyed session is not an error.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	if sid, ok := m.sessionID(r); ok {
		if err := m.sessions.Delete(ctx, sid); err != nil {
			return fmt.Errorf("failed to destroy session: %w", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// sessionID extracts and authenticates the session ID from the request cookie.
func (m *Manager) sessionID(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	return m.verify(cookie.Value)
}

// sign produces the cookie value: the session ID followed by an HMAC-SHA256
// tag over it, base64url encoded.
func (m *Manager) sign(sid string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sid))
	tag := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return sid + "." + tag
}

// verify checks the cookie value's signature and returns the session ID.
func (m *Manager) verify(value string) (string, bool) {
	sid, tag, ok := strings.Cut(value, ".")
	if !ok || sid == "" {
		return "", false
	}

	want, err := base64.RawURLEncoding.DecodeString(tag)
	if err != nil {
		return "", false
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(sid))
	if !hmac.Equal(mac.Sum(nil), want) {
		return "", false
	}
	return sid, true
}
