package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retail/storefront/internal/domain/identity"
	"github.com/retail/storefront/internal/infrastructure/config"
)

// Manager owns the session lifecycle: create at sign-in, load per request,
// save after mutation, destroy at sign-out.
type Manager struct {
	store  identity.SessionStore
	codec  *TokenCodec
	ttl    time.Duration
	cookie config.CookieConfig
	name   string
}

// NewManager creates a manager over the given store
func NewManager(store identity.SessionStore, sessCfg config.SessionConfig, cookieCfg config.CookieConfig) *Manager {
	return &Manager{
		store:  store,
		codec:  NewTokenCodec(sessCfg.Secret, sessCfg.Issuer),
		ttl:    sessCfg.TTL,
		cookie: cookieCfg,
		name:   sessCfg.CookieName,
	}
}

// CookieName returns the name of the session cookie
func (m *Manager) CookieName() string {
	return m.name
}

// Create starts and persists a session for an authenticated user
func (m *Manager) Create(ctx context.Context, user identity.User, token string) (*identity.Session, error) {
	sess := identity.NewSession(uuid.NewString(), user, token, m.ttl)
	if err := m.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Load resolves a cookie value to its stored session. A cookie whose role no
// longer matches the stored user is treated as unknown.
func (m *Manager) Load(ctx context.Context, cookieValue string) (*identity.Session, error) {
	claims, err := m.codec.Decode(cookieValue)
	if err != nil {
		return nil, err
	}
	sess, err := m.store.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if sess.User.Role != claims.Role || sess.User.ID != claims.UserID() {
		return nil, identity.ErrSessionNotFound
	}
	return sess, nil
}

// Save persists changes such as queued flashes
func (m *Manager) Save(ctx context.Context, sess *identity.Session) error {
	return m.store.Save(ctx, sess)
}

// Destroy removes the session from the store
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return m.store.Delete(ctx, id)
}

// IsMissing reports whether err means the visitor simply has no usable session
func IsMissing(err error) bool {
	return errors.Is(err, identity.ErrSessionNotFound) ||
		errors.Is(err, ErrInvalidToken) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrInvalidClaims) ||
		errors.Is(err, ErrMissingSessionID)
}

// Cookie builds the signed session cookie
func (m *Manager) Cookie(sess *identity.Session) (*http.Cookie, error) {
	value, err := m.codec.Encode(sess)
	if err != nil {
		return nil, fmt.Errorf("failed to sign session cookie: %w", err)
	}
	c := m.baseCookie()
	c.Value = value
	c.Expires = sess.ExpiresAt
	c.MaxAge = int(sess.TTL(time.Now()).Seconds())
	return c, nil
}

// ExpiredCookie builds a cookie that makes the browser drop the session
func (m *Manager) ExpiredCookie() *http.Cookie {
	c := m.baseCookie()
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	return c
}

func (m *Manager) baseCookie() *http.Cookie {
	return &http.Cookie{
		Name:     m.name,
		Path:     m.cookie.Path,
		Domain:   m.cookie.Domain,
		Secure:   m.cookie.Secure,
		HttpOnly: true,
		SameSite: parseSameSite(m.cookie.SameSite),
	}
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
