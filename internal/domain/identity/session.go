package identity

import (
	"context"
	"slices"
	"time"

	"github.com/retail/storefront/internal/domain/shared"
)

// FlashKind selects the alert style of a flash message
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashWarning FlashKind = "warning"
)

// Flash is a one-shot alert shown on the next rendered page
type Flash struct {
	Kind    FlashKind `json:"kind"`
	Message string    `json:"message"`
}

// Session is the signed-in state of one browser. It is created at login or
// registration, loaded on every request, and destroyed at logout.
type Session struct {
	ID        string    `json:"id"`
	User      User      `json:"user"`
	Token     string    `json:"token"`
	Flashes   []Flash   `json:"flashes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ErrSessionNotFound is returned when a session id is unknown or expired
var ErrSessionNotFound = shared.NewDomainError("SESSION_NOT_FOUND", "Your session has expired. Please sign in again.")

// NewSession starts a session for an authenticated user
func NewSession(id string, user User, token string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		User:      user,
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has outlived its TTL
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// TTL returns the remaining lifetime, never negative
func (s *Session) TTL(now time.Time) time.Duration {
	return max(s.ExpiresAt.Sub(now), 0)
}

// AddFlash queues an alert for the next page
func (s *Session) AddFlash(kind FlashKind, message string) {
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
}

// PopFlashes returns the queued alerts and clears them
func (s *Session) PopFlashes() []Flash {
	out := s.Flashes
	s.Flashes = nil
	return out
}

// Clone returns a copy that shares no mutable state with s
func (s *Session) Clone() *Session {
	c := *s
	c.Flashes = slices.Clone(s.Flashes)
	return &c
}

// SessionStore persists sessions by id
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	// Get returns ErrSessionNotFound for unknown or expired ids
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
