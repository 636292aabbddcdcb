// Package session stores storefront sessions and signs the session cookie.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/retail/storefront/internal/domain/identity"
)

const defaultKeyPrefix = "storefront:session:"

// RedisStore implements identity.SessionStore on Redis. Entries expire with
// the session, so logout and expiry need no sweeper.
type RedisStore struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisStore creates a store using an existing Redis client
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, keyPrefix: defaultKeyPrefix}
}

func (s *RedisStore) key(id string) string {
	return s.keyPrefix + id
}

// Save writes the session with its remaining lifetime as TTL
func (s *RedisStore) Save(ctx context.Context, sess *identity.Session) error {
	ttl := sess.TTL(time.Now())
	if ttl <= 0 {
		return s.Delete(ctx, sess.ID)
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get loads a session by id
func (s *RedisStore) Get(ctx context.Context, id string) (*identity.Session, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, identity.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess identity.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	if sess.IsExpired(time.Now()) {
		return nil, identity.ErrSessionNotFound
	}
	return &sess, nil
}

// Delete removes a session; deleting an unknown id is not an error
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// InMemoryStore implements identity.SessionStore with a map.
// Suitable for single-instance development and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*identity.Session
}

// NewInMemoryStore creates an empty store
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string]*identity.Session)}
}

// Save stores a copy of the session
func (s *InMemoryStore) Save(ctx context.Context, sess *identity.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess.Clone()
	return nil
}

// Get returns a copy of the stored session
func (s *InMemoryStore) Get(ctx context.Context, id string) (*identity.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, identity.ErrSessionNotFound
	}
	if sess.IsExpired(time.Now()) {
		_ = s.Delete(ctx, id)
		return nil, identity.ErrSessionNotFound
	}
	return sess.Clone(), nil
}

// Delete removes a session
func (s *InMemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions (for testing/monitoring)
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var (
	_ identity.SessionStore = (*RedisStore)(nil)
	_ identity.SessionStore = (*InMemoryStore)(nil)
)
