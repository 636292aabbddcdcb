package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/retail/storefront/internal/domain/shared"
)

// InMemoryInFlightGuard implements InFlightGuard with a map.
// Suitable for single-instance deployments and tests.
type InMemoryInFlightGuard struct {
	mu    sync.Mutex
	holds map[string]hold
}

type hold struct {
	token     string
	expiresAt time.Time
}

// NewInMemoryInFlightGuard creates an empty guard
func NewInMemoryInFlightGuard() *InMemoryInFlightGuard {
	return &InMemoryInFlightGuard{holds: make(map[string]hold)}
}

// Acquire takes the key unless a live hold exists. Expired holds left by
// callers that never released are dropped on the way.
func (g *InMemoryInFlightGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := time.Now()
	for k, h := range g.holds {
		if !now.Before(h.expiresAt) {
			delete(g.holds, k)
		}
	}
	if _, exists := g.holds[key]; exists {
		return "", false, nil
	}

	token := uuid.NewString()
	g.holds[key] = hold{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release frees the key if token still owns it
func (g *InMemoryInFlightGuard) Release(ctx context.Context, key, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if h, exists := g.holds[key]; exists && h.token == token {
		delete(g.holds, key)
	}
	return nil
}

// RedisInFlightGuard implements InFlightGuard on Redis so that several
// storefront instances share one view of in-flight work.
type RedisInFlightGuard struct {
	client    redis.UniversalClient
	keyPrefix string
}

// Release deletes the key only while it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// NewRedisInFlightGuard creates a guard on an existing client
func NewRedisInFlightGuard(client redis.UniversalClient, keyPrefix string) *RedisInFlightGuard {
	if keyPrefix == "" {
		keyPrefix = "storefront:inflight:"
	}
	return &RedisInFlightGuard{client: client, keyPrefix: keyPrefix}
}

// Acquire uses SET NX with a TTL so a crashed holder cannot block the key forever
func (g *RedisInFlightGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, g.keyPrefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire in-flight key: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the key if token still owns it
func (g *RedisInFlightGuard) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, g.client, []string{g.keyPrefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release in-flight key: %w", err)
	}
	return nil
}

var (
	_ shared.InFlightGuard = (*InMemoryInFlightGuard)(nil)
	_ shared.InFlightGuard = (*RedisInFlightGuard)(nil)
)
