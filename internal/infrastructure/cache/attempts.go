package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/retail/storefront/internal/domain/shared"
)

// AuthAttemptKey is the attempt counter key for sign-in posts from one client
func AuthAttemptKey(clientIP string) string {
	return "auth:" + clientIP
}

// InMemoryAttemptLimiter counts attempts in fixed windows held in a map.
// Stale windows are swept in the background until Stop.
type InMemoryAttemptLimiter struct {
	mu      sync.Mutex
	windows map[string]*attemptWindow
	limit   int
	window  time.Duration
	now     func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

type attemptWindow struct {
	count   int
	started time.Time
}

// NewInMemoryAttemptLimiter allows limit attempts per key per window
func NewInMemoryAttemptLimiter(limit int, window time.Duration) *InMemoryAttemptLimiter {
	l := &InMemoryAttemptLimiter{
		windows: make(map[string]*attemptWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go l.sweep(2 * window)
	return l
}

// Hit counts one attempt for key
func (l *InMemoryAttemptLimiter) Hit(_ context.Context, key string) (shared.Attempt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.started) >= l.window {
		w = &attemptWindow{started: now}
		l.windows[key] = w
	}
	w.count++
	return verdict(l.limit, w.count, w.started.Add(l.window).Sub(now)), nil
}

// Stop ends the background sweep
func (l *InMemoryAttemptLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *InMemoryAttemptLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			l.mu.Lock()
			now := l.now()
			for key, w := range l.windows {
				if now.Sub(w.started) >= l.window {
					delete(l.windows, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// RedisAttemptLimiter shares attempt counters between instances. The window
// starts at the first attempt and expires with the key.
type RedisAttemptLimiter struct {
	client    redis.UniversalClient
	keyPrefix string
	limit     int
	window    time.Duration
}

// NewRedisAttemptLimiter creates a limiter on an existing client
func NewRedisAttemptLimiter(client redis.UniversalClient, keyPrefix string, limit int, window time.Duration) *RedisAttemptLimiter {
	if keyPrefix == "" {
		keyPrefix = "storefront:attempts:"
	}
	return &RedisAttemptLimiter{client: client, keyPrefix: keyPrefix, limit: limit, window: window}
}

// Hit counts one attempt for key
func (l *RedisAttemptLimiter) Hit(ctx context.Context, key string) (shared.Attempt, error) {
	k := l.keyPrefix + key

	count, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return shared.Attempt{}, fmt.Errorf("failed to count attempt: %w", err)
	}
	if count == 1 {
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return shared.Attempt{}, fmt.Errorf("failed to start attempt window: %w", err)
		}
	}

	ttl, err := l.client.PTTL(ctx, k).Result()
	if err != nil {
		return shared.Attempt{}, fmt.Errorf("failed to read attempt window: %w", err)
	}
	if ttl < 0 {
		// counter lost its expiry; restart the window
		if err := l.client.PExpire(ctx, k, l.window).Err(); err != nil {
			return shared.Attempt{}, fmt.Errorf("failed to start attempt window: %w", err)
		}
		ttl = l.window
	}
	return verdict(l.limit, int(count), ttl), nil
}

func verdict(limit, count int, resetIn time.Duration) shared.Attempt {
	a := shared.Attempt{
		Allowed:   count <= limit,
		Limit:     limit,
		Remaining: max(limit-count, 0),
	}
	if !a.Allowed {
		a.RetryAfter = resetIn
	}
	return a
}

var (
	_ shared.AttemptLimiter = (*InMemoryAttemptLimiter)(nil)
	_ shared.AttemptLimiter = (*RedisAttemptLimiter)(nil)
)
