// Package cache holds the storefront's server-side caches: backend
// collections keyed per user, and the in-flight guards used by checkout.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const defaultCleanupInterval = time.Minute

// LookupObserver receives hit/miss notifications.
type LookupObserver interface {
	ObserveCacheLookup(hit bool)
}

// Collections caches backend collections by key until they expire or are
// invalidated. A load that was in flight when its key was invalidated is
// returned to its callers but not stored.
type Collections struct {
	mu        sync.Mutex
	entries   map[string]*entry
	loading   map[string]map[*pendingLoad]struct{}
	group     singleflight.Group
	ttl       time.Duration
	logger    *zap.Logger
	observer  LookupObserver
	stopCh    chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

type entry struct {
	value     any
	expiresAt time.Time
}

func (e *entry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// pendingLoad is one running backend load; stale once its key is invalidated
type pendingLoad struct {
	key   string
	stale bool
}

// Option configures Collections
type Option func(*Collections)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Collections) {
		c.logger = logger
	}
}

// WithObserver reports lookups to o
func WithObserver(o LookupObserver) Option {
	return func(c *Collections) {
		c.observer = o
	}
}

// NewCollections creates a cache whose entries live for ttl and starts the
// expiry sweeper. Call Close to stop it.
func NewCollections(ttl time.Duration, opts ...Option) *Collections {
	c := &Collections{
		entries: make(map[string]*entry),
		loading: make(map[string]map[*pendingLoad]struct{}),
		ttl:     ttl,
		logger:  zap.NewNop(),
		stopCh:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

// GetOrLoad returns the cached value under key, calling load on a miss.
// Concurrent misses for the same key share one load, which runs without the
// caller's cancellation so that one departing caller cannot fail the others.
// Each caller stops waiting when its own ctx is done. Load errors are not
// cached.
func GetOrLoad[T any](ctx context.Context, c *Collections, key string, load func(context.Context) (T, error)) (T, error) {
	var zero T
	if v, ok := c.lookup(key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(key, func() (any, error) {
		p := c.begin(key)
		loaded, err := load(detached)
		c.finish(p, loaded, err)
		if err != nil {
			return nil, err
		}
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(T)
		return v, nil
	}
}

// Invalidate drops the given keys so the next read refetches them.
func (c *Collections) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, key := range keys {
		c.dropLocked(key)
	}
	if len(keys) > 0 {
		c.logger.Debug("Invalidated cached collections", zap.Strings("keys", keys))
	}
}

// InvalidatePrefix drops every cached or loading key beginning with prefix.
func (c *Collections) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			c.dropLocked(key)
		}
	}
	for key := range c.loading {
		if strings.HasPrefix(key, prefix) {
			c.dropLocked(key)
		}
	}
	c.logger.Debug("Invalidated cached collections by prefix", zap.String("prefix", prefix))
}

// Len returns the number of stored entries, expired ones included.
func (c *Collections) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Close stops the sweeper. Safe to call more than once.
func (c *Collections) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.wg.Wait()
	})
	return nil
}

func (c *Collections) lookup(key string) (any, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok && e.isExpired(time.Now()) {
		delete(c.entries, key)
		ok = false
	}
	c.mu.Unlock()

	if c.observer != nil {
		c.observer.ObserveCacheLookup(ok)
	}
	if !ok {
		return nil, false
	}
	return e.value, true
}

// dropLocked removes key's entry and marks its running loads stale.
// Callers hold c.mu.
func (c *Collections) dropLocked(key string) {
	delete(c.entries, key)
	for p := range c.loading[key] {
		p.stale = true
	}
	c.group.Forget(key)
}

func (c *Collections) begin(key string) *pendingLoad {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := &pendingLoad{key: key}
	if c.loading[key] == nil {
		c.loading[key] = make(map[*pendingLoad]struct{})
	}
	c.loading[key][p] = struct{}{}
	return p
}

// finish deregisters p and stores value unless the load failed or went stale
func (c *Collections) finish(p *pendingLoad, value any, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.loading[p.key], p)
	if len(c.loading[p.key]) == 0 {
		delete(c.loading, p.key)
	}
	if err != nil || p.stale {
		return
	}
	c.entries[p.key] = &entry{value: value, expiresAt: time.Now().Add(c.ttl)}
}

func (c *Collections) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *Collections) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, e := range c.entries {
		if e.isExpired(now) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int("removed", removed))
	}
}
