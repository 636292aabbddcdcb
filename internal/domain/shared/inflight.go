package shared

import (
	"context"
	"time"
)

// InFlightGuard grants at most one holder per key at a time.
// Acquire returns ok=false when the key is already held; the returned token
// must be passed to Release. Holds expire after ttl.
type InFlightGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Release(ctx context.Context, key, token string) error
}

// Attempt is the verdict for one counted attempt
type Attempt struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// AttemptLimiter counts attempts per key over a fixed window
type AttemptLimiter interface {
	Hit(ctx context.Context, key string) (Attempt, error)
}
