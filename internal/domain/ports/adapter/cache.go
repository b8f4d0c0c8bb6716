package adapter

import (
	"context"
	"time"
)

// Cache is a small read-through cache used for hot directory reads.
// A miss is reported as ("", false, nil); errors are reserved for the
// backend being unreachable.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Locker provides best-effort mutual exclusion across instances, used by
// the background schedulers so only one replica runs a sweep at a time.
type Locker interface {
	// Acquire returns a release func when the lock was taken, or ok=false
	// when another holder has it.
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

// RateLimiter bounds how often a key may pass within a window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
