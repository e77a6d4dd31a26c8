// Package cache provides the read-through cache used by producers that
// reuse recent results, with a redis implementation and an in-process
// no-op fallback.
package cache

import (
	"context"
	"time"
)

// Cache stores producer results keyed by arbitrary strings. A miss is
// reported with found=false, never as an error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Close() error
}
