package cache

import (
	"context"
	"time"
)

// NoopCache ignores writes and misses every read. It stands in when no
// redis URL is configured.
type NoopCache struct{}

func NewNoopCache() *NoopCache {
	return &NoopCache{}
}

func (c *NoopCache) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

func (c *NoopCache) Set(_ context.Context, _, _ string, _ time.Duration) error {
	return nil
}

func (c *NoopCache) Close() error {
	return nil
}
