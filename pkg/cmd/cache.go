package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/flowdeck/flowdeck/pkg/cache"
)

// NewCache creates the fetch output cache. An empty URL disables caching;
// every lookup misses and every store is dropped.
func NewCache(ctx context.Context, logger *slog.Logger, redisURL string) cache.Cache {
	if redisURL == "" {
		return cache.NewNoopCache()
	}

	store, err := cache.NewRedisCache(ctx, redisURL, logger)
	if err != nil {
		panic(fmt.Errorf("failed to connect to Redis cache: %w", err))
	}

	return store
}
