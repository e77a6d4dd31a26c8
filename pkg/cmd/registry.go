// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/flowdeck/flowdeck/pkg/cache"
	"github.com/flowdeck/flowdeck/pkg/producers/prompt"
	"github.com/flowdeck/flowdeck/pkg/registry"
)

// NewRegistry creates a producer registry with the built-in kinds wired to
// the given cache and LLM settings.
func NewRegistry(log *slog.Logger, store cache.Cache, llm prompt.Config) *registry.Registry {
	reg := registry.NewRegistry(log)
	reg.RegisterDefaults(store, llm)

	return reg
}
