package fetch

import (
	"context"

	"github.com/flowdeck/flowdeck/pkg/cache"
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/protocol"
)

// FetchProducerFactory creates FetchProducer instances.
type FetchProducerFactory struct {
	store cache.Cache
}

// NewFetchProducerFactory creates the factory for the fetch kind. The
// cache backs the optional read-through keyed by URL.
func NewFetchProducerFactory(store cache.Cache) protocol.ProducerFactory {
	return &FetchProducerFactory{store: store}
}

// Create creates a fetch producer for one node.
func (f *FetchProducerFactory) Create(_ context.Context, id string, params map[string]any) (protocol.Producer, error) {
	return NewFetchProducer(id, params, f.store)
}

// Kind returns the node kind this factory serves.
func (f *FetchProducerFactory) Kind() models.NodeKind {
	return models.KindFetch
}

// Name returns the human-readable name for the fetch kind.
func (f *FetchProducerFactory) Name() string {
	return "Fetch"
}

// Description returns what fetch nodes do.
func (f *FetchProducerFactory) Description() string {
	return "Downloads a URL and publishes the page text as the node's output"
}

// Schema returns the JSON schema for fetch node parameters.
func (f *FetchProducerFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "URL to fetch",
				"examples": []string{
					"https://example.com/feed",
					"https://news.ycombinator.com",
				},
			},
			"timeout": map[string]any{
				"type":        "number",
				"description": "Request timeout in seconds",
				"default":     30,
				"minimum":     1,
				"maximum":     300,
			},
			"retries": map[string]any{
				"type":        "number",
				"description": "Number of retries after a failed attempt",
				"default":     2,
				"minimum":     0,
				"maximum":     10,
			},
			"retry_delay": map[string]any{
				"type":        "number",
				"description": "Delay between retries in seconds",
				"default":     1,
				"minimum":     0,
				"maximum":     60,
			},
			"extract_text": map[string]any{
				"type":        "boolean",
				"description": "Extract visible text from HTML responses",
				"default":     true,
			},
			"cache_ttl": map[string]any{
				"type":        "number",
				"description": "Cache fetched content for this many seconds; 0 disables caching",
				"default":     0,
				"minimum":     0,
			},
			"user_agent": map[string]any{
				"type":        "string",
				"description": "User-Agent header sent with the request",
				"default":     defaultUserAgent,
			},
		},
		"required": []string{"url"},
		"examples": []map[string]any{
			{
				"url": "https://example.com/article",
			},
			{
				"url":       "https://example.com/feed",
				"cache_ttl": 300,
				"retries":   3,
			},
		},
	}
}
