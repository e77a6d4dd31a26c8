package prompt

import (
	"context"

	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/protocol"
)

// PromptProducerFactory creates PromptProducer instances.
type PromptProducerFactory struct {
	config Config
	format protocol.Formatter
}

// NewPromptProducerFactory creates the factory for the prompt kind.
func NewPromptProducerFactory(config Config, format protocol.Formatter) protocol.ProducerFactory {
	return &PromptProducerFactory{config: config, format: format}
}

// Create creates a prompt producer for one node.
func (f *PromptProducerFactory) Create(_ context.Context, id string, params map[string]any) (protocol.Producer, error) {
	return NewPromptProducer(id, params, f.config, f.format)
}

// Kind returns the node kind this factory serves.
func (f *PromptProducerFactory) Kind() models.NodeKind {
	return models.KindPrompt
}

// Name returns the human-readable name for the prompt kind.
func (f *PromptProducerFactory) Name() string {
	return "Prompt"
}

// Description returns what prompt nodes do.
func (f *PromptProducerFactory) Description() string {
	return "Runs a chat completion over the prompt plus the outputs of connected nodes"
}

// Schema returns the JSON schema for prompt node parameters.
func (f *PromptProducerFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"prompt": map[string]any{
				"type":        "string",
				"description": "Instruction sent to the model after the assembled context",
				"examples": []string{
					"Summarize the sources above in three bullet points.",
					"Write a title for this article.",
				},
			},
			"model": map[string]any{
				"type":        "string",
				"description": "Model name; defaults to the server-configured model",
			},
			"system": map[string]any{
				"type":        "string",
				"description": "System prompt",
				"default":     defaultSystemPrompt,
			},
			"temperature": map[string]any{
				"type":        "number",
				"description": "Sampling temperature",
				"minimum":     0,
				"maximum":     2,
			},
			"max_tokens": map[string]any{
				"type":        "number",
				"description": "Maximum tokens in the completion",
				"minimum":     1,
			},
		},
		"required": []string{"prompt"},
		"examples": []map[string]any{
			{
				"prompt": "Summarize the scraped pages in one paragraph.",
			},
			{
				"prompt":      "Extract all product names.",
				"model":       "gpt-4o",
				"temperature": 0.2,
			},
		},
	}
}
