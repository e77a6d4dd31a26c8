// Package prompt provides the prompt node: it runs a chat completion over
// the node's prompt plus the formatted outputs of its connected sources.
package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/protocol"
)

const defaultSystemPrompt = "You are a helpful assistant."

// Config carries the server-level LLM connection settings shared by all
// prompt producers. BaseURL may point at any OpenAI-compatible server.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
}

// PromptProducer implements the Producer interface for the prompt kind.
type PromptProducer struct {
	id     string
	config PromptConfig
	client *openai.Client
	format protocol.Formatter
}

// PromptConfig defines the configuration for prompt nodes.
type PromptConfig struct {
	Prompt      string  `json:"prompt"`
	Model       string  `json:"model"`
	System      string  `json:"system"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// NewPromptProducer creates a prompt producer for one node. Node params
// override the server-level model; the formatter renders upstream records
// into the context block.
func NewPromptProducer(id string, params map[string]any, serverConfig Config, format protocol.Formatter) (*PromptProducer, error) {
	config := PromptConfig{
		Model:  serverConfig.Model,
		System: defaultSystemPrompt,
	}

	if prompt, ok := params["prompt"].(string); ok && prompt != "" {
		config.Prompt = prompt
	} else {
		return nil, errors.New("missing required field 'prompt'")
	}

	if model, ok := params["model"].(string); ok && model != "" {
		config.Model = model
	}

	if system, ok := params["system"].(string); ok && system != "" {
		config.System = system
	}

	if temperature, ok := params["temperature"].(float64); ok {
		config.Temperature = float32(temperature)
	}

	if maxTokens, ok := params["max_tokens"].(float64); ok {
		config.MaxTokens = int(maxTokens)
	}

	clientConfig := openai.DefaultConfig(serverConfig.APIKey)
	if serverConfig.BaseURL != "" {
		clientConfig.BaseURL = serverConfig.BaseURL
	}

	return &PromptProducer{
		id:     id,
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
		format: format,
	}, nil
}

// Kind returns the node kind this producer serves.
func (p *PromptProducer) Kind() models.NodeKind {
	return models.KindPrompt
}

// Produce assembles the upstream records into a context block, runs the
// chat completion, and returns the first choice's content labelled with
// the model name.
func (p *PromptProducer) Produce(ctx context.Context, inputs []models.OutputRecord) (*protocol.ProducerResult, error) {
	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: p.config.System},
			{Role: openai.ChatMessageRoleUser, Content: p.userMessage(inputs)},
		},
	}

	if p.config.Temperature > 0 {
		req.Temperature = p.config.Temperature
	}

	if p.config.MaxTokens > 0 {
		req.MaxTokens = p.config.MaxTokens
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return &protocol.ProducerResult{
		Content: resp.Choices[0].Message.Content,
		Label:   p.config.Model,
		Meta: map[string]any{
			"finish_reason": string(resp.Choices[0].FinishReason),
		},
	}, nil
}

// userMessage prepends the formatted upstream outputs to the node's
// prompt. Records are rendered by the kind formatter and separated so the
// model can tell one source from the next.
func (p *PromptProducer) userMessage(inputs []models.OutputRecord) string {
	if len(inputs) == 0 {
		return p.config.Prompt
	}

	blocks := make([]string, 0, len(inputs))
	for _, record := range inputs {
		blocks = append(blocks, p.format(record))
	}

	return "Context:\n\n" + strings.Join(blocks, "\n\n---\n\n") + "\n\n" + p.config.Prompt
}
