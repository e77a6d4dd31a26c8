// Package fetch provides the web fetch node: it downloads a URL and
// publishes the page's text as the node's output.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/flowdeck/flowdeck/pkg/cache"
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/protocol"
)

const defaultUserAgent = "FlowDeck/1.0"

// FetchProducer implements the Producer interface for the fetch kind.
type FetchProducer struct {
	id     string
	config FetchConfig
	store  cache.Cache
	client *http.Client
}

// FetchConfig defines the configuration for fetch nodes.
type FetchConfig struct {
	URL         string `json:"url"`
	Timeout     int    `json:"timeout"`
	Retries     int    `json:"retries"`
	RetryDelay  int    `json:"retry_delay"`
	ExtractText bool   `json:"extract_text"`
	CacheTTL    int    `json:"cache_ttl"`
	UserAgent   string `json:"user_agent"`
}

// NewFetchProducer creates a fetch producer for one node.
func NewFetchProducer(id string, params map[string]any, store cache.Cache) (*FetchProducer, error) {
	config := FetchConfig{
		Timeout:     30,
		Retries:     2,
		RetryDelay:  1,
		ExtractText: true,
		UserAgent:   defaultUserAgent,
	}

	if url, ok := params["url"].(string); ok && url != "" {
		config.URL = url
	} else {
		return nil, errors.New("missing required field 'url'")
	}

	if timeout, ok := params["timeout"].(float64); ok {
		config.Timeout = int(timeout)
	}

	if retries, ok := params["retries"].(float64); ok {
		config.Retries = int(retries)
	}

	if delay, ok := params["retry_delay"].(float64); ok {
		config.RetryDelay = int(delay)
	}

	if extract, ok := params["extract_text"].(bool); ok {
		config.ExtractText = extract
	}

	if ttl, ok := params["cache_ttl"].(float64); ok {
		config.CacheTTL = int(ttl)
	}

	if agent, ok := params["user_agent"].(string); ok && agent != "" {
		config.UserAgent = agent
	}

	return &FetchProducer{
		id:     id,
		config: config,
		store:  store,
		client: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}, nil
}

// Kind returns the node kind this producer serves.
func (p *FetchProducer) Kind() models.NodeKind {
	return models.KindFetch
}

// Produce downloads the configured URL, retrying transient failures, and
// returns the page text labelled with the URL. Fetch nodes are sources:
// upstream inputs are ignored.
func (p *FetchProducer) Produce(ctx context.Context, _ []models.OutputRecord) (*protocol.ProducerResult, error) {
	cacheKey := "fetch:" + p.config.URL

	if p.config.CacheTTL > 0 {
		cached, found, err := p.store.Get(ctx, cacheKey)
		if err == nil && found {
			return &protocol.ProducerResult{
				Content: cached,
				Label:   p.config.URL,
				Meta:    map[string]any{"cache": "hit"},
			}, nil
		}
	}

	var lastErr error

	attempts := 0
	for attempt := 0; attempt <= p.config.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(p.config.RetryDelay) * time.Second):
			}
		}

		attempts++

		content, err := p.fetchOnce(ctx)
		if err == nil {
			if p.config.CacheTTL > 0 {
				_ = p.store.Set(ctx, cacheKey, content, time.Duration(p.config.CacheTTL)*time.Second)
			}

			return &protocol.ProducerResult{
				Content: content,
				Label:   p.config.URL,
			}, nil
		}

		lastErr = err

		// Client errors will not change on retry; only server errors and
		// network failures are retried.
		httpErr := &HTTPError{}
		if errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError {
			break
		}
	}

	return nil, fmt.Errorf("fetch of %s failed after %d attempts: %w", p.config.URL, attempts, lastErr)
}

// HTTPError represents an HTTP error response with its status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

func (p *FetchProducer) fetchOnce(ctx context.Context) (string, error) {
	body, contentType, err := p.performRequest(ctx)
	if err != nil {
		return "", err
	}

	if p.config.ExtractText && strings.Contains(contentType, "text/html") {
		return ExtractText(body), nil
	}

	return body, nil
}

// performRequest executes a single GET request against the configured URL.
func (p *FetchProducer) performRequest(ctx context.Context) (string, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.config.URL, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.config.UserAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return "", "", &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(respBody)),
		}
	}

	return string(respBody), resp.Header.Get("Content-Type"), nil
}
