// Package protocol defines the interfaces and contracts for pluggable
// producers, the units that compute a node's output on a canvas.
package protocol

import (
	"context"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// ProducerResult is what a producer run yields: the content to publish as
// the node's output plus an optional short label and free-form metadata.
type ProducerResult struct {
	Content string         `json:"content"`
	Label   string         `json:"label,omitempty"`
	Meta    map[string]any `json:"meta,omitempty"`
}

// Producer computes a node's output from the outputs of its connected
// upstream nodes. Implementations are created per node and may keep
// node-scoped state such as parsed parameters.
type Producer interface {
	// Kind returns the node kind this producer serves
	Kind() models.NodeKind

	// Produce computes the node's next output. The inputs slice carries the
	// resolved upstream outputs in connection creation order; it may be
	// empty for nodes with no connected sources.
	Produce(ctx context.Context, inputs []models.OutputRecord) (*ProducerResult, error)
}

// ProducerFactory creates producer instances and provides metadata about
// the node kind it serves.
type ProducerFactory interface {
	// Create creates a producer for one node with the given parameters
	Create(ctx context.Context, nodeID string, params map[string]any) (Producer, error)

	// Kind returns the node kind this factory serves
	Kind() models.NodeKind

	// Name returns the human-readable name for this node kind
	Name() string

	// Description returns a description of what nodes of this kind do
	Description() string

	// Schema returns the JSON schema for the node kind's parameters
	Schema() map[string]any
}
