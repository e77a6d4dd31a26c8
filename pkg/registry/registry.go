// Package registry tracks the node kinds a FlowDeck process can run and
// the capabilities attached to each kind.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/protocol"
)

// ErrKindNotRegistered indicates no producer factory is registered for a
// node kind.
var ErrKindNotRegistered = errors.New("node kind not registered")

// Registry maps node kinds to producer factories and context formatters.
// Registration happens during startup wiring; lookups afterwards are
// read-only, so access is not synchronized.
type Registry struct {
	logger            *slog.Logger
	producerFactories map[models.NodeKind]protocol.ProducerFactory
	formatters        map[models.NodeKind]protocol.Formatter
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:            log,
		producerFactories: make(map[models.NodeKind]protocol.ProducerFactory),
		formatters:        make(map[models.NodeKind]protocol.Formatter),
	}
}

func (r *Registry) RegisterProducer(factory protocol.ProducerFactory) {
	r.producerFactories[factory.Kind()] = factory
}

// CreateProducer builds a producer for the node from the factory
// registered for its kind.
func (r *Registry) CreateProducer(ctx context.Context, node *models.CanvasNode) (protocol.Producer, error) {
	factory, ok := r.producerFactories[node.Kind]
	if !ok {
		return nil, fmt.Errorf("node kind '%s': %w", node.Kind, ErrKindNotRegistered)
	}

	return factory.Create(ctx, node.ID, node.Params)
}

// KindInfo describes one registered node kind for discovery endpoints.
type KindInfo struct {
	Kind        models.NodeKind `json:"kind"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Schema      map[string]any  `json:"schema"`
}

// Kinds returns metadata for every registered node kind, sorted by kind.
func (r *Registry) Kinds() []KindInfo {
	kinds := make([]KindInfo, 0, len(r.producerFactories))
	for _, factory := range r.producerFactories {
		kinds = append(kinds, KindInfo{
			Kind:        factory.Kind(),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	sort.Slice(kinds, func(i, j int) bool {
		return kinds[i].Kind < kinds[j].Kind
	})

	return kinds
}

// Schema returns the parameter schema for a node kind.
func (r *Registry) Schema(kind models.NodeKind) (map[string]any, error) {
	factory, ok := r.producerFactories[kind]
	if !ok {
		return nil, fmt.Errorf("node kind '%s': %w", kind, ErrKindNotRegistered)
	}

	return factory.Schema(), nil
}

// ValidateParams checks node parameters against the kind's JSON schema.
func (r *Registry) ValidateParams(kind models.NodeKind, params map[string]any) error {
	factory, ok := r.producerFactories[kind]
	if !ok {
		return fmt.Errorf("node kind '%s': %w", kind, ErrKindNotRegistered)
	}

	if params == nil {
		params = map[string]any{}
	}

	schemaLoader := gojsonschema.NewGoLoader(factory.Schema())
	dataLoader := gojsonschema.NewGoLoader(params)

	result, err := gojsonschema.Validate(schemaLoader, dataLoader)
	if err != nil {
		return err
	}

	if !result.Valid() {
		var errs []string
		for _, resultError := range result.Errors() {
			errs = append(errs, resultError.String())
		}

		return fmt.Errorf("params validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
