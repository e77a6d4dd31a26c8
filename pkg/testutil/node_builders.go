// Package testutil provides test data builders and utilities for testing.
package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// CreateTestNode creates a test CanvasNode with default values that can be overridden.
func CreateTestNode(overrides ...func(*models.CanvasNode)) *models.CanvasNode {
	now := time.Now().UTC()

	node := &models.CanvasNode{
		ID:        uuid.New().String(),
		Kind:      models.KindFetch,
		Name:      "Test Node",
		Params:    map[string]any{},
		Status:    models.RunStatusIdle,
		PositionX: 100,
		PositionY: 200,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, override := range overrides {
		override(node)
	}

	return node
}

// WithID sets the node ID.
func WithID(id string) func(*models.CanvasNode) {
	return func(n *models.CanvasNode) {
		n.ID = id
	}
}

// WithKind sets the node kind.
func WithKind(kind models.NodeKind) func(*models.CanvasNode) {
	return func(n *models.CanvasNode) {
		n.Kind = kind
	}
}

// WithName sets the node name.
func WithName(name string) func(*models.CanvasNode) {
	return func(n *models.CanvasNode) {
		n.Name = name
	}
}

// WithParams sets the node params.
func WithParams(params map[string]any) func(*models.CanvasNode) {
	return func(n *models.CanvasNode) {
		n.Params = params
	}
}

// WithPosition sets the node position.
func WithPosition(x, y int) func(*models.CanvasNode) {
	return func(n *models.CanvasNode) {
		n.PositionX = x
		n.PositionY = y
	}
}

// WithStatus sets the node run status.
func WithStatus(status models.RunStatus) func(*models.CanvasNode) {
	return func(n *models.CanvasNode) {
		n.Status = status
	}
}

// CreateTestRecord creates an output record for the given node.
func CreateTestRecord(nodeID, content string) models.OutputRecord {
	return models.OutputRecord{
		NodeID:     nodeID,
		NodeKind:   models.KindFetch,
		Content:    content,
		ProducedAt: time.Now().UTC(),
	}
}

// CreateTestConnection creates a connection between two nodes.
func CreateTestConnection(sourceNodeID, targetNodeID string) models.Connection {
	return models.Connection{
		ID:           uuid.New().String(),
		SourceNodeID: sourceNodeID,
		TargetNodeID: targetNodeID,
	}
}
