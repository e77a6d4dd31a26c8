package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/metrics"
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/refresh"
	"github.com/flowdeck/flowdeck/pkg/registry"
)

// CreateNodeRequest contains the data needed to place a node on a canvas.
// The id comes from the client so the canvas UI can wire edges optimistically
// before the server round-trip completes.
type CreateNodeRequest struct {
	ID        string
	Kind      models.NodeKind
	Name      string
	Params    map[string]any
	PositionX int
	PositionY int
}

// UpdateNodeRequest contains the data for updating an existing node. Nil
// fields are left unchanged; a non-nil Params replaces the node's params
// wholesale.
type UpdateNodeRequest struct {
	Name      *string
	Params    map[string]any
	PositionX *int
	PositionY *int
}

// AddNode places a new node on the session's canvas and announces it on the
// bus. Params are validated against the kind's schema when the kind is
// registered; unknown kinds are allowed on the canvas and only fail at run
// time.
func (m *Manager) AddNode(ctx context.Context, sessionID string, req *CreateNodeRequest) (*models.CanvasNode, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, NewSessionError("AddNode", sessionID, req.ID, err)
	}

	if err := m.validateParams(req.Kind, req.Params); err != nil {
		return nil, NewSessionError("AddNode", sessionID, req.ID, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
	}

	now := time.Now().UTC()
	node := &models.CanvasNode{
		ID:        req.ID,
		Kind:      req.Kind,
		Name:      req.Name,
		Params:    req.Params,
		PositionX: req.PositionX,
		PositionY: req.PositionY,
		Status:    models.RunStatusIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if node.Params == nil {
		node.Params = make(map[string]any)
	}

	if expr, ok := node.RefreshCron(); ok {
		if err := refresh.Validate(expr); err != nil {
			return nil, NewSessionError("AddNode", sessionID, req.ID, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		}
	}

	if err := sess.AddNode(node); err != nil {
		return nil, NewSessionError("AddNode", sessionID, req.ID, err)
	}

	if expr, ok := node.RefreshCron(); ok {
		if err := m.scheduler.Schedule(sessionID, node.ID, expr); err != nil {
			m.logger.ErrorContext(ctx, "Failed to schedule node refresh",
				"session_id", sessionID, "node_id", node.ID, "error", err)
		}
	}

	metrics.NodesCreated.Inc()
	m.publish(ctx, sessionID, events.NodeCreated{
		BaseEvent: events.NewBaseEvent(events.NodeCreatedEvent, sessionID),
		NodeID:    node.ID,
		Kind:      node.Kind,
		Name:      node.Name,
	})
	m.logger.InfoContext(ctx, "Node added to canvas",
		"session_id", sessionID, "node_id", node.ID, "kind", node.Kind)

	return node.Clone(), nil
}

// UpdateNode applies the request to an existing node. Kind is immutable;
// replacing params re-validates them and re-syncs the refresh schedule.
func (m *Manager) UpdateNode(ctx context.Context, sessionID, nodeID string, req *UpdateNodeRequest) (*models.CanvasNode, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, NewSessionError("UpdateNode", sessionID, nodeID, err)
	}

	current, err := sess.Node(nodeID)
	if err != nil {
		return nil, NewSessionError("UpdateNode", sessionID, nodeID, err)
	}

	if req.Params != nil {
		if err := m.validateParams(current.Kind, req.Params); err != nil {
			return nil, NewSessionError("UpdateNode", sessionID, nodeID, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
		}

		if expr, ok := req.Params[models.ParamRefreshCron].(string); ok && expr != "" {
			if err := refresh.Validate(expr); err != nil {
				return nil, NewSessionError("UpdateNode", sessionID, nodeID, fmt.Errorf("%w: %v", ErrInvalidRequest, err))
			}
		}
	}

	updated, err := sess.UpdateNode(nodeID, func(node *models.CanvasNode) {
		if req.Name != nil {
			node.Name = *req.Name
		}

		if req.Params != nil {
			node.Params = req.Params
		}

		if req.PositionX != nil {
			node.PositionX = *req.PositionX
		}

		if req.PositionY != nil {
			node.PositionY = *req.PositionY
		}
	})
	if err != nil {
		return nil, NewSessionError("UpdateNode", sessionID, nodeID, err)
	}

	if req.Params != nil {
		if expr, ok := updated.RefreshCron(); ok {
			if err := m.scheduler.Schedule(sessionID, nodeID, expr); err != nil {
				m.logger.ErrorContext(ctx, "Failed to schedule node refresh",
					"session_id", sessionID, "node_id", nodeID, "error", err)
			}
		} else {
			m.scheduler.Unschedule(sessionID, nodeID)
		}
	}

	m.publish(ctx, sessionID, events.NodeUpdated{
		BaseEvent: events.NewBaseEvent(events.NodeUpdatedEvent, sessionID),
		NodeID:    updated.ID,
		Kind:      updated.Kind,
	})
	m.logger.InfoContext(ctx, "Node updated",
		"session_id", sessionID, "node_id", nodeID)

	return updated, nil
}

// RemoveNode drops the node from the canvas along with its output and
// edges, then announces the removal followed by one inputs.invalidated per
// downstream node that was consuming it.
func (m *Manager) RemoveNode(ctx context.Context, sessionID, nodeID string) error {
	sess, err := m.session(sessionID)
	if err != nil {
		return NewSessionError("RemoveNode", sessionID, nodeID, err)
	}

	invalidated, err := sess.RemoveNode(nodeID)
	if err != nil {
		return NewSessionError("RemoveNode", sessionID, nodeID, err)
	}

	m.scheduler.Unschedule(sessionID, nodeID)

	metrics.NodesRemoved.Inc()
	m.publish(ctx, sessionID, events.NodeRemoved{
		BaseEvent: events.NewBaseEvent(events.NodeRemovedEvent, sessionID),
		NodeID:    nodeID,
	})
	m.publishInvalidated(ctx, sessionID, invalidated)
	m.logger.InfoContext(ctx, "Node removed from canvas",
		"session_id", sessionID, "node_id", nodeID)

	return nil
}

// Node returns a copy of one node.
func (m *Manager) Node(sessionID, nodeID string) (*models.CanvasNode, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, NewSessionError("Node", sessionID, nodeID, err)
	}

	node, err := sess.Node(nodeID)
	if err != nil {
		return nil, NewSessionError("Node", sessionID, nodeID, err)
	}

	return node, nil
}

// Nodes returns copies of the session's nodes in creation order.
func (m *Manager) Nodes(sessionID string) ([]*models.CanvasNode, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, NewSessionError("Nodes", sessionID, "", err)
	}

	return sess.Nodes(), nil
}

// validateParams checks params against the kind's registered schema.
// Unregistered kinds pass; the canvas accepts them and only RunNode
// rejects them.
func (m *Manager) validateParams(kind models.NodeKind, params map[string]any) error {
	err := m.registry.ValidateParams(kind, params)
	if err != nil && !errors.Is(err, registry.ErrKindNotRegistered) {
		return err
	}

	return nil
}
