package session

import (
	"context"

	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/metrics"
	"github.com/flowdeck/flowdeck/pkg/models"
)

// ConnectRequest contains the data needed to connect two canvas nodes.
// Handles name the visual ports on the canvas and are stored verbatim.
type ConnectRequest struct {
	SourceNodeID string
	TargetNodeID string
	SourceHandle string
	TargetHandle string
}

// ConnectNodes adds a directed edge between two existing nodes. Connecting
// an already connected pair returns the existing edge with created false
// and emits nothing; duplicate endpoint pairs are absorbed, not stacked.
func (m *Manager) ConnectNodes(ctx context.Context, sessionID string, req *ConnectRequest) (models.Connection, bool, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return models.Connection{}, false, NewSessionError("ConnectNodes", sessionID, "", err)
	}

	conn, created, invalidated, err := sess.Connect(models.Connection{
		SourceNodeID: req.SourceNodeID,
		TargetNodeID: req.TargetNodeID,
		SourceHandle: req.SourceHandle,
		TargetHandle: req.TargetHandle,
	})
	if err != nil {
		return models.Connection{}, false, NewSessionError("ConnectNodes", sessionID, "", err)
	}

	if !created {
		return conn, false, nil
	}

	metrics.EdgesCreated.Inc()
	m.publish(ctx, sessionID, events.EdgeCreated{
		BaseEvent:    events.NewBaseEvent(events.EdgeCreatedEvent, sessionID),
		EdgeID:       conn.ID,
		SourceNodeID: conn.SourceNodeID,
		TargetNodeID: conn.TargetNodeID,
		SourceHandle: conn.SourceHandle,
		TargetHandle: conn.TargetHandle,
	})
	m.publishInvalidated(ctx, sessionID, invalidated)
	m.logger.InfoContext(ctx, "Nodes connected",
		"session_id", sessionID,
		"source_node_id", conn.SourceNodeID,
		"target_node_id", conn.TargetNodeID)

	return conn, true, nil
}

// DisconnectNodes removes the edge joining the endpoints, ignoring handles.
func (m *Manager) DisconnectNodes(ctx context.Context, sessionID, sourceNodeID, targetNodeID string) error {
	sess, err := m.session(sessionID)
	if err != nil {
		return NewSessionError("DisconnectNodes", sessionID, "", err)
	}

	removed, invalidated, err := sess.Disconnect(sourceNodeID, targetNodeID)
	if err != nil {
		return NewSessionError("DisconnectNodes", sessionID, "", err)
	}

	metrics.EdgesRemoved.Inc()
	m.publish(ctx, sessionID, events.EdgeRemoved{
		BaseEvent:    events.NewBaseEvent(events.EdgeRemovedEvent, sessionID),
		EdgeID:       removed.ID,
		SourceNodeID: removed.SourceNodeID,
		TargetNodeID: removed.TargetNodeID,
	})
	m.publishInvalidated(ctx, sessionID, invalidated)
	m.logger.InfoContext(ctx, "Nodes disconnected",
		"session_id", sessionID,
		"source_node_id", sourceNodeID,
		"target_node_id", targetNodeID)

	return nil
}

// Edges returns the session's edges in creation order.
func (m *Manager) Edges(sessionID string) ([]models.Connection, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, NewSessionError("Edges", sessionID, "", err)
	}

	return sess.Edges(), nil
}

// IncomingEdges returns the edges feeding one node in creation order.
func (m *Manager) IncomingEdges(sessionID, nodeID string) ([]models.Connection, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, NewSessionError("IncomingEdges", sessionID, nodeID, err)
	}

	edges, err := sess.IncomingEdges(nodeID)
	if err != nil {
		return nil, NewSessionError("IncomingEdges", sessionID, nodeID, err)
	}

	return edges, nil
}
