package session

import (
	"context"
	"strings"

	"github.com/flowdeck/flowdeck/pkg/events"
	"github.com/flowdeck/flowdeck/pkg/metrics"
	"github.com/flowdeck/flowdeck/pkg/models"
)

// contextSeparator delimits formatted input blocks in an assembled context,
// matching what the prompt producer feeds the model.
const contextSeparator = "\n\n---\n\n"

// SetNodeOutput manually replaces the node's output record, the same write
// path a successful producer run uses. Downstream consumers are invalidated
// either way.
func (m *Manager) SetNodeOutput(ctx context.Context, sessionID, nodeID, content, label string) (models.OutputRecord, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return models.OutputRecord{}, NewSessionError("SetNodeOutput", sessionID, nodeID, err)
	}

	stored, invalidated, err := sess.SetOutput(nodeID, content, label)
	if err != nil {
		return models.OutputRecord{}, NewSessionError("SetNodeOutput", sessionID, nodeID, err)
	}

	metrics.OutputsSet.Inc()
	m.publish(ctx, sessionID, events.OutputUpdated{
		BaseEvent:   events.NewBaseEvent(events.OutputUpdatedEvent, sessionID),
		NodeID:      nodeID,
		Kind:        stored.NodeKind,
		Label:       stored.Label,
		ContentSize: len(stored.Content),
		ProducedAt:  stored.ProducedAt,
	})
	m.publishInvalidated(ctx, sessionID, invalidated)
	m.logger.InfoContext(ctx, "Node output set",
		"session_id", sessionID, "node_id", nodeID, "content_size", len(stored.Content))

	return stored, nil
}

// RemoveNodeOutput drops the node's output record. Removing an output the
// node never produced is a no-op, not an error.
func (m *Manager) RemoveNodeOutput(ctx context.Context, sessionID, nodeID string) error {
	sess, err := m.session(sessionID)
	if err != nil {
		return NewSessionError("RemoveNodeOutput", sessionID, nodeID, err)
	}

	removed, invalidated, err := sess.RemoveOutput(nodeID)
	if err != nil {
		return NewSessionError("RemoveNodeOutput", sessionID, nodeID, err)
	}

	if !removed {
		return nil
	}

	metrics.OutputsRemoved.Inc()
	m.publish(ctx, sessionID, events.OutputRemoved{
		BaseEvent: events.NewBaseEvent(events.OutputRemovedEvent, sessionID),
		NodeID:    nodeID,
	})
	m.publishInvalidated(ctx, sessionID, invalidated)
	m.logger.InfoContext(ctx, "Node output removed",
		"session_id", sessionID, "node_id", nodeID)

	return nil
}

// NodeOutput returns the node's current output record.
func (m *Manager) NodeOutput(sessionID, nodeID string) (models.OutputRecord, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return models.OutputRecord{}, NewSessionError("NodeOutput", sessionID, nodeID, err)
	}

	record, err := sess.Output(nodeID)
	if err != nil {
		return models.OutputRecord{}, NewSessionError("NodeOutput", sessionID, nodeID, err)
	}

	return record, nil
}

// ResolveInputs returns the output records currently visible to the node,
// in connection creation order. Connected sources without an output
// contribute nothing.
func (m *Manager) ResolveInputs(sessionID, nodeID string) ([]models.OutputRecord, error) {
	sess, err := m.session(sessionID)
	if err != nil {
		return nil, NewSessionError("ResolveInputs", sessionID, nodeID, err)
	}

	inputs, err := sess.Inputs(nodeID)
	if err != nil {
		return nil, NewSessionError("ResolveInputs", sessionID, nodeID, err)
	}

	return inputs, nil
}

// AssembleContext renders the node's inputs as one prompt-ready text block:
// each record formatted by its kind's formatter, blocks joined by a
// separator line. An empty input set assembles to an empty string.
func (m *Manager) AssembleContext(sessionID, nodeID string) (string, error) {
	inputs, err := m.ResolveInputs(sessionID, nodeID)
	if err != nil {
		return "", err
	}

	blocks := make([]string, 0, len(inputs))
	for _, record := range inputs {
		blocks = append(blocks, m.registry.FormatRecord(record))
	}

	return strings.Join(blocks, contextSeparator), nil
}
