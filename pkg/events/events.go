// Package events defines the typed events a canvas session emits as its
// topology, outputs, and producer runs change.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/flowdeck/flowdeck/pkg/models"
)

type EventType string

// CanvasEventsTopic carries every canvas event, in-process by default and
// through kafka when an external bus is configured.
const CanvasEventsTopic = "flowdeck.canvas.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Topology events.
	NodeCreatedEvent EventType = "node.created"
	NodeUpdatedEvent EventType = "node.updated"
	NodeRemovedEvent EventType = "node.removed"
	EdgeCreatedEvent EventType = "edge.created"
	EdgeRemovedEvent EventType = "edge.removed"

	// Data-flow events.
	OutputUpdatedEvent     EventType = "output.updated"
	OutputRemovedEvent     EventType = "output.removed"
	InputsInvalidatedEvent EventType = "inputs.invalidated"

	// Producer run lifecycle events.
	RunStartedEvent   EventType = "run.started"
	RunSucceededEvent EventType = "run.succeeded"
	RunFailedEvent    EventType = "run.failed"
)

// AllEventTypes returns every canvas event type. Consumers that mirror the
// whole stream, like the session feed, register a handler for each.
func AllEventTypes() []EventType {
	return []EventType{
		NodeCreatedEvent,
		NodeUpdatedEvent,
		NodeRemovedEvent,
		EdgeCreatedEvent,
		EdgeRemovedEvent,
		OutputUpdatedEvent,
		OutputRemovedEvent,
		InputsInvalidatedEvent,
		RunStartedEvent,
		RunSucceededEvent,
		RunFailedEvent,
	}
}

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	SessionID string         `json:"session_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

func NewBaseEvent(eventType EventType, sessionID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		SessionID: sessionID,
		Metadata:  make(map[string]any),
	}
}

// GetSessionID returns the session the event belongs to.
func (b BaseEvent) GetSessionID() string {
	return b.SessionID
}

// GetTimestamp returns when the event was emitted.
func (b BaseEvent) GetTimestamp() time.Time {
	return b.Timestamp
}

// Topology events

type NodeCreated struct {
	BaseEvent

	NodeID string          `json:"node_id"`
	Kind   models.NodeKind `json:"kind"`
	Name   string          `json:"name,omitempty"`
}

func (e NodeCreated) GetType() EventType {
	return NodeCreatedEvent
}

type NodeUpdated struct {
	BaseEvent

	NodeID string          `json:"node_id"`
	Kind   models.NodeKind `json:"kind"`
}

func (e NodeUpdated) GetType() EventType {
	return NodeUpdatedEvent
}

type NodeRemoved struct {
	BaseEvent

	NodeID string `json:"node_id"`
}

func (e NodeRemoved) GetType() EventType {
	return NodeRemovedEvent
}

type EdgeCreated struct {
	BaseEvent

	EdgeID       string `json:"edge_id"`
	SourceNodeID string `json:"source_node_id"`
	TargetNodeID string `json:"target_node_id"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

func (e EdgeCreated) GetType() EventType {
	return EdgeCreatedEvent
}

type EdgeRemoved struct {
	BaseEvent

	EdgeID       string `json:"edge_id"`
	SourceNodeID string `json:"source_node_id"`
	TargetNodeID string `json:"target_node_id"`
}

func (e EdgeRemoved) GetType() EventType {
	return EdgeRemovedEvent
}

// Data-flow events

type OutputUpdated struct {
	BaseEvent

	NodeID      string          `json:"node_id"`
	Kind        models.NodeKind `json:"kind"`
	Label       string          `json:"label,omitempty"`
	ContentSize int             `json:"content_size"`
	ProducedAt  time.Time       `json:"produced_at"`
}

func (e OutputUpdated) GetType() EventType {
	return OutputUpdatedEvent
}

type OutputRemoved struct {
	BaseEvent

	NodeID string `json:"node_id"`
}

func (e OutputRemoved) GetType() EventType {
	return OutputRemovedEvent
}

// InputsInvalidated tells consumers of the node to re-resolve its inputs
// after an upstream change: an output landed, an edge came or went, or a
// source node disappeared.
type InputsInvalidated struct {
	BaseEvent

	NodeID string `json:"node_id"`
}

func (e InputsInvalidated) GetType() EventType {
	return InputsInvalidatedEvent
}

// Producer run lifecycle events

type RunStarted struct {
	BaseEvent

	RunID  string          `json:"run_id"`
	NodeID string          `json:"node_id"`
	Kind   models.NodeKind `json:"kind"`
}

func (e RunStarted) GetType() EventType {
	return RunStartedEvent
}

type RunSucceeded struct {
	BaseEvent

	RunID       string          `json:"run_id"`
	NodeID      string          `json:"node_id"`
	Kind        models.NodeKind `json:"kind"`
	DurationMs  int64           `json:"duration_ms"`
	ContentSize int             `json:"content_size"`
}

func (e RunSucceeded) GetType() EventType {
	return RunSucceededEvent
}

type RunFailed struct {
	BaseEvent

	RunID      string          `json:"run_id"`
	NodeID     string          `json:"node_id"`
	Kind       models.NodeKind `json:"kind"`
	DurationMs int64           `json:"duration_ms"`
	Error      string          `json:"error"`
}

func (e RunFailed) GetType() EventType {
	return RunFailedEvent
}
