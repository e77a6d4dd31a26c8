// Package web provides the HTTP request and response types for the canvas
// session API.
package web

import (
	"time"

	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/session"
)

// CreateSessionRequest represents the request body for opening a session.
type CreateSessionRequest struct {
	Name string `json:"name" validate:"required,min=1"`
}

// SessionResponse is the list view of a session.
type SessionResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
}

// SessionDetailResponse is the full canvas snapshot for one session.
type SessionDetailResponse struct {
	SessionResponse

	Nodes []*models.CanvasNode `json:"nodes"`
	Edges []models.Connection  `json:"edges"`
}

// TransformSessionResponse builds the list view of a session.
func TransformSessionResponse(sess *session.Session) SessionResponse {
	return SessionResponse{
		ID:        sess.ID,
		Name:      sess.Name,
		CreatedAt: sess.CreatedAt,
		UpdatedAt: sess.UpdatedAt(),
		NodeCount: sess.NodeCount(),
		EdgeCount: sess.EdgeCount(),
	}
}

// CreateNodeRequest represents the request body for placing a node. The id
// is client assigned so the canvas UI can reference the node before the
// server answers.
type CreateNodeRequest struct {
	ID        string         `json:"id"         validate:"required,min=1"`
	Kind      string         `json:"kind"       validate:"required,min=1"`
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`
}

// UpdateNodeRequest represents the request body for updating a node. Kind is
// immutable; nil fields stay unchanged and a non-nil params replaces the
// node's params wholesale.
type UpdateNodeRequest struct {
	Name      *string        `json:"name,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	PositionX *int           `json:"position_x,omitempty"`
	PositionY *int           `json:"position_y,omitempty"`
}

// CreateEdgeRequest represents the request body for connecting two nodes.
type CreateEdgeRequest struct {
	SourceNodeID string `json:"source_node_id" validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// SetOutputRequest represents the request body for manually setting a
// node's output. Empty content is a valid record; it means the node
// produced nothing, which is different from having no record at all.
type SetOutputRequest struct {
	Content string `json:"content"`
	Label   string `json:"label,omitempty"`
}

// RunResponse acknowledges an accepted node run.
type RunResponse struct {
	RunID  string `json:"run_id"`
	NodeID string `json:"node_id"`
	Status string `json:"status"`
}

// EventsResponse is one page of a session's event feed.
type EventsResponse struct {
	Events  []session.FeedEntry `json:"events"`
	LastSeq uint64              `json:"last_seq"`
}
