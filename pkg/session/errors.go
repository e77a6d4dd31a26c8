// Package session provides canvas session management: each session owns a
// canvas, its node table, and the event feed the canvas UI polls.
package session

import (
	"errors"
	"fmt"
)

// Standard session error types the API layer translates to HTTP statuses.
var (
	// ErrSessionNotFound indicates no session exists for the given identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNodeNotFound indicates a node was not found on the session's canvas.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNodeExists indicates a node with the same identifier is already on
	// the canvas.
	ErrNodeExists = errors.New("node already exists")

	// ErrEdgeNotFound indicates no edge connects the given source and target.
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrOutputNotFound indicates the node has not produced an output yet.
	ErrOutputNotFound = errors.New("output not found")

	// ErrRunInProgress indicates the node is already running.
	ErrRunInProgress = errors.New("node run already in progress")

	// ErrInvalidRequest indicates the request failed validation, such as
	// params rejected by the kind's schema or a malformed cron expression.
	ErrInvalidRequest = errors.New("invalid request")
)

// SessionError wraps session-level errors with additional context.
type SessionError struct {
	Op        string // Operation being performed (e.g., "AddNode", "RunNode")
	SessionID string // Session ID if applicable
	NodeID    string // Node ID if applicable
	Err       error  // Underlying error
}

func (e *SessionError) Error() string {
	if e.NodeID != "" {
		return fmt.Sprintf("%s failed for node %s in session %s: %v", e.Op, e.NodeID, e.SessionID, e.Err)
	}

	return fmt.Sprintf("%s failed for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSessionError creates a new session error with context.
func NewSessionError(op, sessionID, nodeID string, err error) *SessionError {
	return &SessionError{
		Op:        op,
		SessionID: sessionID,
		NodeID:    nodeID,
		Err:       err,
	}
}

// IsSessionNotFound checks if an error indicates a session was not found.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsNodeNotFound checks if an error indicates a node was not found.
func IsNodeNotFound(err error) bool {
	return errors.Is(err, ErrNodeNotFound)
}

// IsNodeExists checks if an error indicates a duplicate node identifier.
func IsNodeExists(err error) bool {
	return errors.Is(err, ErrNodeExists)
}

// IsEdgeNotFound checks if an error indicates an edge was not found.
func IsEdgeNotFound(err error) bool {
	return errors.Is(err, ErrEdgeNotFound)
}

// IsOutputNotFound checks if an error indicates an absent output.
func IsOutputNotFound(err error) bool {
	return errors.Is(err, ErrOutputNotFound)
}

// IsRunInProgress checks if an error indicates a conflicting node run.
func IsRunInProgress(err error) bool {
	return errors.Is(err, ErrRunInProgress)
}

// IsInvalidRequest checks if an error indicates a validation failure.
func IsInvalidRequest(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
