package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/flowdeck/flowdeck/pkg/canvas"
	"github.com/flowdeck/flowdeck/pkg/models"
)

// Session is one live canvas: the propagation core, the node table the API
// works against, and the event feed clients poll. Every mutation runs under
// the session lock, which also serializes the canvas observer callbacks
// collecting invalidated node ids for the caller to publish.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	mu          sync.RWMutex
	updatedAt   time.Time
	canvas      *canvas.Canvas
	nodes       map[string]*models.CanvasNode
	order       []string
	invalidated []string
	feed        *Feed
}

func newSession(id, name string) *Session {
	now := time.Now().UTC()

	s := &Session{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		updatedAt: now,
		canvas:    canvas.New(),
		nodes:     make(map[string]*models.CanvasNode),
		feed:      NewFeed(defaultFeedCapacity),
	}

	// The observer fires synchronously inside canvas mutations, and every
	// canvas mutation here runs under s.mu, so the slice needs no lock of
	// its own.
	s.canvas.Subscribe(canvas.InputsObserverFunc(func(nodeID string) {
		s.invalidated = append(s.invalidated, nodeID)
	}))

	return s
}

// drainInvalidated returns the node ids invalidated by the mutation in
// progress and resets the list. Callers must hold s.mu.
func (s *Session) drainInvalidated() []string {
	out := s.invalidated
	s.invalidated = nil

	return out
}

func (s *Session) touch() {
	s.updatedAt = time.Now().UTC()
}

// Feed returns the session's event feed.
func (s *Session) Feed() *Feed {
	return s.feed
}

// UpdatedAt returns the time of the last mutation.
func (s *Session) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.updatedAt
}

// NodeCount returns the number of nodes on the canvas.
func (s *Session) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.nodes)
}

// EdgeCount returns the number of edges on the canvas.
func (s *Session) EdgeCount() int {
	return s.canvas.EdgeCount()
}

// Node returns a copy of the node, or ErrNodeNotFound.
func (s *Session) Node(nodeID string) (*models.CanvasNode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, exists := s.nodes[nodeID]
	if !exists {
		return nil, ErrNodeNotFound
	}

	return node.Clone(), nil
}

// Nodes returns copies of every node in creation order.
func (s *Session) Nodes() []*models.CanvasNode {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.CanvasNode, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.nodes[id].Clone())
	}

	return out
}

// AddNode places the node on the canvas. Node ids are client assigned, so a
// duplicate id is a conflict, not an upsert.
func (s *Session) AddNode(node *models.CanvasNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[node.ID]; exists {
		return ErrNodeExists
	}

	s.nodes[node.ID] = node
	s.order = append(s.order, node.ID)
	s.touch()

	return nil
}

// UpdateNode applies fn to the node under the session lock and returns a
// copy of the result.
func (s *Session) UpdateNode(nodeID string, fn func(node *models.CanvasNode)) (*models.CanvasNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[nodeID]
	if !exists {
		return nil, ErrNodeNotFound
	}

	fn(node)
	node.UpdatedAt = time.Now().UTC()
	s.touch()

	return node.Clone(), nil
}

// RemoveNode drops the node, its output, and every edge touching it. The
// returned ids are downstream nodes whose inputs changed.
func (s *Session) RemoveNode(nodeID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[nodeID]; !exists {
		return nil, ErrNodeNotFound
	}

	delete(s.nodes, nodeID)

	for i, id := range s.order {
		if id == nodeID {
			s.order = append(s.order[:i], s.order[i+1:]...)

			break
		}
	}

	s.canvas.RemoveNode(nodeID)
	s.touch()

	return s.drainInvalidated(), nil
}

// Connect adds a directed edge between two existing nodes. The created flag
// is false when an edge with the same endpoints already existed; the prior
// edge stays in place untouched.
func (s *Session) Connect(conn models.Connection) (models.Connection, bool, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[conn.SourceNodeID]; !exists {
		return models.Connection{}, false, nil, fmt.Errorf("source node %s: %w", conn.SourceNodeID, ErrNodeNotFound)
	}

	if _, exists := s.nodes[conn.TargetNodeID]; !exists {
		return models.Connection{}, false, nil, fmt.Errorf("target node %s: %w", conn.TargetNodeID, ErrNodeNotFound)
	}

	stored, created := s.canvas.Connect(conn)
	if created {
		s.touch()
	}

	return stored, created, s.drainInvalidated(), nil
}

// Disconnect removes the edge matching both endpoints.
func (s *Session) Disconnect(sourceNodeID, targetNodeID string) (models.Connection, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed, found := s.canvas.Disconnect(sourceNodeID, targetNodeID)
	if !found {
		return models.Connection{}, nil, ErrEdgeNotFound
	}

	s.touch()

	return removed, s.drainInvalidated(), nil
}

// Edges returns every edge in creation order.
func (s *Session) Edges() []models.Connection {
	return s.canvas.Edges()
}

// IncomingEdges returns the edges terminating at the node in creation order.
func (s *Session) IncomingEdges(nodeID string) ([]models.Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[nodeID]; !exists {
		return nil, ErrNodeNotFound
	}

	return s.canvas.IncomingEdges(nodeID), nil
}

// SetOutput replaces the node's output record. The returned ids are the
// targets consuming this node whose inputs changed.
func (s *Session) SetOutput(nodeID, content, label string) (models.OutputRecord, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[nodeID]
	if !exists {
		return models.OutputRecord{}, nil, ErrNodeNotFound
	}

	stored := s.canvas.SetOutput(nodeID, models.OutputRecord{
		NodeID:   nodeID,
		NodeKind: node.Kind,
		Content:  content,
		Label:    label,
	})
	s.touch()

	return stored, s.drainInvalidated(), nil
}

// RemoveOutput drops the node's output record. Removing an absent output is
// a no-op reported through the removed flag, not an error.
func (s *Session) RemoveOutput(nodeID string) (bool, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.nodes[nodeID]; !exists {
		return false, nil, ErrNodeNotFound
	}

	removed := s.canvas.RemoveOutput(nodeID)
	if removed {
		s.touch()
	}

	return removed, s.drainInvalidated(), nil
}

// Output returns the node's current output record, or ErrOutputNotFound
// when the node has not produced one.
func (s *Session) Output(nodeID string) (models.OutputRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[nodeID]; !exists {
		return models.OutputRecord{}, ErrNodeNotFound
	}

	record, found := s.canvas.Output(nodeID)
	if !found {
		return models.OutputRecord{}, ErrOutputNotFound
	}

	return record, nil
}

// Inputs resolves the node's current input records in connection creation
// order. Sources without output contribute nothing.
func (s *Session) Inputs(nodeID string) ([]models.OutputRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, exists := s.nodes[nodeID]; !exists {
		return nil, ErrNodeNotFound
	}

	return s.canvas.Inputs(nodeID), nil
}

// BeginRun transitions the node to running and returns a copy of it. A node
// already running is a conflict; the canvas serializes runs per node.
func (s *Session) BeginRun(nodeID string) (*models.CanvasNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[nodeID]
	if !exists {
		return nil, ErrNodeNotFound
	}

	if node.Status == models.RunStatusRunning {
		return nil, ErrRunInProgress
	}

	node.Status = models.RunStatusRunning
	node.UpdatedAt = time.Now().UTC()
	s.touch()

	return node.Clone(), nil
}

// CompleteRun stores the producer result as the node's output and marks the
// run succeeded. When the node was removed mid-run the result is dropped and
// ok is false.
func (s *Session) CompleteRun(nodeID, content, label string) (models.OutputRecord, []string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[nodeID]
	if !exists {
		return models.OutputRecord{}, nil, false
	}

	stored := s.canvas.SetOutput(nodeID, models.OutputRecord{
		NodeID:   nodeID,
		NodeKind: node.Kind,
		Content:  content,
		Label:    label,
	})

	now := time.Now().UTC()
	node.Status = models.RunStatusSucceeded
	node.LastError = ""
	node.LastRunAt = &now
	node.UpdatedAt = now
	s.touch()

	return stored, s.drainInvalidated(), true
}

// FailRun marks the run failed and records the error on the node. The
// node's previous output, if any, stays in place.
func (s *Session) FailRun(nodeID string, runErr error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, exists := s.nodes[nodeID]
	if !exists {
		return false
	}

	now := time.Now().UTC()
	node.Status = models.RunStatusFailed
	node.LastError = runErr.Error()
	node.LastRunAt = &now
	node.UpdatedAt = now
	s.touch()

	return true
}
