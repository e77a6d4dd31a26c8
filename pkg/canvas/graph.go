package canvas

import (
	"sync"

	"github.com/google/uuid"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// ConnectionGraph holds the current edge set. Edges are kept in insertion
// order, which is the order the resolver presents inputs in, so traversals
// stay deterministic regardless of map iteration quirks.
type ConnectionGraph struct {
	mu    sync.RWMutex
	edges []models.Connection
}

func NewConnectionGraph() *ConnectionGraph {
	return &ConnectionGraph{}
}

// Add inserts the edge unless one with the same (source, target) pair
// already exists; handles never participate in the match. A duplicate add
// is silently absorbed and returns the existing edge with ok false: the
// canvas may legitimately re-deliver the same connection event, and a
// duplicate propagation path must not duplicate resolved inputs.
func (g *ConnectionGraph) Add(conn models.Connection) (models.Connection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, existing := range g.edges {
		if existing.Matches(conn.SourceNodeID, conn.TargetNodeID) {
			return existing, false
		}
	}

	if conn.ID == "" {
		conn.ID = uuid.New().String()
	}

	g.edges = append(g.edges, conn)

	return conn, true
}

// Remove deletes the edge matching both endpoints, ignoring handles, and
// returns it. A missing edge is a no-op with ok false.
func (g *ConnectionGraph) Remove(sourceNodeID, targetNodeID string) (models.Connection, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, edge := range g.edges {
		if edge.Matches(sourceNodeID, targetNodeID) {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)

			return edge, true
		}
	}

	return models.Connection{}, false
}

// RemoveAllFor deletes every edge where the node appears as source or
// target and returns the removed edges in insertion order.
func (g *ConnectionGraph) RemoveAllFor(nodeID string) []models.Connection {
	g.mu.Lock()
	defer g.mu.Unlock()

	var removed []models.Connection

	kept := g.edges[:0]

	for _, edge := range g.edges {
		if edge.Touches(nodeID) {
			removed = append(removed, edge)
		} else {
			kept = append(kept, edge)
		}
	}

	g.edges = kept

	return removed
}

// Incoming returns the edges terminating at the node, in insertion order.
func (g *ConnectionGraph) Incoming(nodeID string) []models.Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var incoming []models.Connection

	for _, edge := range g.edges {
		if edge.TargetNodeID == nodeID {
			incoming = append(incoming, edge)
		}
	}

	return incoming
}

// TargetsOf returns the distinct downstream targets of the node, in
// insertion order. This is who must be told when the node's output changes.
func (g *ConnectionGraph) TargetsOf(nodeID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var targets []string

	seen := make(map[string]struct{})

	for _, edge := range g.edges {
		if edge.SourceNodeID != nodeID {
			continue
		}

		if _, ok := seen[edge.TargetNodeID]; ok {
			continue
		}

		seen[edge.TargetNodeID] = struct{}{}
		targets = append(targets, edge.TargetNodeID)
	}

	return targets
}

// Edges returns a copy of the full edge set in insertion order.
func (g *ConnectionGraph) Edges() []models.Connection {
	g.mu.RLock()
	defer g.mu.RUnlock()

	edges := make([]models.Connection, len(g.edges))
	copy(edges, g.edges)

	return edges
}

// Count returns the number of edges currently in the graph.
func (g *ConnectionGraph) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return len(g.edges)
}
