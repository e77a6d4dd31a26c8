package canvas

import (
	"sync"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// InputsObserver is notified with the id of each node whose resolvable
// input set may have changed. Callbacks run synchronously on the mutating
// goroutine and must not call back into the coordinator.
type InputsObserver interface {
	InputsChanged(nodeID string)
}

// InputsObserverFunc adapts a plain function to the InputsObserver
// interface.
type InputsObserverFunc func(nodeID string)

func (f InputsObserverFunc) InputsChanged(nodeID string) {
	f(nodeID)
}

// Coordinator is the glue between the canvas and the two core structures.
// All writes, producer outputs and structural topology changes alike, pass
// through it, so the registry and the graph stay consistent and observers
// hear about every change that could affect some node's inputs.
type Coordinator struct {
	outputs *OutputRegistry
	graph   *ConnectionGraph

	mu        sync.RWMutex
	observers []InputsObserver
}

func NewCoordinator(outputs *OutputRegistry, graph *ConnectionGraph) *Coordinator {
	return &Coordinator{
		outputs: outputs,
		graph:   graph,
	}
}

// Subscribe registers an observer for input-set change notifications.
// Observers live as long as the coordinator; each canvas owns its own
// coordinator, so subscriptions never leak across canvases.
func (c *Coordinator) Subscribe(observer InputsObserver) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.observers = append(c.observers, observer)
}

// SetOutput records the node's output and notifies every current
// downstream target. Overwrites are unconditional; the stored record with
// its stamped timestamp is returned.
func (c *Coordinator) SetOutput(nodeID string, record models.OutputRecord) models.OutputRecord {
	stored := c.outputs.Set(nodeID, record)
	c.notify(c.graph.TargetsOf(nodeID))

	return stored
}

// RemoveOutput drops the node's record, if any. Downstream targets are
// notified only when a record was actually removed.
func (c *Coordinator) RemoveOutput(nodeID string) bool {
	removed := c.outputs.Remove(nodeID)
	if removed {
		c.notify(c.graph.TargetsOf(nodeID))
	}

	return removed
}

// OnEdgeCreated adds the connection. The output registry is untouched: an
// edge may be drawn before its source has ever produced, and resolution
// simply skips it until the source does. The target is notified only when
// the edge was actually inserted; an idempotent re-delivery changes
// nothing and stays silent.
func (c *Coordinator) OnEdgeCreated(conn models.Connection) (models.Connection, bool) {
	stored, created := c.graph.Add(conn)
	if created {
		c.notify([]string{stored.TargetNodeID})
	}

	return stored, created
}

// OnEdgeRemoved removes the connection matching both endpoints. The
// source's output record persists for any other still-connected consumer.
func (c *Coordinator) OnEdgeRemoved(sourceNodeID, targetNodeID string) (models.Connection, bool) {
	edge, removed := c.graph.Remove(sourceNodeID, targetNodeID)
	if removed {
		c.notify([]string{targetNodeID})
	}

	return edge, removed
}

// OnNodeRemoved clears everything the node left behind, its output record
// and every edge touching it, in one call, so no half-cleaned state is ever
// observable. Former downstream targets are notified that their inputs
// changed. The id is terminal after this; if the canvas ever reuses it,
// the node starts fresh with no memory of prior state.
func (c *Coordinator) OnNodeRemoved(nodeID string) {
	removed := c.graph.RemoveAllFor(nodeID)
	c.outputs.Remove(nodeID)

	var affected []string

	seen := make(map[string]struct{})

	for _, edge := range removed {
		if edge.SourceNodeID != nodeID || edge.TargetNodeID == nodeID {
			continue
		}

		if _, ok := seen[edge.TargetNodeID]; ok {
			continue
		}

		seen[edge.TargetNodeID] = struct{}{}
		affected = append(affected, edge.TargetNodeID)
	}

	c.notify(affected)
}

func (c *Coordinator) notify(nodeIDs []string) {
	if len(nodeIDs) == 0 {
		return
	}

	c.mu.RLock()
	observers := make([]InputsObserver, len(c.observers))
	copy(observers, c.observers)
	c.mu.RUnlock()

	for _, observer := range observers {
		for _, nodeID := range nodeIDs {
			observer.InputsChanged(nodeID)
		}
	}
}
