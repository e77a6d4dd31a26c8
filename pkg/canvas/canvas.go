// Package canvas implements the data-flow propagation core: which nodes
// feed which, what each node last produced, and what any node should
// currently see as its inputs. The core is pure in-memory state with no
// I/O; producers, rendering, and transport live in the layers around it.
package canvas

import (
	"github.com/flowdeck/flowdeck/pkg/models"
)

// Canvas owns one propagation core: an output registry, a connection
// graph, a resolver over the pair, and the coordinator that keeps the two
// structures consistent. A canvas is an explicit owned object, never a
// package global, so any number of independent canvases can live in one
// process without sharing state.
type Canvas struct {
	outputs     *OutputRegistry
	graph       *ConnectionGraph
	resolver    *Resolver
	coordinator *Coordinator
}

func New() *Canvas {
	outputs := NewOutputRegistry()
	graph := NewConnectionGraph()

	return &Canvas{
		outputs:     outputs,
		graph:       graph,
		resolver:    NewResolver(outputs, graph),
		coordinator: NewCoordinator(outputs, graph),
	}
}

// SetOutput stores the node's latest record and notifies downstream
// targets. See Coordinator.SetOutput.
func (c *Canvas) SetOutput(nodeID string, record models.OutputRecord) models.OutputRecord {
	return c.coordinator.SetOutput(nodeID, record)
}

// Output returns the node's current record, if any.
func (c *Canvas) Output(nodeID string) (models.OutputRecord, bool) {
	return c.outputs.Get(nodeID)
}

// RemoveOutput drops the node's record, if any.
func (c *Canvas) RemoveOutput(nodeID string) bool {
	return c.coordinator.RemoveOutput(nodeID)
}

// Connect adds a directed edge; duplicate endpoint pairs are absorbed.
func (c *Canvas) Connect(conn models.Connection) (models.Connection, bool) {
	return c.coordinator.OnEdgeCreated(conn)
}

// Disconnect removes the edge matching both endpoints, ignoring handles.
func (c *Canvas) Disconnect(sourceNodeID, targetNodeID string) (models.Connection, bool) {
	return c.coordinator.OnEdgeRemoved(sourceNodeID, targetNodeID)
}

// RemoveNode clears the node's output and every edge touching it.
func (c *Canvas) RemoveNode(nodeID string) {
	c.coordinator.OnNodeRemoved(nodeID)
}

// Inputs resolves the node's current input records.
func (c *Canvas) Inputs(nodeID string) []models.OutputRecord {
	return c.resolver.ConnectedInputs(nodeID)
}

// IncomingEdges returns the edges terminating at the node in creation
// order.
func (c *Canvas) IncomingEdges(nodeID string) []models.Connection {
	return c.graph.Incoming(nodeID)
}

// Edges returns the full edge set in creation order.
func (c *Canvas) Edges() []models.Connection {
	return c.graph.Edges()
}

// Subscribe registers an observer for input-set change notifications.
func (c *Canvas) Subscribe(observer InputsObserver) {
	c.coordinator.Subscribe(observer)
}

// EdgeCount returns the number of edges on the canvas.
func (c *Canvas) EdgeCount() int {
	return c.graph.Count()
}

// OutputCount returns the number of nodes with a current record.
func (c *Canvas) OutputCount() int {
	return c.outputs.Count()
}
