package canvas

import (
	"github.com/flowdeck/flowdeck/pkg/models"
)

// Resolver computes the materialized input list for a consumer node by
// joining its incoming edges against the output registry. It holds no state
// of its own and performs no I/O; every call is a point-in-time snapshot.
type Resolver struct {
	outputs *OutputRegistry
	graph   *ConnectionGraph
}

func NewResolver(outputs *OutputRegistry, graph *ConnectionGraph) *Resolver {
	return &Resolver{
		outputs: outputs,
		graph:   graph,
	}
}

// ConnectedInputs returns the records the node should currently see:
// incoming edges in connection-creation order, each source's current
// record. Two classes of edge are excluded, sources that have no record
// at all and records whose content is whitespace-only (an empty input is
// equivalent to no connection and would only pollute the consumer's
// context). A source contributes at most one record even if several edges
// from it reach the node. The call cannot fail: an unknown node and a node
// with no usable inputs are observationally the same, both yield an empty
// list.
func (r *Resolver) ConnectedInputs(nodeID string) []models.OutputRecord {
	edges := r.graph.Incoming(nodeID)
	if len(edges) == 0 {
		return []models.OutputRecord{}
	}

	inputs := make([]models.OutputRecord, 0, len(edges))
	seen := make(map[string]struct{}, len(edges))

	for _, edge := range edges {
		if _, dup := seen[edge.SourceNodeID]; dup {
			continue
		}

		seen[edge.SourceNodeID] = struct{}{}

		record, ok := r.outputs.Get(edge.SourceNodeID)
		if !ok || !record.HasContent() {
			continue
		}

		inputs = append(inputs, record)
	}

	return inputs
}
