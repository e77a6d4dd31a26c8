package models

// Connection is a directed edge asserting "target may consume source's
// output". Handles identify visual ports on the canvas and are carried for
// canvas fidelity only; they take no part in resolution or in duplicate
// matching, which key on the endpoint pair alone.
type Connection struct {
	ID           string `json:"id"`
	SourceNodeID string `json:"source_node_id" validate:"required"`
	TargetNodeID string `json:"target_node_id" validate:"required"`
	SourceHandle string `json:"source_handle,omitempty"`
	TargetHandle string `json:"target_handle,omitempty"`
}

// Matches reports whether the edge joins the given endpoints. Two edges with
// equal endpoints are the same edge regardless of handle values.
func (c *Connection) Matches(sourceNodeID, targetNodeID string) bool {
	return c.SourceNodeID == sourceNodeID && c.TargetNodeID == targetNodeID
}

// Touches reports whether the node appears as either endpoint.
func (c *Connection) Touches(nodeID string) bool {
	return c.SourceNodeID == nodeID || c.TargetNodeID == nodeID
}
