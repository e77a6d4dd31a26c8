// Package models defines the canvas data model: nodes placed on a canvas,
// connections between them, and the output records that flow along
// connections from producers to consumers.
package models

import (
	"strings"
	"time"
)

// NodeKind tags the type of a producing node. Kinds are open strings so new
// producer kinds can be added without touching the propagation core; per-kind
// behavior (producer construction, input formatting) is resolved through the
// registry at runtime.
type NodeKind string

// Built-in producer kinds.
const (
	KindFetch  NodeKind = "fetch"
	KindPrompt NodeKind = "prompt"
)

// OutputRecord is the latest materialized result of one node. At most one
// record exists per node at any time; a new set fully replaces the prior
// record, never merges with it.
type OutputRecord struct {
	NodeID   string   `json:"node_id"         validate:"required"`
	NodeKind NodeKind `json:"node_kind"`
	Content  string   `json:"content"`
	Label    string   `json:"label,omitempty"`

	// ProducedAt is stamped by the output registry on every set. Caller
	// supplied values are ignored; the registry is the sole timestamp
	// authority.
	ProducedAt time.Time `json:"produced_at"`
}

// HasContent reports whether the record carries non-whitespace content.
// An empty record is still a valid record: it means the node ran and
// produced nothing, which is distinct from the node never having run.
func (r *OutputRecord) HasContent() bool {
	return strings.TrimSpace(r.Content) != ""
}
