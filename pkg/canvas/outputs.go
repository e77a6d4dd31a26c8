package canvas

import (
	"sync"
	"time"

	"github.com/flowdeck/flowdeck/pkg/models"
)

// OutputRegistry holds the latest output record per node. It is one of the
// two leaf structures of the propagation core; it knows nothing about
// connections, and the resolver joins it against the graph at query time.
type OutputRegistry struct {
	mu      sync.RWMutex
	records map[string]models.OutputRecord
}

func NewOutputRegistry() *OutputRegistry {
	return &OutputRegistry{
		records: make(map[string]models.OutputRecord),
	}
}

// Set stores the record as the node's current output, replacing any prior
// record whole. ProducedAt is stamped here: the registry is the sole
// authority on timestamps and ignores caller-supplied values. Content is
// not validated; an empty string is a meaningful record ("ran and produced
// nothing"), distinct from no record at all ("never ran").
func (r *OutputRegistry) Set(nodeID string, record models.OutputRecord) models.OutputRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	record.NodeID = nodeID
	record.ProducedAt = time.Now().UTC()
	r.records[nodeID] = record

	return record
}

// Get returns the node's current record. The second return reports
// presence; a missing node is a state, not an error.
func (r *OutputRegistry) Get(nodeID string) (models.OutputRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[nodeID]

	return record, ok
}

// Remove deletes the node's record if present and reports whether a record
// was actually removed.
func (r *OutputRegistry) Remove(nodeID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[nodeID]; !ok {
		return false
	}

	delete(r.records, nodeID)

	return true
}

// Count returns the number of nodes that currently have a record.
func (r *OutputRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.records)
}
