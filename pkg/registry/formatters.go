package registry

import (
	"github.com/flowdeck/flowdeck/pkg/models"
	"github.com/flowdeck/flowdeck/pkg/protocol"
)

// RegisterFormatter attaches a context formatter to a node kind.
func (r *Registry) RegisterFormatter(kind models.NodeKind, formatter protocol.Formatter) {
	r.formatters[kind] = formatter
}

// FormatRecord renders an output record for inclusion in a downstream
// node's context block, using the formatter registered for the record's
// kind. Kinds without a formatter contribute their raw content.
func (r *Registry) FormatRecord(record models.OutputRecord) string {
	if formatter, ok := r.formatters[record.NodeKind]; ok {
		return formatter(record)
	}

	return record.Content
}
