package fetch

import (
	"github.com/flowdeck/flowdeck/pkg/models"
)

// FormatRecord renders a fetch output for a downstream context block,
// citing the source URL when the record carries one as its label.
func FormatRecord(record models.OutputRecord) string {
	if record.Label == "" {
		return record.Content
	}

	return "Source: " + record.Label + "\n" + record.Content
}
