package prompt

import (
	"github.com/flowdeck/flowdeck/pkg/models"
)

// FormatRecord renders a prompt output for a downstream context block.
// Prompt outputs are already prose, so they pass through unchanged.
func FormatRecord(record models.OutputRecord) string {
	return record.Content
}
