package protocol

import (
	"github.com/flowdeck/flowdeck/pkg/models"
)

// Formatter renders one output record as a block of text for inclusion in a
// downstream node's assembled context. Each node kind may register its own
// formatter; kinds without one fall back to the record's raw content.
type Formatter func(record models.OutputRecord) string
