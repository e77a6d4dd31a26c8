package models

import (
	"maps"
	"time"
)

// RunStatus is the lifecycle state of a node's most recent producer run.
type RunStatus string

const (
	RunStatusIdle      RunStatus = "idle"
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// ParamRefreshCron names the optional node parameter holding a standard
// 5-field cron expression for automatic re-runs.
const ParamRefreshCron = "refresh_cron"

// CanvasNode is a node instance placed on a canvas. Position is kept for
// canvas round-trips; the propagation core never reads it.
type CanvasNode struct {
	ID        string         `json:"id"   validate:"required"`
	Kind      NodeKind       `json:"kind" validate:"required"`
	Name      string         `json:"name"`
	Params    map[string]any `json:"params"`
	PositionX int            `json:"position_x"`
	PositionY int            `json:"position_y"`

	Status    RunStatus  `json:"status"`
	LastError string     `json:"last_error,omitempty"`
	LastRunAt *time.Time `json:"last_run_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RefreshCron returns the node's refresh schedule, if one is configured.
func (n *CanvasNode) RefreshCron() (string, bool) {
	expr, ok := n.Params[ParamRefreshCron].(string)
	if !ok || expr == "" {
		return "", false
	}

	return expr, true
}

// Clone returns a copy that does not share the params map with the
// original, safe to hand out of the owning session.
func (n *CanvasNode) Clone() *CanvasNode {
	clone := *n
	clone.Params = maps.Clone(n.Params)

	return &clone
}
