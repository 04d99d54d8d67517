// Package broadcast carries change events from the engine to live subscribers.
//
// Delivery is best-effort: a failed publish is the caller's problem to log,
// never to retry or to fold back into point state.
package broadcast

import (
	"time"

	"git.home.luguber.info/inful/pointwatch/internal/driver"
)

// ChangeEvent is emitted once per detected value change of a monitored point.
type ChangeEvent struct {
	ID        string       `json:"id"`
	PointName string       `json:"point_name"`
	Value     driver.Value `json:"value"`
	Timestamp time.Time    `json:"timestamp"`
	CycleID   string       `json:"cycle_id,omitempty"`
}

// DriverRuntimeInfo is forwarded to the integrity collaborator on the
// metadata refresh tick.
type DriverRuntimeInfo struct {
	RuntimeVersion  string    `json:"runtime_version"`
	ProtocolVersion string    `json:"protocol_version"`
	Connected       bool      `json:"connected"`
	Simulated       bool      `json:"simulated"`
	CycleTimeMS     float64   `json:"cycle_time_ms"`
	Timestamp       time.Time `json:"timestamp"`
}
