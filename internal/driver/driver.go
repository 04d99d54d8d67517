// Package driver defines the boundary to the industrial data source.
//
// The wire-level protocol lives behind the Driver interface; the engine only
// depends on liveness, connect, per-point reads, and runtime metadata.
package driver

import (
	"context"
	"time"
)

// Value is an opaque comparable point value. Drivers may return booleans,
// integers, floats, or strings; the engine never inspects the kind, it only
// compares values for equality.
type Value any

// Equal compares two point values. A nil value never equals a set value.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b
}

// VersionInfo describes the driver runtime as reported by the source.
type VersionInfo struct {
	RuntimeVersion  string `json:"runtime_version"`
	ProtocolVersion string `json:"protocol_version"`
	Connected       bool   `json:"connected"`
	Simulated       bool   `json:"simulated"`
}

// Driver is the upstream data source the engine polls.
//
// All methods that touch the wire take a context; implementations must honor
// cancellation rather than blocking shutdown.
type Driver interface {
	// IsLive reports whether the connection to the source is currently usable.
	IsLive(ctx context.Context) bool

	// Connect (re)establishes the connection. It returns an error on I/O failure.
	Connect(ctx context.Context) error

	// ReadPoint reads the current value of a named point.
	ReadPoint(ctx context.Context, name string) (Value, error)

	// CycleTime returns the source-side measured scan cycle time.
	CycleTime(ctx context.Context) (time.Duration, error)

	// VersionInfo returns runtime/protocol metadata for the source.
	VersionInfo(ctx context.Context) (VersionInfo, error)

	// Simulated reports whether this driver talks to a simulated source.
	Simulated() bool
}
