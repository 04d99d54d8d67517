package poller

import (
	"sync"
	"time"
)

// ServiceState is the scheduler's lifecycle state.
type ServiceState string

const (
	StateDisabled     ServiceState = "disabled"
	StateInitializing ServiceState = "initializing"
	StateRunning      ServiceState = "running"
	StateDegraded     ServiceState = "degraded"
	StateStopped      ServiceState = "stopped"
)

// CycleStatus is the ephemeral per-cycle status read by the admin surface.
// It is overwritten every cycle and never persisted.
type CycleStatus struct {
	State               ServiceState `json:"state"`
	Enabled             bool         `json:"enabled"`
	Connected           bool         `json:"connected"`
	Message             string       `json:"message"`
	SimulatedSource     bool         `json:"simulated_source"`
	LastCycleDurationMS float64      `json:"last_cycle_duration_ms"`
	LastCycleAt         time.Time    `json:"last_cycle_at,omitempty"`
}

// statusTracker guards the current CycleStatus. Status gauges are not
// written here; the daemon's sync job reads the snapshot instead.
type statusTracker struct {
	mu      sync.RWMutex
	current CycleStatus
}

func newStatusTracker() *statusTracker {
	return &statusTracker{
		current: CycleStatus{State: StateInitializing},
	}
}

func (t *statusTracker) set(s CycleStatus) {
	t.mu.Lock()
	t.current = s
	t.mu.Unlock()
}

// Get returns the current status.
func (t *statusTracker) Get() CycleStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current
}
