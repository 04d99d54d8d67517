package driver

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// SimDriver is a deterministic in-memory driver used by tests and by
// `pointwatch run --simulate`. Values, failures, and liveness are all
// scriptable from the outside.
type SimDriver struct {
	mu         sync.RWMutex
	live       bool
	values     map[string]Value
	failing    map[string]error
	connectErr error
	cycleTime  time.Duration
	info       VersionInfo
}

// NewSimDriver creates a simulated driver that starts disconnected.
func NewSimDriver() *SimDriver {
	return &SimDriver{
		values:    make(map[string]Value),
		failing:   make(map[string]error),
		cycleTime: 10 * time.Millisecond,
		info: VersionInfo{
			RuntimeVersion:  "sim-1.0",
			ProtocolVersion: "sim",
			Simulated:       true,
		},
	}
}

// SetValue scripts the value returned for a point.
func (d *SimDriver) SetValue(name string, v Value) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.values[name] = v
	delete(d.failing, name)
}

// FailPoint scripts a read failure for a point.
func (d *SimDriver) FailPoint(name string, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failing[name] = err
}

// SetLive flips the liveness flag.
func (d *SimDriver) SetLive(live bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.live = live
}

// FailConnect scripts the next Connect outcomes; pass nil to restore success.
func (d *SimDriver) FailConnect(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.connectErr = err
}

// IsLive implements Driver.
func (d *SimDriver) IsLive(_ context.Context) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.live
}

// Connect implements Driver. A successful connect marks the driver live.
func (d *SimDriver) Connect(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.connectErr != nil {
		return d.connectErr
	}
	d.live = true
	return nil
}

// ReadPoint implements Driver.
func (d *SimDriver) ReadPoint(ctx context.Context, name string) (Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if !d.live {
		return nil, fmt.Errorf("sim driver not connected")
	}
	if err, ok := d.failing[name]; ok {
		return nil, err
	}
	v, ok := d.values[name]
	if !ok {
		return nil, fmt.Errorf("unknown point %q", name)
	}
	return v, nil
}

// CycleTime implements Driver.
func (d *SimDriver) CycleTime(_ context.Context) (time.Duration, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cycleTime, nil
}

// VersionInfo implements Driver.
func (d *SimDriver) VersionInfo(_ context.Context) (VersionInfo, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	info := d.info
	info.Connected = d.live
	return info, nil
}

// Simulated implements Driver.
func (d *SimDriver) Simulated() bool { return true }
