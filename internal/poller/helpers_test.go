package poller

import (
	"context"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/pointwatch/internal/broadcast"
	"git.home.luguber.info/inful/pointwatch/internal/config"
	"git.home.luguber.info/inful/pointwatch/internal/driver"
	"git.home.luguber.info/inful/pointwatch/internal/logfields"
)

// fakeSource is a scriptable point source.
type fakeSource struct {
	mu    sync.Mutex
	names []string
	err   error
	calls int
}

func (f *fakeSource) set(names []string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names = names
	f.err = err
}

func (f *fakeSource) ListPointNames(_ context.Context, _ string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([]string, len(f.names))
	copy(out, f.names)
	return out, nil
}

// capturePublisher records published events and runtime info.
type capturePublisher struct {
	mu      sync.Mutex
	events  []broadcast.ChangeEvent
	runtime []broadcast.DriverRuntimeInfo
	err     error
}

func (c *capturePublisher) Publish(_ context.Context, event broadcast.ChangeEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

func (c *capturePublisher) UpdateDriverRuntimeInfo(_ context.Context, info broadcast.DriverRuntimeInfo) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.runtime = append(c.runtime, info)
	return nil
}

func (c *capturePublisher) eventCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func (c *capturePublisher) eventsFor(point string) []broadcast.ChangeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []broadcast.ChangeEvent
	for _, e := range c.events {
		if e.PointName == point {
			out = append(out, e)
		}
	}
	return out
}

func (c *capturePublisher) setError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// recordingHandler captures slog records so tests can assert on log-borne
// signals. Handle may be called from fan-out goroutines.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

// countWarns counts warn-level records with the given message carrying the
// given point attribute.
func (h *recordingHandler) countWarns(msg, point string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.records {
		if r.Level != slog.LevelWarn || r.Message != msg {
			continue
		}
		match := false
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == logfields.KeyPoint && a.Value.String() == point {
				match = true
				return false
			}
			return true
		})
		if match {
			n++
		}
	}
	return n
}

// newTestEngine wires an engine around a connected sim driver, a fake
// source, and a capture publisher.
func newTestEngine(names []string) (*Engine, *driver.SimDriver, *fakeSource, *capturePublisher) {
	sim := driver.NewSimDriver()
	sim.SetLive(true)
	for i, n := range names {
		sim.SetValue(n, i+1)
	}

	src := &fakeSource{names: names}
	pub := &capturePublisher{}

	eng, err := New(Options{
		Config: config.MonitoringConfig{
			Enabled:        true,
			AutoLoadPoints: true,
			PointSourceID:  "test",
			PollIntervalMS: 10,
		},
		Driver:      sim,
		Source:      src,
		Publisher:   pub,
		RuntimeSink: pub,
	})
	if err != nil {
		panic(err)
	}
	return eng, sim, src, pub
}
