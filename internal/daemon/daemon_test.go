package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pointwatch/internal/broadcast"
	"git.home.luguber.info/inful/pointwatch/internal/config"
	"git.home.luguber.info/inful/pointwatch/internal/driver"
	"git.home.luguber.info/inful/pointwatch/internal/poller"
)

// gaugeValue reads a gauge from the collector's registry by fully qualified
// name.
func gaugeValue(t *testing.T, c *poller.Collector, name string) float64 {
	t.Helper()
	families, err := c.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			require.NotEmpty(t, mf.GetMetric())
			return mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestSyncMetricsMirrorsEngineSnapshot(t *testing.T) {
	collector := poller.NewCollector()
	src := testSource(t)

	sim := driver.NewSimDriver()
	sim.SetLive(true)
	sim.SetValue(src.names[0], 1)
	sim.FailPoint(src.names[1], errors.New("io timeout"))

	engine, err := poller.New(poller.Options{
		Config: config.MonitoringConfig{
			Enabled:        true,
			AutoLoadPoints: true,
			PointSourceID:  "test",
			PollIntervalMS: 10,
		},
		Driver:    sim,
		Source:    src,
		Publisher: broadcast.LogPublisher{},
		Metrics:   collector,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	require.Eventually(t, func() bool {
		snap := engine.GetSnapshot()
		if snap.Status.State != poller.StateRunning {
			return false
		}
		for _, p := range snap.Points {
			if p.ConsecutiveErrors > 0 {
				return true
			}
		}
		return false
	}, 2*time.Second, 5*time.Millisecond)

	// The engine never writes the gauges; they hold zero until the sync
	// job fires.
	assert.Zero(t, gaugeValue(t, collector, "pointwatch_monitored_points"))
	assert.Zero(t, gaugeValue(t, collector, "pointwatch_polling_enabled"))

	d := &Daemon{engine: engine, collector: collector}
	d.syncMetrics()

	assert.Equal(t, float64(2), gaugeValue(t, collector, "pointwatch_monitored_points"))
	assert.Equal(t, float64(1), gaugeValue(t, collector, "pointwatch_failing_points"))
	assert.Equal(t, float64(1), gaugeValue(t, collector, "pointwatch_polling_enabled"))
	assert.Equal(t, float64(1), gaugeValue(t, collector, "pointwatch_simulated_source"))

	cancel()
	require.NoError(t, <-done)
}
