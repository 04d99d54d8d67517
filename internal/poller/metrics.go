package poller

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promcollect "github.com/prometheus/client_golang/prometheus/collectors"
)

// Collector is the status/metrics collaborator. The engine records counters
// and histograms at the event source; the gauges are owned by the daemon's
// periodic sync job, which copies them out of the engine snapshot.
type Collector struct {
	registry *prom.Registry

	pollingEnabled   prom.Gauge
	pollingConnected prom.Gauge
	simulatedSource  prom.Gauge
	monitoredPoints  prom.Gauge
	failingPoints    prom.Gauge
	cycleDuration    prom.Histogram
	publishDuration  prom.Histogram
	cyclesTotal      prom.Counter
	degradedCycles   prom.Counter
	readFailures     prom.Counter
	changesPublished prom.Counter
}

// NewCollector creates a collector with its own Prometheus registry,
// including the standard Go and process collectors.
func NewCollector() *Collector {
	c := &Collector{
		registry: prom.NewRegistry(),
		pollingEnabled: prom.NewGauge(prom.GaugeOpts{
			Namespace: "pointwatch", Name: "polling_enabled",
			Help: "Whether the polling engine is administratively enabled (1/0)"}),
		pollingConnected: prom.NewGauge(prom.GaugeOpts{
			Namespace: "pointwatch", Name: "polling_connected",
			Help: "Whether the driver connection is considered live (1/0)"}),
		simulatedSource: prom.NewGauge(prom.GaugeOpts{
			Namespace: "pointwatch", Name: "simulated_source",
			Help: "Whether the driver talks to a simulated source (1/0)"}),
		monitoredPoints: prom.NewGauge(prom.GaugeOpts{
			Namespace: "pointwatch", Name: "monitored_points",
			Help: "Number of currently monitored points"}),
		failingPoints: prom.NewGauge(prom.GaugeOpts{
			Namespace: "pointwatch", Name: "failing_points",
			Help: "Points with a nonzero consecutive read-failure streak"}),
		cycleDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pointwatch", Name: "cycle_duration_seconds",
			Help:    "Duration of full poll cycles",
			Buckets: prom.ExponentialBuckets(0.001, 2, 14)}),
		publishDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: "pointwatch", Name: "publish_duration_seconds",
			Help:    "Duration of broadcast publishes",
			Buckets: prom.ExponentialBuckets(0.0001, 2, 14)}),
		cyclesTotal: prom.NewCounter(prom.CounterOpts{
			Namespace: "pointwatch", Name: "cycles_total",
			Help: "Total poll cycles executed"}),
		degradedCycles: prom.NewCounter(prom.CounterOpts{
			Namespace: "pointwatch", Name: "degraded_cycles_total",
			Help: "Cycles classified degraded (majority read failure or disconnected)"}),
		readFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: "pointwatch", Name: "read_failures_total",
			Help: "Total failed point reads"}),
		changesPublished: prom.NewCounter(prom.CounterOpts{
			Namespace: "pointwatch", Name: "changes_published_total",
			Help: "Total change events handed to the broadcast transport"}),
	}

	c.registry.MustRegister(
		c.pollingEnabled, c.pollingConnected, c.simulatedSource, c.monitoredPoints, c.failingPoints,
		c.cycleDuration, c.publishDuration,
		c.cyclesTotal, c.degradedCycles, c.readFailures, c.changesPublished,
		promcollect.NewGoCollector(),
		promcollect.NewProcessCollector(promcollect.ProcessCollectorOpts{}),
	)
	return c
}

// Registry exposes the underlying registry for the /metrics handler.
func (c *Collector) Registry() *prom.Registry { return c.registry }

func boolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}

// SetPollingStatus updates the polling status gauges.
func (c *Collector) SetPollingStatus(enabled, connected bool, _ string, simulated bool) {
	c.pollingEnabled.Set(boolGauge(enabled))
	c.pollingConnected.Set(boolGauge(connected))
	c.simulatedSource.Set(boolGauge(simulated))
}

// SetMonitoredPointCount updates the point count gauge.
func (c *Collector) SetMonitoredPointCount(n int) {
	c.monitoredPoints.Set(float64(n))
}

// SetFailingPointCount updates the failing point gauge.
func (c *Collector) SetFailingPointCount(n int) {
	c.failingPoints.Set(float64(n))
}

// RecordCycleDuration records one completed cycle.
func (c *Collector) RecordCycleDuration(d time.Duration) {
	c.cycleDuration.Observe(d.Seconds())
	c.cyclesTotal.Inc()
}

// RecordPublishDuration records one broadcast publish.
func (c *Collector) RecordPublishDuration(d time.Duration) {
	c.publishDuration.Observe(d.Seconds())
	c.changesPublished.Inc()
}

// AddReadFailures counts failed reads for a cycle.
func (c *Collector) AddReadFailures(n int) {
	if n > 0 {
		c.readFailures.Add(float64(n))
	}
}

// IncDegradedCycle counts a degraded cycle.
func (c *Collector) IncDegradedCycle() {
	c.degradedCycles.Inc()
}
