// Package daemon composes the monitoring engine with its collaborators:
// point source, broadcast transport, admin HTTP surface, and the point-file
// watcher.
package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pointwatch/internal/broadcast"
	"git.home.luguber.info/inful/pointwatch/internal/config"
	"git.home.luguber.info/inful/pointwatch/internal/daemon/events"
	"git.home.luguber.info/inful/pointwatch/internal/driver"
	"git.home.luguber.info/inful/pointwatch/internal/logfields"
	"git.home.luguber.info/inful/pointwatch/internal/pointsource"
	"git.home.luguber.info/inful/pointwatch/internal/poller"
)

// metricsSyncInterval is the cadence of the admin-side job that copies the
// engine snapshot into the Prometheus gauges between cycles.
const metricsSyncInterval = 15 * time.Second

// Daemon wires the engine, the admin server, and the background workers.
type Daemon struct {
	cfg       *config.Config
	engine    *poller.Engine
	collector *poller.Collector
	admin     *AdminServer
	bus       *events.Bus
	watcher   *PointFileWatcher
	scheduler gocron.Scheduler
	workers   workerGroup

	reconcileCh chan struct{}
	closers     []io.Closer
}

// New builds a daemon from configuration and an injected driver.
func New(cfg *config.Config, drv driver.Driver) (*Daemon, error) {
	collector := poller.NewCollector()
	bus := events.NewBus()

	source, closer, err := buildSource(cfg.PointSource)
	if err != nil {
		return nil, err
	}

	d := &Daemon{
		cfg:         cfg,
		collector:   collector,
		bus:         bus,
		reconcileCh: make(chan struct{}, 1),
	}
	if closer != nil {
		d.closers = append(d.closers, closer)
	}

	publisher, sink, err := d.buildBroadcast(cfg.Broadcast)
	if err != nil {
		d.closeAll()
		return nil, err
	}

	engine, err := poller.New(poller.Options{
		Config:            cfg.Monitoring,
		Driver:            drv,
		Source:            source,
		Publisher:         publisher,
		RuntimeSink:       sink,
		Metrics:           collector,
		ReconcileRequests: d.reconcileCh,
	})
	if err != nil {
		d.closeAll()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	d.engine = engine
	d.admin = NewAdminServer(cfg.Admin.Listen, engine, collector)

	if cfg.PointSource.Watch && cfg.PointSource.Backend == "file" {
		watcher, err := NewPointFileWatcher(cfg.PointSource.Path, bus)
		if err != nil {
			d.closeAll()
			return nil, err
		}
		d.watcher = watcher
		d.closers = append(d.closers, closerFunc(watcher.Close))
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		d.closeAll()
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	d.scheduler = scheduler

	return d, nil
}

func buildSource(cfg config.PointSourceConfig) (pointsource.Source, io.Closer, error) {
	switch cfg.Backend {
	case "sqlite":
		src, err := pointsource.NewSQLiteSource(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return src, src, nil
	default:
		return pointsource.NewFileSource(cfg.Path), nil, nil
	}
}

func (d *Daemon) buildBroadcast(cfg config.BroadcastConfig) (broadcast.Publisher, broadcast.RuntimeInfoSink, error) {
	if cfg.NATSURL == "" {
		slog.Info("No broadcast transport configured, change events will be logged")
		return broadcast.LogPublisher{}, broadcast.LogPublisher{}, nil
	}
	pub, err := broadcast.NewNATSPublisher(broadcast.NATSConfig{
		URL:           cfg.NATSURL,
		SubjectPrefix: cfg.SubjectPrefix,
	})
	if err != nil {
		return nil, nil, err
	}
	d.closers = append(d.closers, closerFunc(pub.Close))
	return pub, pub, nil
}

// Run starts the background workers and drives the engine until ctx is
// canceled. The engine's own loop runs on the calling goroutine.
func (d *Daemon) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	d.workers.Go(func() {
		if err := d.admin.Start(); err != nil {
			slog.Error("Admin server failed", logfields.Error(err))
		}
	})

	if d.watcher != nil {
		d.workers.Go(func() {
			if err := d.watcher.Run(runCtx); err != nil {
				slog.Error("Point file watcher failed", logfields.Error(err))
			}
		})
	}

	// Forward bus reconcile requests into the engine's request channel.
	reconcileEvents, unsub := events.Subscribe[events.ReconcileRequested](d.bus, 4)
	d.workers.Go(func() {
		for evt := range reconcileEvents {
			slog.Debug("Reconcile requested", slog.String("reason", evt.Reason))
			select {
			case d.reconcileCh <- struct{}{}:
			default:
				// One request is already pending; coalesce.
			}
		}
	})

	if _, err := d.scheduler.NewJob(
		gocron.DurationJob(metricsSyncInterval),
		gocron.NewTask(d.syncMetrics),
		gocron.WithName("metrics-sync"),
	); err != nil {
		unsub()
		return fmt.Errorf("failed to schedule metrics sync: %w", err)
	}
	d.scheduler.Start()

	err := d.engine.Run(runCtx)

	// Shutdown path: stop periodic jobs, close the event plumbing, wait for
	// workers, then release external resources.
	cancel()
	if serr := d.scheduler.Shutdown(); serr != nil {
		slog.Warn("Scheduler shutdown failed", logfields.Error(serr))
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer stopCancel()
	if serr := d.admin.Stop(stopCtx); serr != nil {
		slog.Warn("Admin server shutdown failed", logfields.Error(serr))
	}
	d.bus.Close()
	unsub()
	if werr := d.workers.StopAndWait(stopCtx); werr != nil {
		slog.Warn("Workers did not stop in time", logfields.Error(werr))
	}
	d.closeAll()

	return err
}

// Engine exposes the engine for status consumers.
func (d *Daemon) Engine() *poller.Engine { return d.engine }

// syncMetrics is the sole writer of the collector gauges: it copies the
// engine snapshot into the polling status and point count gauges and sweeps
// the per-point state for active failure streaks. The engine itself only
// touches counters and histograms at the event source.
func (d *Daemon) syncMetrics() {
	snap := d.engine.GetSnapshot()
	d.collector.SetMonitoredPointCount(snap.PointCount)

	failing := 0
	for _, p := range snap.Points {
		if p.ConsecutiveErrors > 0 {
			failing++
		}
	}
	d.collector.SetFailingPointCount(failing)

	d.collector.SetPollingStatus(
		snap.Status.Enabled,
		snap.Status.Connected,
		snap.Status.Message,
		snap.Status.SimulatedSource,
	)
}

func (d *Daemon) closeAll() {
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			slog.Warn("Failed to close resource", logfields.Error(err))
		}
	}
	d.closers = nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
