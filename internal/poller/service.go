package poller

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pointwatch/internal/broadcast"
	"git.home.luguber.info/inful/pointwatch/internal/config"
	"git.home.luguber.info/inful/pointwatch/internal/driver"
	"git.home.luguber.info/inful/pointwatch/internal/errors"
	"git.home.luguber.info/inful/pointwatch/internal/logfields"
	"git.home.luguber.info/inful/pointwatch/internal/pointsource"
)

// Options configures the engine. Zero durations fall back to the fixed
// internal periods in the config package.
type Options struct {
	Config      config.MonitoringConfig
	Driver      driver.Driver
	Source      pointsource.Source
	Publisher   broadcast.Publisher
	RuntimeSink broadcast.RuntimeInfoSink
	Metrics     *Collector

	ReconcileInterval time.Duration
	MetadataInterval  time.Duration
	ErrorCooldown     time.Duration

	// ReconcileRequests pulls the next registry reconciliation forward
	// instead of waiting for the slow timer. Optional.
	ReconcileRequests <-chan struct{}
}

// Engine is the monitoring engine: one cooperative loop driving poll cycles,
// registry reconciliation, and metadata refresh on independent cadences.
type Engine struct {
	opts       Options
	store      *StateStore
	registry   *Registry
	fanout     *fanOut
	supervisor *supervisor
	status     *statusTracker

	lastReconcile time.Time
	lastMetadata  time.Time
}

// Snapshot is the admin-facing view of the engine.
type Snapshot struct {
	Status     CycleStatus  `json:"status"`
	PointCount int          `json:"point_count"`
	Points     []PointState `json:"points"`
}

// New creates an engine from options.
func New(opts Options) (*Engine, error) {
	if opts.Driver == nil {
		return nil, fmt.Errorf("driver is required")
	}
	if opts.Source == nil {
		return nil, fmt.Errorf("point source is required")
	}
	if opts.Publisher == nil {
		opts.Publisher = broadcast.LogPublisher{}
	}
	if opts.RuntimeSink == nil {
		opts.RuntimeSink = broadcast.LogPublisher{}
	}
	if opts.ReconcileInterval <= 0 {
		opts.ReconcileInterval = config.ReconcileInterval
	}
	if opts.MetadataInterval <= 0 {
		opts.MetadataInterval = config.MetadataRefreshInterval
	}
	if opts.ErrorCooldown <= 0 {
		opts.ErrorCooldown = config.ErrorCooldown
	}

	store := NewStateStore()
	e := &Engine{
		opts:     opts,
		store:    store,
		registry: NewRegistry(store),
		supervisor: &supervisor{
			driver: opts.Driver,
		},
		status: newStatusTracker(),
	}
	e.fanout = &fanOut{
		driver: opts.Driver,
		store:  store,
		detector: &detector{
			store:     store,
			publisher: opts.Publisher,
			metrics:   opts.Metrics,
			now:       time.Now,
		},
		concurrency:   opts.Config.ReadConcurrency(),
		warnThreshold: config.ReadFailureWarnThreshold,
	}
	return e, nil
}

// Status returns the current cycle status.
func (e *Engine) Status() CycleStatus { return e.status.Get() }

// GetSnapshot returns the admin view of status and per-point state.
func (e *Engine) GetSnapshot() Snapshot {
	return Snapshot{
		Status:     e.status.Get(),
		PointCount: e.registry.Len(),
		Points:     e.store.Snapshot(),
	}
}

// Run executes the engine until ctx is canceled. Cancellation is a clean
// stop, not an error. Only a failed initial point load returns an error.
func (e *Engine) Run(ctx context.Context) error {
	cfg := e.opts.Config

	if !cfg.Enabled || !cfg.AutoLoadPoints {
		slog.Info("Monitoring disabled, engine will not run",
			slog.Bool("enabled", cfg.Enabled),
			slog.Bool("auto_load_points", cfg.AutoLoadPoints))
		e.status.set(CycleStatus{
			State:   StateDisabled,
			Message: "monitoring disabled",
		})
		return nil
	}

	e.status.set(CycleStatus{State: StateInitializing, Enabled: true, Message: "loading point set"})

	if err := e.initialLoad(ctx); err != nil {
		if ctx.Err() != nil {
			e.markStopped()
			return nil
		}
		e.status.set(CycleStatus{
			State:   StateInitializing,
			Enabled: true,
			Message: fmt.Sprintf("point load failed: %v", err),
		})
		return err
	}

	slog.Info("Monitoring engine started",
		logfields.SourceID(cfg.PointSourceID),
		logfields.PointCount(e.registry.Len()),
		slog.Duration("poll_interval", cfg.PollInterval()))

	ticker := time.NewTicker(cfg.PollInterval())
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			e.markStopped()
			return nil
		}

		if err := e.safeCycle(ctx); err != nil {
			if ctx.Err() != nil {
				e.markStopped()
				return nil
			}
			// Unhandled cycle error: cool down before the next attempt so a
			// persistent fault cannot turn into a tight retry loop.
			slog.Error("Poll cycle failed unexpectedly", logfields.Error(err))
			if !sleepCtx(ctx, e.opts.ErrorCooldown) {
				e.markStopped()
				return nil
			}
			continue
		}

		e.maintenance(ctx)

		if !e.waitForTick(ctx, ticker) {
			e.markStopped()
			return nil
		}
	}
}

// initialLoad fetches the initial point set. Failure or emptiness is
// terminal for this run.
func (e *Engine) initialLoad(ctx context.Context) error {
	names, err := e.opts.Source.ListPointNames(ctx, e.opts.Config.PointSourceID)
	if err != nil {
		return errors.WrapConfig(err, "initial point load failed").
			WithContext("source_id", e.opts.Config.PointSourceID)
	}
	if len(names) == 0 {
		return errors.ConfigError("point source returned no points").
			WithContext("source_id", e.opts.Config.PointSourceID)
	}

	e.registry.Reconcile(names)
	now := time.Now()
	e.lastReconcile = now
	e.lastMetadata = now.Add(-e.opts.MetadataInterval) // first maintenance pass refreshes metadata
	return nil
}

// safeCycle runs one poll cycle with panic containment.
func (e *Engine) safeCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.InternalError("panic in poll cycle").WithContext("panic", fmt.Sprint(r))
		}
	}()
	return e.cycle(ctx)
}

// cycle executes one full pass: liveness check, fan-out, classification.
// Connection failures are absorbed here; only truly unexpected errors
// propagate to the cooldown path.
func (e *Engine) cycle(ctx context.Context) error {
	start := time.Now()
	cycleID := uuid.NewString()

	if err := e.supervisor.ensureConnected(ctx); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Warn("Cycle aborted, driver disconnected",
			logfields.CycleID(cycleID),
			logfields.Error(err))
		if e.opts.Metrics != nil {
			e.opts.Metrics.IncDegradedCycle()
		}
		e.finishCycle(CycleStatus{
			State:   StateDegraded,
			Enabled: true,
			Message: "driver disconnected",
		}, start)
		return nil
	}

	names := e.registry.Names()
	failed := e.fanout.run(ctx, cycleID, names)
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.AddReadFailures(failed)
	}

	status := CycleStatus{
		State:     StateRunning,
		Enabled:   true,
		Connected: true,
		Message:   "ok",
	}
	if cycleDegraded(failed, len(names)) {
		// Majority failure: treat the connection as suspect and let the next
		// cycle's liveness check sort it out.
		status.State = StateDegraded
		status.Connected = false
		status.Message = fmt.Sprintf("%d of %d reads failed", failed, len(names))
		if e.opts.Metrics != nil {
			e.opts.Metrics.IncDegradedCycle()
		}
		slog.Warn("Cycle degraded",
			logfields.CycleID(cycleID),
			logfields.FailedReads(failed),
			logfields.PointCount(len(names)))
	}

	e.finishCycle(status, start)
	return nil
}

func (e *Engine) finishCycle(status CycleStatus, start time.Time) {
	elapsed := time.Since(start)
	status.SimulatedSource = e.opts.Driver.Simulated()
	status.LastCycleDurationMS = float64(elapsed.Microseconds()) / 1000
	status.LastCycleAt = time.Now()
	e.status.set(status)
	if e.opts.Metrics != nil {
		e.opts.Metrics.RecordCycleDuration(elapsed)
	}
}

// maintenance runs the slow-cadence actions whose interval has elapsed.
// Each action tracks its own wall-clock last-run time, so the cadences stay
// independent of the poll tick count and of each other.
func (e *Engine) maintenance(ctx context.Context) {
	if time.Since(e.lastReconcile) >= e.opts.ReconcileInterval {
		e.reconcile(ctx)
	}
	if time.Since(e.lastMetadata) >= e.opts.MetadataInterval {
		e.refreshMetadata(ctx)
	}
}

// reconcile refreshes the monitored point set from the point source.
func (e *Engine) reconcile(ctx context.Context) {
	// Advance the clock even on failure so one broken fetch does not retry
	// on every poll tick.
	e.lastReconcile = time.Now()

	names, err := e.opts.Source.ListPointNames(ctx, e.opts.Config.PointSourceID)
	if err != nil {
		slog.Warn("Point set reconciliation failed",
			logfields.SourceID(e.opts.Config.PointSourceID),
			logfields.Error(err))
		return
	}
	if len(names) == 0 {
		// An empty refresh is indistinguishable from a misconfigured source;
		// keep the current set rather than silently dropping every point.
		slog.Warn("Point source returned no points, keeping current set",
			logfields.SourceID(e.opts.Config.PointSourceID))
		return
	}

	added, removed := e.registry.Reconcile(names)
	if len(added) == 0 && len(removed) == 0 {
		return
	}

	slog.Info("Point set reconciled",
		logfields.PointCount(e.registry.Len()),
		slog.Int("added", len(added)),
		slog.Int("removed", len(removed)))
}

// refreshMetadata forwards driver runtime metadata to the integrity sink.
// Failures are warnings only; the last-run clock always advances.
func (e *Engine) refreshMetadata(ctx context.Context) {
	e.lastMetadata = time.Now()

	info, err := e.opts.Driver.VersionInfo(ctx)
	if err != nil {
		slog.Warn("Driver version info unavailable", logfields.Error(err))
		return
	}

	var cycleMS float64
	if ct, err := e.opts.Driver.CycleTime(ctx); err != nil {
		slog.Warn("Driver cycle time unavailable", logfields.Error(err))
	} else {
		cycleMS = float64(ct.Microseconds()) / 1000
	}

	runtimeInfo := broadcast.DriverRuntimeInfo{
		RuntimeVersion:  info.RuntimeVersion,
		ProtocolVersion: info.ProtocolVersion,
		Connected:       info.Connected,
		Simulated:       info.Simulated,
		CycleTimeMS:     cycleMS,
		Timestamp:       time.Now(),
	}
	if err := e.opts.RuntimeSink.UpdateDriverRuntimeInfo(ctx, runtimeInfo); err != nil {
		slog.Warn("Runtime info forward failed", logfields.Error(err))
	}
}

// waitForTick blocks until the next poll tick, handling early reconcile
// requests in the meantime. Returns false on cancellation.
func (e *Engine) waitForTick(ctx context.Context, ticker *time.Ticker) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			return true
		case _, ok := <-e.opts.ReconcileRequests:
			if !ok {
				// Channel closed; stop listening by blocking on the others.
				e.opts.ReconcileRequests = nil
				continue
			}
			slog.Debug("Early reconciliation requested")
			e.reconcile(ctx)
		}
	}
}

func (e *Engine) markStopped() {
	slog.Info("Monitoring engine stopped")
	e.status.set(CycleStatus{
		State:   StateStopped,
		Message: "stopped",
	})
}

// sleepCtx sleeps for d unless ctx is canceled first. Returns false on
// cancellation.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
