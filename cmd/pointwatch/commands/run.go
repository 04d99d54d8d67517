package commands

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/pointwatch/internal/config"
	"git.home.luguber.info/inful/pointwatch/internal/daemon"
	"git.home.luguber.info/inful/pointwatch/internal/driver"
	"git.home.luguber.info/inful/pointwatch/internal/errors"
	"git.home.luguber.info/inful/pointwatch/internal/logfields"
	"git.home.luguber.info/inful/pointwatch/internal/version"
)

// RunCmd implements the 'run' command.
type RunCmd struct {
	Simulate bool `help:"Use the built-in simulated driver instead of real hardware"`
}

func (r *RunCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	slog.Info("Starting pointwatch",
		slog.String("version", version.Version),
		slog.String("config", root.Config),
		slog.Bool("simulate", r.Simulate))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	drv, err := r.buildDriver(ctx, cfg)
	if err != nil {
		return err
	}

	d, err := daemon.New(cfg, drv)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	if err := d.Run(ctx); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}
	slog.Info("Daemon stopped")
	return nil
}

// buildDriver selects the driver backend. Only the simulated driver is
// compiled into this build; real drivers are provided by downstream builds
// that link their own driver package.
func (r *RunCmd) buildDriver(ctx context.Context, cfg *config.Config) (driver.Driver, error) {
	if !r.Simulate {
		return nil, errors.ValidationError(
			"no hardware driver is compiled into this build, use --simulate or a driver-enabled build")
	}

	sim := driver.NewSimDriver()
	sim.SetLive(true)
	if err := r.seedSimulation(ctx, cfg, sim); err != nil {
		return nil, err
	}
	return sim, nil
}

// seedSimulation gives every configured point an initial value and starts a
// background mutator so change detection has something to detect.
func (r *RunCmd) seedSimulation(ctx context.Context, cfg *config.Config, sim *driver.SimDriver) error {
	source, closeSource, err := buildSource(cfg.PointSource)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSource(); cerr != nil {
			slog.Warn("Failed to close point source", logfields.Error(cerr))
		}
	}()

	names, err := source.ListPointNames(ctx, cfg.Monitoring.PointSourceID)
	if err != nil {
		return fmt.Errorf("failed to seed simulation: %w", err)
	}
	for i, name := range names {
		sim.SetValue(name, float64(i))
	}
	slog.Info("Simulation seeded", logfields.PointCount(len(names)))

	// Nudge a random point a few times per poll interval.
	go func() {
		interval := cfg.Monitoring.PollInterval() * 3
		if interval <= 0 {
			interval = 3 * time.Second
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if len(names) == 0 {
					continue
				}
				name := names[rand.Intn(len(names))]
				sim.SetValue(name, rand.Float64()*100)
			}
		}
	}()
	return nil
}
