package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/pointwatch/internal/logfields"
)

// PointsCmd implements the 'points' command.
type PointsCmd struct {
	SourceID string `help:"Override the configured point source id"`
}

func (p *PointsCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return err
	}

	sourceID := cfg.Monitoring.PointSourceID
	if p.SourceID != "" {
		sourceID = p.SourceID
	}

	// Interruptible: a hung backend read should not survive Ctrl-C.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source, closeSource, err := buildSource(cfg.PointSource)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := closeSource(); cerr != nil {
			slog.Warn("Failed to close point source", logfields.Error(cerr))
		}
	}()

	names, err := source.ListPointNames(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("failed to list points: %w", err)
	}

	fmt.Fprintf(os.Stdout, "%d point(s) for source %q:\n", len(names), sourceID)
	for _, name := range names {
		fmt.Fprintln(os.Stdout, "  "+name)
	}
	return nil
}
