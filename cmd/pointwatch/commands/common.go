package commands

import (
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pointwatch/internal/config"
	"git.home.luguber.info/inful/pointwatch/internal/pointsource"
)

// Global context passed to subcommands if we need to share global state later.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"config.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run      RunCmd      `cmd:"" help:"Run the monitoring daemon"`
	Validate ValidateCmd `cmd:"" help:"Validate the configuration file and exit"`
	Points   PointsCmd   `cmd:"" help:"List the point names the configured source resolves"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

// loadConfig loads and validates the configuration, then applies its logging
// settings (the --verbose flag still wins).
func loadConfig(root *CLI) (*config.Config, error) {
	cfg, err := config.Load(root.Config)
	if err != nil {
		return nil, err
	}
	cfg.SetupLogging(root.Verbose)
	return cfg, nil
}

// buildSource constructs the configured point-source backend. The returned
// close function is a no-op for backends without external resources.
func buildSource(cfg config.PointSourceConfig) (pointsource.Source, func() error, error) {
	switch cfg.Backend {
	case "sqlite":
		src, err := pointsource.NewSQLiteSource(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	default:
		return pointsource.NewFileSource(cfg.Path), func() error { return nil }, nil
	}
}
