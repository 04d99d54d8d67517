package config

import (
	"log/slog"
	"os"
)

// SetupLogging installs the default slog logger according to the logging
// config. The verbose flag from the CLI overrides the configured level.
func (c *Config) SetupLogging(verbose bool) {
	level := slog.LevelInfo
	switch c.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	if verbose {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}
