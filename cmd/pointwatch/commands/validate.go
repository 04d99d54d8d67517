package commands

import (
	"fmt"
	"log/slog"
)

// ValidateCmd implements the 'validate' command.
type ValidateCmd struct{}

func (v *ValidateCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	transport := "log"
	if cfg.Broadcast.NATSURL != "" {
		transport = "nats"
	}
	slog.Info("Configuration valid",
		slog.String("config", root.Config),
		slog.Bool("monitoring_enabled", cfg.Monitoring.Enabled),
		slog.String("point_source_backend", cfg.PointSource.Backend),
		slog.String("broadcast_transport", transport),
		slog.String("admin_listen", cfg.Admin.Listen))
	return nil
}
