package config

import (
	"fmt"

	"git.home.luguber.info/inful/pointwatch/internal/errors"
)

// Validate checks the configuration for inconsistencies that would prevent
// the service from running. Defaults are assumed to be applied already.
func (c *Config) Validate() error {
	if c.Monitoring.Enabled && c.Monitoring.AutoLoadPoints {
		if c.Monitoring.PointSourceID == "" {
			return errors.ValidationError("monitoring.point_source_id is required when auto_load_points is enabled")
		}
		if c.PointSource.Path == "" {
			return errors.ValidationError("point_source.path is required when auto_load_points is enabled")
		}
	}

	switch c.PointSource.Backend {
	case "file", "sqlite":
	default:
		return errors.ValidationError(
			fmt.Sprintf("unknown point_source.backend %q (expected file or sqlite)", c.PointSource.Backend))
	}

	if c.PointSource.Watch && c.PointSource.Backend != "file" {
		return errors.ValidationError("point_source.watch is only supported for the file backend")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.ValidationError(fmt.Sprintf("unknown logging.level %q", c.Logging.Level))
	}

	return nil
}
