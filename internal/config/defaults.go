package config

import "time"

// Fixed internal periods. These are deliberately not part of the
// configuration surface; the poll interval is the only user-tunable cadence.
const (
	// DefaultPollIntervalMS is the poll cadence when none is configured.
	DefaultPollIntervalMS = 1000

	// DefaultMaxConcurrentReads bounds the read fan-out. 0 means unbounded.
	DefaultMaxConcurrentReads = 16

	// ReconcileInterval is how often the monitored point set is refreshed
	// from the point source.
	ReconcileInterval = 60 * time.Second

	// MetadataRefreshInterval is how often driver runtime metadata is
	// forwarded to the integrity sink.
	MetadataRefreshInterval = 30 * time.Second

	// ErrorCooldown is the delay after an unhandled cycle error before the
	// loop tries again. Longer than the poll interval on purpose.
	ErrorCooldown = 10 * time.Second

	// ReadFailureWarnThreshold is the consecutive failure count at which a
	// point is surfaced as a warning.
	ReadFailureWarnThreshold = 10
)

func applyDefaults(cfg *Config) {
	if cfg.Monitoring.PollIntervalMS == 0 {
		cfg.Monitoring.PollIntervalMS = DefaultPollIntervalMS
	}
	if cfg.PointSource.Backend == "" {
		cfg.PointSource.Backend = "file"
	}
	if cfg.Broadcast.SubjectPrefix == "" {
		cfg.Broadcast.SubjectPrefix = "pointwatch.points"
	}
	if cfg.Admin.Listen == "" {
		cfg.Admin.Listen = ":8385"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}
