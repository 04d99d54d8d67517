// Package config loads and validates the pointwatch configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pointwatch/internal/errors"
)

// Config is the root configuration document.
type Config struct {
	Monitoring  MonitoringConfig  `yaml:"monitoring"`
	PointSource PointSourceConfig `yaml:"point_source"`
	Broadcast   BroadcastConfig   `yaml:"broadcast"`
	Admin       AdminConfig       `yaml:"admin"`
	Logging     LoggingConfig     `yaml:"logging"`
}

// MonitoringConfig controls the polling engine.
type MonitoringConfig struct {
	Enabled        bool   `yaml:"enabled"`
	AutoLoadPoints bool   `yaml:"auto_load_points"`
	PointSourceID  string `yaml:"point_source_id"`
	PollIntervalMS uint   `yaml:"poll_interval_ms"`
	// MaxConcurrentReads bounds the read fan-out. nil applies the default;
	// an explicit 0 disables the bound.
	MaxConcurrentReads *int `yaml:"max_concurrent_reads"`
}

// PollInterval returns the poll cadence as a duration.
func (m MonitoringConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalMS) * time.Millisecond
}

// ReadConcurrency resolves the fan-out bound (0 = unbounded).
func (m MonitoringConfig) ReadConcurrency() int {
	if m.MaxConcurrentReads == nil {
		return DefaultMaxConcurrentReads
	}
	if *m.MaxConcurrentReads < 0 {
		return 0
	}
	return *m.MaxConcurrentReads
}

// PointSourceConfig selects the point source backend.
type PointSourceConfig struct {
	Backend string `yaml:"backend"` // "file" or "sqlite"
	Path    string `yaml:"path"`
	Watch   bool   `yaml:"watch"` // file backend only
}

// BroadcastConfig configures the NATS transport. An empty URL selects the
// logging publisher.
type BroadcastConfig struct {
	NATSURL       string `yaml:"nats_url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

// AdminConfig configures the admin HTTP server.
type AdminConfig struct {
	Listen string `yaml:"listen"`
}

// LoggingConfig configures slog output.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	// Load .env file if it exists; absence is not an error.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Note: .env file couldn't be loaded: %v\n", err)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError("configuration file not found").WithContext("path", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapConfig(err, "read config file")
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, errors.WrapConfig(err, "unmarshal config")
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
