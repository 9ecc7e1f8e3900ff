// Package config provides configuration loading for acrd.
package config

import (
	"fmt"
	"time"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreNATS   = "nats"
)

// Config is the root acrd configuration.
type Config struct {
	Logging LoggingConfig `koanf:"logging"`
	Store   StoreConfig   `koanf:"store"`
	Report  ReportConfig  `koanf:"report"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// StoreConfig selects where version history is kept.
type StoreConfig struct {
	// Backend is "memory" (in-process, lost on exit) or "nats"
	// (JetStream key-value bucket).
	Backend string `koanf:"backend"`

	NATSURL          string   `koanf:"nats_url"`
	NATSBucket       string   `koanf:"nats_bucket"`
	NATSToken        Secret   `koanf:"nats_token"`
	NATSTimeout      Duration `koanf:"nats_timeout"`
	NATSReconnectMax int      `koanf:"nats_reconnect_max"`
}

// ReportConfig carries report-building knobs.
type ReportConfig struct {
	// DefaultEdition is used when a command does not name one.
	DefaultEdition string `koanf:"default_edition"`

	// DefaultStrategy is the batch aggregation strategy when a command
	// does not name one.
	DefaultStrategy string `koanf:"default_strategy"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Store.Backend == "" {
		cfg.Store.Backend = StoreMemory
	}
	if cfg.Store.NATSURL == "" {
		cfg.Store.NATSURL = "nats://localhost:4222"
	}
	if cfg.Store.NATSBucket == "" {
		cfg.Store.NATSBucket = "acr_versions"
	}
	if cfg.Store.NATSTimeout == 0 {
		cfg.Store.NATSTimeout = Duration(5 * time.Second)
	}
	if cfg.Store.NATSReconnectMax == 0 {
		cfg.Store.NATSReconnectMax = 10
	}

	if cfg.Report.DefaultEdition == "" {
		cfg.Report.DefaultEdition = "vpat24-wcag"
	}
	if cfg.Report.DefaultStrategy == "" {
		cfg.Report.DefaultStrategy = "conservative"
	}
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	switch c.Store.Backend {
	case StoreMemory:
	case StoreNATS:
		if c.Store.NATSURL == "" {
			return fmt.Errorf("store.nats_url is required for the nats backend")
		}
		if c.Store.NATSTimeout.Duration() <= 0 {
			return fmt.Errorf("store.nats_timeout must be > 0")
		}
	default:
		return fmt.Errorf("store backend must be 'memory' or 'nats', got %q", c.Store.Backend)
	}

	switch c.Report.DefaultStrategy {
	case "conservative", "optimistic":
	default:
		return fmt.Errorf("report default_strategy must be 'conservative' or 'optimistic', got %q",
			c.Report.DefaultStrategy)
	}

	return nil
}
