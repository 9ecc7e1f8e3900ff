// Package main implements the acrd CLI for evaluating accessibility scan
// results and managing conformance report history.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/acrd/internal/config"
	"github.com/fyrsmithlabs/acrd/internal/logging"
	"github.com/fyrsmithlabs/acrd/internal/versioning"
)

var (
	// configPath overrides the default config file location
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "acrd",
	Short: "Accessibility conformance report tooling",
	Long: `acrd evaluates accessibility scan results against WCAG criteria,
builds conformance reports, aggregates multi-document batches, and keeps
immutable version history of published reports.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/acrd/config.yaml)")
}

// setup loads configuration and builds the logger every subcommand shares.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger, err := logging.New(&logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Fields: map[string]string{"service": "acrd"},
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openStore builds the version store named by the config. The returned
// cleanup closes the broker connection for the nats backend and is a no-op
// for memory.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (versioning.Store, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreMemory:
		logger.Warn("using in-memory version store, history is lost on exit")
		return versioning.NewMemoryStore(), func() {}, nil

	case config.StoreNATS:
		opts := []nats.Option{
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(cfg.Store.NATSReconnectMax),
			nats.ReconnectWait(1 * time.Second),
			nats.Timeout(cfg.Store.NATSTimeout.Duration()),
		}
		if cfg.Store.NATSToken.IsSet() {
			opts = append(opts, nats.Token(cfg.Store.NATSToken.Value()))
		}

		nc, err := nats.Connect(cfg.Store.NATSURL, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.Store.NATSURL, err)
		}
		logger.Info("connected to NATS", zap.String("url", cfg.Store.NATSURL))

		store, err := versioning.NewNATSStore(ctx, nc, cfg.Store.NATSBucket, logger)
		if err != nil {
			nc.Close()
			return nil, nil, err
		}
		return store, nc.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
