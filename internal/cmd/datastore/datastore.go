// Package datastore parses datastore service flags and launches the service.
package datastore

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/cardclash/internal/platform/cmd"
	server "github.com/louisbranch/cardclash/internal/services/datastore/app"
)

// Config holds datastore command configuration.
type Config struct {
	Port int `env:"CARDCLASH_DATASTORE_PORT" envDefault:"8090"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The datastore gRPC server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the datastore gRPC API service.
func Run(ctx context.Context, cfg Config) error {
	logger, err := entrypoint.NewLogger(entrypoint.ServiceDatastore)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	options := entrypoint.RunOptions{Logger: logger}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceDatastore, options, func(ctx context.Context) error {
		return server.Run(ctx, cfg.Port, server.WithLogger(logger))
	})
}
