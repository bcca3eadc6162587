// Package catalog parses catalog service flags and launches the service.
package catalog

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/cardclash/internal/platform/cmd"
	"github.com/louisbranch/cardclash/internal/platform/discovery"
	server "github.com/louisbranch/cardclash/internal/services/catalog/app"
)

// Config holds catalog command configuration.
type Config struct {
	HTTPAddr    string `env:"CARDCLASH_CATALOG_HTTP_ADDR"`
	DatabaseURL string `env:"CARDCLASH_CATALOG_DATABASE_URL"`
	DBPath      string `env:"CARDCLASH_CATALOG_DB_PATH" envDefault:"data/catalog.db"`
	MaxConns    int    `env:"CARDCLASH_CATALOG_MAX_CONNS" envDefault:"256"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = discovery.HTTPListenAddr(discovery.ServiceCatalog)
	}
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "The catalog HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite file used when no database URL is set")
	fs.IntVar(&cfg.MaxConns, "max-conns", cfg.MaxConns, "Maximum concurrent HTTP connections")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the catalog HTTP service.
func Run(ctx context.Context, cfg Config) error {
	logger, err := entrypoint.NewLogger(entrypoint.ServiceCatalog)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	options := entrypoint.RunOptions{Logger: logger}
	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceCatalog, options, func(ctx context.Context) error {
		return server.Run(ctx, server.Config{
			HTTPAddr:    cfg.HTTPAddr,
			DatabaseURL: cfg.DatabaseURL,
			DBPath:      cfg.DBPath,
			MaxConns:    cfg.MaxConns,
			Logger:      logger,
		})
	})
}
