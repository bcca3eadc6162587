// Package seed parses seed command flags and loads demo data.
package seed

import (
	"context"
	"flag"
	"fmt"
	"io"

	"go.uber.org/zap"

	entrypoint "github.com/louisbranch/cardclash/internal/platform/cmd"
	"github.com/louisbranch/cardclash/internal/seed"
)

// Config holds seed command configuration.
type Config struct {
	DatastorePath      string `env:"CARDCLASH_DATASTORE_DB_PATH" envDefault:"data/datastore.db"`
	CatalogPath        string `env:"CARDCLASH_CATALOG_DB_PATH" envDefault:"data/catalog.db"`
	CatalogDatabaseURL string `env:"CARDCLASH_CATALOG_DATABASE_URL"`
	FixturePath        string `env:"CARDCLASH_SEED_FIXTURE"`
	Verbose            bool
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DatastorePath, "datastore-db", cfg.DatastorePath, "datastore SQLite path")
	fs.StringVar(&cfg.CatalogPath, "catalog-db", cfg.CatalogPath, "catalog SQLite path")
	fs.StringVar(&cfg.CatalogDatabaseURL, "catalog-database-url", cfg.CatalogDatabaseURL, "catalog Postgres URL (overrides -catalog-db)")
	fs.StringVar(&cfg.FixturePath, "fixture", cfg.FixturePath, "fixture YAML (default: embedded demo)")
	fs.BoolVar(&cfg.Verbose, "v", false, "verbose output")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run loads the fixture into the configured stores.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	if out == nil {
		out = io.Discard
	}
	logger, err := entrypoint.NewLogger(entrypoint.ServiceSeed)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return entrypoint.RunWithTelemetryAndOptions(ctx, entrypoint.ServiceSeed, entrypoint.RunOptions{Logger: logger}, func(ctx context.Context) error {
		summary, err := seed.Run(ctx, seed.Config{
			DatastorePath:      cfg.DatastorePath,
			CatalogPath:        cfg.CatalogPath,
			CatalogDatabaseURL: cfg.CatalogDatabaseURL,
			FixturePath:        cfg.FixturePath,
			Verbose:            cfg.Verbose,
		}, out)
		if err != nil {
			return err
		}
		logger.Info("seeded",
			zap.Int("events", summary.Events),
			zap.Int("news", summary.News),
			zap.Int("discussions", summary.Discussions),
			zap.Int("contributors", summary.Contributors),
			zap.Int("catalog", summary.Catalog),
		)
		fmt.Fprintf(out, "seeded %d events, %d news, %d discussions, %d contributors, %d catalog entries\n",
			summary.Events, summary.News, summary.Discussions, summary.Contributors, summary.Catalog)
		return nil
	})
}
