package catalog

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := ParseConfig(flag.NewFlagSet("catalog", flag.ContinueOnError), nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != ":8092" || cfg.DBPath != "data/catalog.db" || cfg.MaxConns != 256 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DatabaseURL != "" {
		t.Fatalf("database url = %q, want empty", cfg.DatabaseURL)
	}
}

func TestParseConfigOverrides(t *testing.T) {
	t.Setenv("CARDCLASH_CATALOG_DATABASE_URL", "postgres://localhost/cardclash")
	args := []string{"-http-addr", "127.0.0.1:9100", "-max-conns", "8"}
	cfg, err := ParseConfig(flag.NewFlagSet("catalog", flag.ContinueOnError), args)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.HTTPAddr != "127.0.0.1:9100" || cfg.MaxConns != 8 {
		t.Fatalf("unexpected flags: %+v", cfg)
	}
	if cfg.DatabaseURL != "postgres://localhost/cardclash" {
		t.Fatalf("database url = %q", cfg.DatabaseURL)
	}
}
