// Package main runs the cardclash command line client.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	cardclashcmd "github.com/louisbranch/cardclash/internal/cmd/cardclash"
	entrypoint "github.com/louisbranch/cardclash/internal/platform/cmd"
	"github.com/louisbranch/cardclash/internal/platform/config"
)

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		config.Exitf("load .env: %v", err)
	}
	logger, err := entrypoint.NewLogger(entrypoint.ServiceCLI)
	if err != nil {
		config.Exitf("build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cardclashcmd.NewCommand(cardclashcmd.Options{Out: os.Stdout, Logger: logger})
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		config.Exitf("cardclash: %v", err)
	}
}
