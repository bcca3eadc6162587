// Package main provides a one-shot utility for session key generation and
// development token minting.
package main

import (
	"os"

	sessionkeycmd "github.com/louisbranch/cardclash/internal/cmd/sessionkey"
	"github.com/louisbranch/cardclash/internal/platform/config"
)

func main() {
	if _, err := config.LoadDotEnv(); err != nil {
		config.Exitf("load .env: %v", err)
	}
	if err := sessionkeycmd.NewCommand(os.Stdout).Execute(); err != nil {
		config.Exitf("session-key: %v", err)
	}
}
