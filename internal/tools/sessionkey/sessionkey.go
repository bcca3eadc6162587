// Package sessionkey generates session signing keys and mints tokens for
// local development.
package sessionkey

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/louisbranch/cardclash/internal/services/datastore/auth"
)

// Keygen generates a session key pair and writes shell exports.
func Keygen(out io.Writer, reader io.Reader) error {
	if out == nil {
		return errors.New("output is required")
	}
	publicKey, privateKey, err := auth.GenerateKeyPair(reader)
	if err != nil {
		return fmt.Errorf("generate session key: %w", err)
	}
	if _, err := fmt.Fprintf(out, "export CARDCLASH_SESSION_PRIVATE_KEY=%s\n", privateKey); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "export CARDCLASH_SESSION_PUBLIC_KEY=%s\n", publicKey); err != nil {
		return err
	}
	return nil
}

// Mint signs a session token for userID and writes it on its own line.
func Mint(out io.Writer, cfg auth.Config, userID, email string, ttl time.Duration) error {
	if out == nil {
		return errors.New("output is required")
	}
	token, err := auth.Mint(cfg, userID, email, ttl)
	if err != nil {
		return fmt.Errorf("mint session token: %w", err)
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
