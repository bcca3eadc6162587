// Package sessionkey builds the session-key command tree.
package sessionkey

import (
	"crypto/rand"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/louisbranch/cardclash/internal/services/datastore/auth"
	"github.com/louisbranch/cardclash/internal/tools/sessionkey"
)

const defaultTTL = 24 * time.Hour

// NewCommand returns the root session-key command writing to out.
func NewCommand(out io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "session-key",
		Short:         "Manage datastore session keys and tokens",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.AddCommand(newKeygenCommand(), newMintCommand())
	return root
}

func newKeygenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Print a new Ed25519 session key pair as shell exports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sessionkey.Keygen(cmd.OutOrStdout(), rand.Reader)
		},
	}
}

func newMintCommand() *cobra.Command {
	var (
		userID string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Print a signed session token (needs CARDCLASH_SESSION_PRIVATE_KEY)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := auth.LoadConfigFromEnv(time.Now)
			if err != nil {
				return err
			}
			if cfg.PrivateKey == nil {
				return errors.New("CARDCLASH_SESSION_PRIVATE_KEY is required to mint tokens")
			}
			return sessionkey.Mint(cmd.OutOrStdout(), cfg, userID, email, ttl)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id placed in the token subject")
	cmd.Flags().StringVar(&email, "email", "", "email claim, needed for starter pack redemption")
	cmd.Flags().DurationVar(&ttl, "ttl", defaultTTL, "token lifetime")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
