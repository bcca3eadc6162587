// Package cardclash builds the cardclash command line client.
package cardclash

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/louisbranch/cardclash/internal/services/community/client"
)

const (
	defaultNewsLimit     = 5
	defaultWatchInterval = 30 * time.Second
)

// Options wires the command tree. Zero values fall back to stdout, the real
// datastore and a no-op logger.
type Options struct {
	Out    io.Writer
	Open   OpenFunc
	Logger *zap.Logger
	Viper  *viper.Viper
}

type cli struct {
	opts    Options
	cfgFile string
}

// NewCommand returns the root cardclash command.
func NewCommand(opts Options) *cobra.Command {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Open == nil {
		opts.Open = Open
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Viper == nil {
		opts.Viper = viper.New()
	}
	c := &cli{opts: opts}

	root := &cobra.Command{
		Use:           "cardclash",
		Short:         "Browse cardclash events, news and community activity",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(opts.Out)
	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "profile file (default "+DefaultProfilePath()+")")

	root.AddCommand(
		c.eventsCommand(),
		c.joinCommand(),
		c.leaveCommand(),
		c.newsCommand(),
		c.discussionsCommand(),
		c.contributorsCommand(),
		c.statsCommand(),
		c.redeemCommand(),
		c.watchCommand(),
	)
	return root
}

// withRuntime loads the profile, opens a runtime, runs fn and releases the
// runtime.
func (c *cli) withRuntime(ctx context.Context, fn func(ctx context.Context, rt *Runtime) error) error {
	profile, err := LoadProfile(c.opts.Viper, c.cfgFile)
	if err != nil {
		return err
	}
	rt, err := c.opts.Open(ctx, profile, c.opts.Logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			c.opts.Logger.Warn("close runtime", zap.Error(err))
		}
	}()
	return fn(ctx, rt)
}

// resultError turns a failed intent into a command error carrying the
// localized message.
func resultError(res client.Result) error {
	if res.OK() {
		return nil
	}
	return fmt.Errorf("%s (%s)", res.Message, res.Code())
}

func (c *cli) eventsCommand() *cobra.Command {
	var active, upcoming bool
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if active && upcoming {
				return errors.New("--active and --upcoming are mutually exclusive")
			}
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				if err := rt.Client.LoadEvents(ctx); err != nil {
					return err
				}
				if err := rt.Client.LoadParticipations(ctx, rt.Session); err != nil {
					c.opts.Logger.Warn("load participations", zap.Error(err))
				}
				events := rt.Client.Events()
				switch {
				case active:
					events = rt.Client.ActiveEvents()
				case upcoming:
					events = rt.Client.UpcomingEvents()
				}
				return renderEvents(cmd.OutOrStdout(), rt.Client, events)
			})
		},
	}
	cmd.Flags().BoolVar(&active, "active", false, "only active events")
	cmd.Flags().BoolVar(&upcoming, "upcoming", false, "only upcoming events")
	return cmd
}

func (c *cli) joinCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "join <event-id>",
		Short: "Join an active event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				if err := rt.Client.Reconcile(ctx, rt.Session); err != nil {
					c.opts.Logger.Warn("refresh before join", zap.Error(err))
				}
				if err := resultError(rt.Client.JoinEvent(ctx, rt.Session, args[0])); err != nil {
					return err
				}
				event, _ := rt.Client.Event(args[0])
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "joined %s (%d/%d)\n", event.Title, event.CurrentParticipants, event.MaxParticipants)
				return err
			})
		},
	}
}

func (c *cli) leaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <event-id>",
		Short: "Leave an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				if err := rt.Client.Reconcile(ctx, rt.Session); err != nil {
					c.opts.Logger.Warn("refresh before leave", zap.Error(err))
				}
				if err := resultError(rt.Client.LeaveEvent(ctx, rt.Session, args[0])); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "left %s\n", args[0])
				return err
			})
		},
	}
}

func (c *cli) newsCommand() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "news",
		Short: "Show the latest published news",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				if err := rt.Client.LoadNews(ctx); err != nil {
					return err
				}
				return renderNews(cmd.OutOrStdout(), rt.Client, rt.Client.LatestNews(limit))
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", defaultNewsLimit, "number of items to show")
	return cmd
}

func (c *cli) discussionsCommand() *cobra.Command {
	var hot, recent bool
	cmd := &cobra.Command{
		Use:   "discussions",
		Short: "List community discussions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if hot && recent {
				return errors.New("--hot and --recent are mutually exclusive")
			}
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				if err := rt.Client.LoadDiscussions(ctx); err != nil {
					return err
				}
				discussions := rt.Client.Discussions()
				switch {
				case hot:
					discussions = rt.Client.HotDiscussions()
				case recent:
					discussions = rt.Client.RecentDiscussions()
				}
				return renderDiscussions(cmd.OutOrStdout(), rt.Client, discussions)
			})
		},
	}
	cmd.Flags().BoolVar(&hot, "hot", false, "only hot discussions")
	cmd.Flags().BoolVar(&recent, "recent", false, "the five most recent discussions")
	return cmd
}

func (c *cli) contributorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "contributors",
		Short: "List top contributors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				if err := rt.Client.LoadContributors(ctx); err != nil {
					return err
				}
				return renderContributors(cmd.OutOrStdout(), rt.Client.Contributors())
			})
		},
	}
}

func (c *cli) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show community statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				if err := rt.Client.LoadStats(ctx); err != nil {
					return err
				}
				return renderStats(cmd.OutOrStdout(), rt.Client.Stats())
			})
		},
	}
}

func (c *cli) redeemCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "redeem",
		Short: "Redeem the starter pack for the session email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				grant, res := rt.Client.RedeemStarterPack(ctx, rt.Session)
				if err := resultError(res); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "starter pack granted to %s\n", grant.Email)
				return err
			})
		},
	}
}

func (c *cli) watchCommand() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Refresh events on an interval and print active events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}
			return c.withRuntime(cmd.Context(), func(ctx context.Context, rt *Runtime) error {
				out := cmd.OutOrStdout()
				if err := rt.Client.LoadAll(ctx, rt.Session); err != nil {
					c.opts.Logger.Warn("initial load", zap.Error(err))
				}
				if err := renderEvents(out, rt.Client, rt.Client.ActiveEvents()); err != nil {
					return err
				}

				g, ctx := errgroup.WithContext(ctx)
				g.Go(func() error {
					return rt.Client.RefreshEvery(ctx, rt.Session, interval)
				})
				g.Go(func() error {
					ticker := time.NewTicker(interval)
					defer ticker.Stop()
					for {
						select {
						case <-ctx.Done():
							return ctx.Err()
						case <-ticker.C:
							if err := renderEvents(out, rt.Client, rt.Client.ActiveEvents()); err != nil {
								return err
							}
						}
					}
				})
				if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", defaultWatchInterval, "refresh interval")
	return cmd
}
