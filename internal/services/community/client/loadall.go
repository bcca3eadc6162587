package client

import (
	"context"
	"errors"

	"github.com/louisbranch/cardclash/internal/services/community/domain"
	"golang.org/x/sync/errgroup"
)

// LoadAll fires every load concurrently. A failing load does not cancel the
// others; the returned error joins every failure.
func (c *Client) LoadAll(ctx context.Context, session domain.Session) error {
	loads := []func(context.Context) error{
		c.LoadEvents,
		func(ctx context.Context) error { return c.LoadParticipations(ctx, session) },
		c.LoadNews,
		c.LoadDiscussions,
		c.LoadContributors,
		c.LoadStats,
	}
	errs := make([]error, len(loads))

	var g errgroup.Group
	for i, fn := range loads {
		g.Go(func() error {
			errs[i] = fn(ctx)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
