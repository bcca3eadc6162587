package client

import (
	"context"
	"slices"
	"time"

	"github.com/louisbranch/cardclash/internal/services/community/domain"
)

// recentDiscussionLimit caps RecentDiscussions.
const recentDiscussionLimit = 5

// LoadDiscussions replaces the discussion mirror from the community source.
func (c *Client) LoadDiscussions(ctx context.Context) error {
	return load(ctx, c, CollectionDiscussions, c.community.ListDiscussions, func(items []domain.Discussion) {
		mirror := make([]domain.Discussion, 0, len(items))
		for _, d := range items {
			mirror = append(mirror, d.Clone())
		}
		c.discussions = mirror
	})
}

// LoadContributors replaces the contributor mirror from the community source.
func (c *Client) LoadContributors(ctx context.Context) error {
	return load(ctx, c, CollectionContributors, c.community.ListContributors, func(items []domain.Contributor) {
		c.contributors = slices.Clone(items)
	})
}

// LoadStats replaces the community stats snapshot.
func (c *Client) LoadStats(ctx context.Context) error {
	return load(ctx, c, CollectionStats, c.community.Stats, func(stats domain.CommunityStats) {
		c.stats = stats
	})
}

// Discussions returns a copy of the discussion mirror.
func (c *Client) Discussions() []domain.Discussion {
	return c.filterDiscussions(func(domain.Discussion) bool { return true })
}

// HotDiscussions returns the discussions flagged hot, in mirror order.
func (c *Client) HotDiscussions() []domain.Discussion {
	return c.filterDiscussions(func(d domain.Discussion) bool { return d.Hot })
}

// RecentDiscussions returns up to five discussions, newest first.
func (c *Client) RecentDiscussions() []domain.Discussion {
	all := c.Discussions()
	sortByTimeDesc(all, func(d domain.Discussion) time.Time { return d.CreatedAt })
	if len(all) > recentDiscussionLimit {
		all = all[:recentDiscussionLimit]
	}
	return all
}

func (c *Client) filterDiscussions(keep func(domain.Discussion) bool) []domain.Discussion {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Discussion, 0, len(c.discussions))
	for _, d := range c.discussions {
		if keep(d) {
			out = append(out, d.Clone())
		}
	}
	return out
}

// Contributors returns a copy of the contributor mirror.
func (c *Client) Contributors() []domain.Contributor {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.contributors)
}

// Stats returns the community stats snapshot.
func (c *Client) Stats() domain.CommunityStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
