package client

import (
	"context"
	"slices"
	"time"

	"github.com/louisbranch/cardclash/internal/services/community/domain"
)

// LoadNews replaces the news mirror with published items, newest first.
// Unpublished items returned by the store are dropped.
func (c *Client) LoadNews(ctx context.Context) error {
	return load(ctx, c, CollectionNews, c.news.ListPublishedNews, func(items []domain.NewsItem) {
		mirror := make([]domain.NewsItem, 0, len(items))
		for _, item := range items {
			if item.Published {
				mirror = append(mirror, item)
			}
		}
		sortByTimeDesc(mirror, func(n domain.NewsItem) time.Time { return n.PublishedAt })
		c.newsMirror = mirror
	})
}

// News returns a copy of the news mirror.
func (c *Client) News() []domain.NewsItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.newsMirror)
}

// LatestNews returns the first limit items of the news mirror. A limit of
// zero or less returns no items.
func (c *Client) LatestNews(limit int) []domain.NewsItem {
	if limit <= 0 {
		return []domain.NewsItem{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	limit = min(limit, len(c.newsMirror))
	out := make([]domain.NewsItem, limit)
	copy(out, c.newsMirror[:limit])
	return out
}
