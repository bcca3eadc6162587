package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/louisbranch/cardclash/internal/services/datastore/storage"
)

// PutNews inserts or replaces one news item.
func (s *Store) PutNews(ctx context.Context, item storage.NewsItem) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" || strings.TrimSpace(item.Title) == "" {
		return fmt.Errorf("news id and title are required")
	}
	priority := strings.ToLower(strings.TrimSpace(item.Priority))
	if priority == "" {
		priority = "normal"
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO news (id, title, content, category, priority, published, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.Title, item.Content, item.Category, priority,
		boolToInt(item.Published), toMillis(item.PublishedAt),
	)
	if err != nil {
		return fmt.Errorf("put news: %w", err)
	}
	return nil
}

var newsOrderColumns = map[string]string{
	"published_at": "published_at",
	"priority":     "priority",
	"title":        "title",
}

// ListNews returns news items matching filter.
func (s *Store) ListNews(ctx context.Context, filter storage.NewsFilter, opts storage.ListOptions) ([]storage.NewsItem, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var q selectBuilder
	if filter.Published != nil {
		q.eq("published", boolToInt(*filter.Published))
	}
	q.eq("category", filter.Category)
	q.eq("priority", strings.ToLower(strings.TrimSpace(filter.Priority)))
	stmt, args, err := q.build(
		`SELECT id, title, content, category, priority, published, published_at FROM news`,
		opts, newsOrderColumns, "published_at DESC, id ASC",
	)
	if err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var out []storage.NewsItem
	for rows.Next() {
		var item storage.NewsItem
		var published int
		var publishedAt int64
		if err := rows.Scan(&item.ID, &item.Title, &item.Content, &item.Category, &item.Priority, &published, &publishedAt); err != nil {
			return nil, fmt.Errorf("list news: %w", err)
		}
		item.Published = published != 0
		item.PublishedAt = fromMillis(publishedAt)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return out, nil
}

// PutDiscussion inserts or replaces one discussion.
func (s *Store) PutDiscussion(ctx context.Context, d storage.Discussion) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("discussion id and title are required")
	}
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	createdAt := d.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now().UTC()
	}
	updatedAt := d.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO discussions (
		   id, title, content, author_id, author_name, author_avatar,
		   replies, likes, views, tags_json, created_at, updated_at, hot
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Content, d.AuthorID, d.AuthorName, d.AuthorAvatar,
		d.Replies, d.Likes, d.Views, string(tagsJSON),
		toMillis(createdAt), toMillis(updatedAt), boolToInt(d.Hot),
	)
	if err != nil {
		return fmt.Errorf("put discussion: %w", err)
	}
	return nil
}

var discussionOrderColumns = map[string]string{
	"created_at": "created_at",
	"updated_at": "updated_at",
	"replies":    "replies",
	"likes":      "likes",
	"views":      "views",
}

// ListDiscussions returns discussions matching filter.
func (s *Store) ListDiscussions(ctx context.Context, filter storage.DiscussionFilter, opts storage.ListOptions) ([]storage.Discussion, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var q selectBuilder
	if filter.Hot != nil {
		q.eq("hot", boolToInt(*filter.Hot))
	}
	q.eq("author_id", filter.AuthorID)
	stmt, args, err := q.build(
		`SELECT id, title, content, author_id, author_name, author_avatar,
		        replies, likes, views, tags_json, created_at, updated_at, hot
		   FROM discussions`,
		opts, discussionOrderColumns, "created_at DESC, id ASC",
	)
	if err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	defer rows.Close()

	var out []storage.Discussion
	for rows.Next() {
		var d storage.Discussion
		var tags string
		var createdAt, updatedAt int64
		var hot int
		if err := rows.Scan(
			&d.ID, &d.Title, &d.Content, &d.AuthorID, &d.AuthorName, &d.AuthorAvatar,
			&d.Replies, &d.Likes, &d.Views, &tags, &createdAt, &updatedAt, &hot,
		); err != nil {
			return nil, fmt.Errorf("list discussions: %w", err)
		}
		if err := json.Unmarshal([]byte(tags), &d.Tags); err != nil {
			return nil, fmt.Errorf("decode tags for %s: %w", d.ID, err)
		}
		d.CreatedAt = fromMillis(createdAt)
		d.UpdatedAt = fromMillis(updatedAt)
		d.Hot = hot != 0
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list discussions: %w", err)
	}
	return out, nil
}

// PutContributor inserts or replaces one contributor.
func (s *Store) PutContributor(ctx context.Context, c storage.Contributor) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("contributor id and name are required")
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO contributors (id, name, avatar, contributions, level, specialty)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Avatar, c.Contributions, c.Level, c.Specialty,
	)
	if err != nil {
		return fmt.Errorf("put contributor: %w", err)
	}
	return nil
}

var contributorOrderColumns = map[string]string{
	"contributions": "contributions",
	"level":         "level",
	"name":          "name",
}

// ListContributors returns contributors, most contributions first by default.
func (s *Store) ListContributors(ctx context.Context, opts storage.ListOptions) ([]storage.Contributor, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var q selectBuilder
	stmt, args, err := q.build(
		`SELECT id, name, avatar, contributions, level, specialty FROM contributors`,
		opts, contributorOrderColumns, "contributions DESC, id ASC",
	)
	if err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}
	defer rows.Close()

	var out []storage.Contributor
	for rows.Next() {
		var c storage.Contributor
		if err := rows.Scan(&c.ID, &c.Name, &c.Avatar, &c.Contributions, &c.Level, &c.Specialty); err != nil {
			return nil, fmt.Errorf("list contributors: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list contributors: %w", err)
	}
	return out, nil
}

// PutCommunityStats replaces the stats snapshot.
func (s *Store) PutCommunityStats(ctx context.Context, stats storage.CommunityStats) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	updatedAt := stats.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = s.now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT OR REPLACE INTO community_stats (id, members, online_now, discussions, events_this_week, updated_at)
		 VALUES (1, ?, ?, ?, ?, ?)`,
		stats.Members, stats.OnlineNow, stats.Discussions, stats.EventsThisWeek, toMillis(updatedAt),
	)
	if err != nil {
		return fmt.Errorf("put community stats: %w", err)
	}
	return nil
}

// GetCommunityStats returns the stats snapshot, or ErrNotFound before the
// first PutCommunityStats.
func (s *Store) GetCommunityStats(ctx context.Context) (storage.CommunityStats, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CommunityStats{}, err
	}
	var stats storage.CommunityStats
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT members, online_now, discussions, events_this_week, updated_at FROM community_stats WHERE id = 1`,
	).Scan(&stats.Members, &stats.OnlineNow, &stats.Discussions, &stats.EventsThisWeek, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CommunityStats{}, storage.ErrNotFound
		}
		return storage.CommunityStats{}, fmt.Errorf("get community stats: %w", err)
	}
	stats.UpdatedAt = fromMillis(updatedAt)
	return stats, nil
}
