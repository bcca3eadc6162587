// Package static serves community collections from a YAML fixture.
package static

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/louisbranch/cardclash/internal/services/community/client"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
)

//go:embed community.yaml
var defaultFixture []byte

type fixture struct {
	Stats        statsRecord         `yaml:"stats"`
	Discussions  []discussionRecord  `yaml:"discussions"`
	Contributors []contributorRecord `yaml:"contributors"`
}

type statsRecord struct {
	Members        int `yaml:"members"`
	OnlineNow      int `yaml:"online_now"`
	Discussions    int `yaml:"discussions"`
	EventsThisWeek int `yaml:"events_this_week"`
}

type discussionRecord struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title"`
	Content      string    `yaml:"content"`
	AuthorID     string    `yaml:"author_id"`
	AuthorName   string    `yaml:"author_name"`
	AuthorAvatar string    `yaml:"author_avatar"`
	Replies      int       `yaml:"replies"`
	Likes        int       `yaml:"likes"`
	Views        int       `yaml:"views"`
	Tags         []string  `yaml:"tags"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
	Hot          bool      `yaml:"hot"`
}

type contributorRecord struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	Avatar        string `yaml:"avatar"`
	Contributions int    `yaml:"contributions"`
	Level         int    `yaml:"level"`
	Specialty     string `yaml:"specialty"`
}

// Source is an in-memory CommunitySource. It is safe for concurrent use
// since it never changes after construction.
type Source struct {
	discussions  []domain.Discussion
	contributors []domain.Contributor
	stats        domain.CommunityStats
}

// New returns a Source over the embedded fixture.
func New() (*Source, error) {
	return Load(bytes.NewReader(defaultFixture))
}

// Load parses a fixture from r.
func Load(r io.Reader) (*Source, error) {
	var f fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode community fixture: %w", err)
	}
	s := &Source{
		stats: domain.CommunityStats{
			Members:        f.Stats.Members,
			OnlineNow:      f.Stats.OnlineNow,
			Discussions:    f.Stats.Discussions,
			EventsThisWeek: f.Stats.EventsThisWeek,
		},
	}
	seen := make(map[string]bool, len(f.Discussions))
	for i, d := range f.Discussions {
		if d.ID == "" {
			return nil, fmt.Errorf("discussion %d: id is required", i)
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("discussion %s: duplicate id", d.ID)
		}
		seen[d.ID] = true
		s.discussions = append(s.discussions, domain.Discussion{
			ID:           d.ID,
			Title:        d.Title,
			Content:      d.Content,
			AuthorID:     d.AuthorID,
			AuthorName:   d.AuthorName,
			AuthorAvatar: d.AuthorAvatar,
			Replies:      d.Replies,
			Likes:        d.Likes,
			Views:        d.Views,
			Tags:         d.Tags,
			CreatedAt:    d.CreatedAt.UTC(),
			UpdatedAt:    d.UpdatedAt.UTC(),
			Hot:          d.Hot,
		})
	}
	for i, c := range f.Contributors {
		if c.ID == "" {
			return nil, fmt.Errorf("contributor %d: id is required", i)
		}
		s.contributors = append(s.contributors, domain.Contributor{
			ID:            c.ID,
			Name:          c.Name,
			Avatar:        c.Avatar,
			Contributions: c.Contributions,
			Level:         c.Level,
			Specialty:     c.Specialty,
		})
	}
	return s, nil
}

// ListDiscussions returns the fixture discussions in file order.
func (s *Source) ListDiscussions(ctx context.Context) ([]domain.Discussion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]domain.Discussion, len(s.discussions))
	for i, d := range s.discussions {
		out[i] = d.Clone()
	}
	return out, nil
}

// ListContributors returns the fixture contributors in file order.
func (s *Source) ListContributors(ctx context.Context) ([]domain.Contributor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append([]domain.Contributor(nil), s.contributors...), nil
}

// Stats returns the fixture stats.
func (s *Source) Stats(ctx context.Context) (domain.CommunityStats, error) {
	if err := ctx.Err(); err != nil {
		return domain.CommunityStats{}, err
	}
	return s.stats, nil
}

var _ client.CommunitySource = (*Source)(nil)
