// Package github reads community collections from a GitHub repository:
// discussions through the GraphQL API and contributors through REST.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v48/github"
	"github.com/shurcooL/githubv4"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/louisbranch/cardclash/internal/platform/logging"
	"github.com/louisbranch/cardclash/internal/services/community/client"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
)

const (
	defaultHotThreshold    = 10
	defaultMaxDiscussions  = 100
	defaultMaxContributors = 30
	discussionPageSize     = 50
)

// Config selects the repository and credentials.
type Config struct {
	Owner string
	Repo  string
	// Token is a personal access token. Discussions require one; without it
	// only contributors can be read.
	Token string
	// HotThreshold is the upvote count at which a discussion is hot.
	HotThreshold    int
	MaxDiscussions  int
	MaxContributors int
	// BaseURL overrides https://api.github.com/ for GitHub Enterprise.
	BaseURL string
}

// Source is a CommunitySource backed by GitHub.
type Source struct {
	graphql *githubv4.Client
	rest    *gh.Client
	cfg     Config
	logger  *zap.Logger
}

// New builds a Source. httpClient may be nil.
func New(ctx context.Context, cfg Config, httpClient *http.Client, logger *zap.Logger) (*Source, error) {
	cfg.Owner = strings.TrimSpace(cfg.Owner)
	cfg.Repo = strings.TrimSpace(cfg.Repo)
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("github owner and repo are required")
	}
	if cfg.HotThreshold <= 0 {
		cfg.HotThreshold = defaultHotThreshold
	}
	if cfg.MaxDiscussions <= 0 {
		cfg.MaxDiscussions = defaultMaxDiscussions
	}
	if cfg.MaxContributors <= 0 {
		cfg.MaxContributors = defaultMaxContributors
	}
	if token := strings.TrimSpace(cfg.Token); token != "" {
		if httpClient != nil {
			ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		}
		httpClient = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	}

	rest := gh.NewClient(httpClient)
	graphqlURL := "https://api.github.com/graphql"
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		parsed, err := url.Parse(base)
		if err != nil {
			return nil, fmt.Errorf("parse github base url: %w", err)
		}
		rest.BaseURL = parsed
		graphqlURL = base + "graphql"
	}
	return &Source{
		graphql: githubv4.NewEnterpriseClient(graphqlURL, httpClient),
		rest:    rest,
		cfg:     cfg,
		logger:  logging.OrNop(logger),
	}, nil
}

type discussionNode struct {
	ID     string
	Number int
	Title  string
	Body   string
	Author struct {
		Login     string
		AvatarURL string `graphql:"avatarUrl"`
	}
	UpvoteCount int
	Comments    struct {
		TotalCount int
	}
	Labels struct {
		Nodes []struct {
			Name string
		}
	} `graphql:"labels(first: 10)"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListDiscussions returns the most recently updated discussions.
func (s *Source) ListDiscussions(ctx context.Context) ([]domain.Discussion, error) {
	var query struct {
		Repository struct {
			Discussions struct {
				Nodes    []discussionNode
				PageInfo struct {
					EndCursor   githubv4.String
					HasNextPage bool
				}
			} `graphql:"discussions(first: $first, after: $cursor, orderBy: {field: UPDATED_AT, direction: DESC})"`
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]any{
		"owner":  githubv4.String(s.cfg.Owner),
		"name":   githubv4.String(s.cfg.Repo),
		"first":  githubv4.Int(min(discussionPageSize, s.cfg.MaxDiscussions)),
		"cursor": (*githubv4.String)(nil),
	}

	var out []domain.Discussion
	for {
		if err := s.graphql.Query(ctx, &query, variables); err != nil {
			return nil, fmt.Errorf("query github discussions: %w", err)
		}
		for _, node := range query.Repository.Discussions.Nodes {
			out = append(out, s.discussion(node))
			if len(out) >= s.cfg.MaxDiscussions {
				return out, nil
			}
		}
		if !query.Repository.Discussions.PageInfo.HasNextPage {
			return out, nil
		}
		cursor := query.Repository.Discussions.PageInfo.EndCursor
		variables["cursor"] = githubv4.NewString(cursor)
	}
}

func (s *Source) discussion(node discussionNode) domain.Discussion {
	tags := make([]string, 0, len(node.Labels.Nodes))
	for _, label := range node.Labels.Nodes {
		tags = append(tags, label.Name)
	}
	id := node.ID
	if id == "" {
		id = strconv.Itoa(node.Number)
	}
	return domain.Discussion{
		ID:           id,
		Title:        node.Title,
		Content:      node.Body,
		AuthorID:     node.Author.Login,
		AuthorName:   node.Author.Login,
		AuthorAvatar: node.Author.AvatarURL,
		Replies:      node.Comments.TotalCount,
		Likes:        node.UpvoteCount,
		Tags:         tags,
		CreatedAt:    node.CreatedAt.UTC(),
		UpdatedAt:    node.UpdatedAt.UTC(),
		Hot:          node.UpvoteCount >= s.cfg.HotThreshold,
	}
}

// ListContributors returns repository contributors by commit count.
func (s *Source) ListContributors(ctx context.Context) ([]domain.Contributor, error) {
	opts := &gh.ListContributorsOptions{ListOptions: gh.ListOptions{PerPage: min(100, s.cfg.MaxContributors)}}
	var out []domain.Contributor
	for {
		page, resp, err := s.rest.Repositories.ListContributors(ctx, s.cfg.Owner, s.cfg.Repo, opts)
		if err != nil {
			return nil, fmt.Errorf("list github contributors: %w", err)
		}
		for _, c := range page {
			out = append(out, domain.Contributor{
				ID:            strconv.FormatInt(c.GetID(), 10),
				Name:          c.GetLogin(),
				Avatar:        c.GetAvatarURL(),
				Contributions: c.GetContributions(),
				Level:         contributorLevel(c.GetContributions()),
			})
			if len(out) >= s.cfg.MaxContributors {
				return out, nil
			}
		}
		if resp == nil || resp.NextPage == 0 {
			return out, nil
		}
		opts.Page = resp.NextPage
	}
}

// contributorLevel buckets commit counts: one level per doubling.
func contributorLevel(contributions int) int {
	level := 0
	for n := contributions; n > 0; n >>= 1 {
		level++
	}
	return level
}

// Stats reports stargazers as members and the discussion total.
func (s *Source) Stats(ctx context.Context) (domain.CommunityStats, error) {
	var query struct {
		Repository struct {
			StargazerCount int
			Discussions    struct {
				TotalCount int
			}
		} `graphql:"repository(owner: $owner, name: $name)"`
	}
	variables := map[string]any{
		"owner": githubv4.String(s.cfg.Owner),
		"name":  githubv4.String(s.cfg.Repo),
	}
	if err := s.graphql.Query(ctx, &query, variables); err != nil {
		return domain.CommunityStats{}, fmt.Errorf("query github stats: %w", err)
	}
	s.logger.Debug("github stats",
		zap.Int("stargazers", query.Repository.StargazerCount),
		zap.Int("discussions", query.Repository.Discussions.TotalCount),
	)
	return domain.CommunityStats{
		Members:     query.Repository.StargazerCount,
		Discussions: query.Repository.Discussions.TotalCount,
	}, nil
}

var _ client.CommunitySource = (*Source)(nil)
