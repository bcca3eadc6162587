// Package storage defines persistence contracts for datastore collections.
package storage

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates a requested record is missing.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyExists indicates a uniqueness-constrained record already exists.
	ErrAlreadyExists = errors.New("record already exists")
	// ErrNotJoinable indicates the event does not accept participations.
	ErrNotJoinable = errors.New("event is not joinable")
	// ErrEventFull indicates the event reached its participant cap.
	ErrEventFull = errors.New("event is full")
)

// EventStatusActive is the only status that accepts participations.
const EventStatusActive = "active"

// Reward is one prize attached to an event.
type Reward struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount"`
	Label  string `json:"label,omitempty"`
}

// Event is one row of the events collection.
type Event struct {
	ID                  string
	Title               string
	Description         string
	Category            string
	Status              string
	StartDate           time.Time
	EndDate             time.Time
	MaxParticipants     int
	CurrentParticipants int
	Rewards             []Reward
	Requirements        map[string]string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Participation is one row of the participations collection.
type Participation struct {
	ID            string
	EventID       string
	UserID        string
	JoinedAt      time.Time
	Score         int
	RewardClaimed bool
}

// NewsItem is one row of the news collection.
type NewsItem struct {
	ID          string
	Title       string
	Content     string
	Category    string
	Priority    string
	Published   bool
	PublishedAt time.Time
}

// Discussion is one row of the discussions collection.
type Discussion struct {
	ID           string
	Title        string
	Content      string
	AuthorID     string
	AuthorName   string
	AuthorAvatar string
	Replies      int
	Likes        int
	Views        int
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Hot          bool
}

// Contributor is one row of the contributors collection.
type Contributor struct {
	ID            string
	Name          string
	Avatar        string
	Contributions int
	Level         int
	Specialty     string
}

// CommunityStats is the single row of the community_stats collection.
type CommunityStats struct {
	Members        int
	OnlineNow      int
	Discussions    int
	EventsThisWeek int
	UpdatedAt      time.Time
}

// Grant records one redeemed one-time reward.
type Grant struct {
	ID        string
	Email     string
	Kind      string
	GrantedAt time.Time
}

// OrderField orders results by one column.
type OrderField struct {
	Field string
	Desc  bool
}

// ListOptions controls ordering and size of list results. A zero Limit
// means no limit.
type ListOptions struct {
	OrderBy []OrderField
	Limit   int
}

// EventFilter narrows event listings. Empty fields match everything.
type EventFilter struct {
	ID       string
	Status   string
	Category string
}

// ParticipationFilter narrows participation listings.
type ParticipationFilter struct {
	EventID string
	UserID  string
}

// NewsFilter narrows news listings. A nil Published matches both states.
type NewsFilter struct {
	Published *bool
	Category  string
	Priority  string
}

// DiscussionFilter narrows discussion listings.
type DiscussionFilter struct {
	Hot      *bool
	AuthorID string
}

// EventStore persists events.
type EventStore interface {
	PutEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter, opts ListOptions) ([]Event, error)
}

// ParticipationStore persists participations and keeps event counters in
// step with them.
type ParticipationStore interface {
	// JoinEvent re-validates the event (exists, active, below capacity) and
	// the (event, user) uniqueness, then inserts the participation and
	// increments the event counter in one transaction.
	JoinEvent(ctx context.Context, participation Participation) (Participation, error)
	// LeaveEvent deletes the (event, user) participation and decrements the
	// event counter, floored at zero. It reports how many rows were removed.
	LeaveEvent(ctx context.Context, eventID, userID string) (int, error)
	ListParticipations(ctx context.Context, filter ParticipationFilter, opts ListOptions) ([]Participation, error)
}

// NewsStore persists news items.
type NewsStore interface {
	PutNews(ctx context.Context, item NewsItem) error
	ListNews(ctx context.Context, filter NewsFilter, opts ListOptions) ([]NewsItem, error)
}

// CommunityStore persists the community read models.
type CommunityStore interface {
	PutDiscussion(ctx context.Context, discussion Discussion) error
	ListDiscussions(ctx context.Context, filter DiscussionFilter, opts ListOptions) ([]Discussion, error)
	PutContributor(ctx context.Context, contributor Contributor) error
	ListContributors(ctx context.Context, opts ListOptions) ([]Contributor, error)
	PutCommunityStats(ctx context.Context, stats CommunityStats) error
	GetCommunityStats(ctx context.Context) (CommunityStats, error)
}

// GrantStore persists one-time grants.
type GrantStore interface {
	// CreateGrant inserts a grant, failing with ErrAlreadyExists when the
	// (email, kind) pair was already granted.
	CreateGrant(ctx context.Context, grant Grant) error
}

// Store is the full datastore persistence surface.
type Store interface {
	EventStore
	ParticipationStore
	NewsStore
	CommunityStore
	GrantStore
}
