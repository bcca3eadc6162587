// Package domain defines the community value types mirrored by the client.
package domain

import (
	"strings"
	"time"
)

// EventStatus is the lifecycle state of an event.
type EventStatus string

const (
	EventStatusUpcoming  EventStatus = "upcoming"
	EventStatusActive    EventStatus = "active"
	EventStatusCompleted EventStatus = "completed"
	EventStatusCancelled EventStatus = "cancelled"
)

// ParseEventStatus normalizes a stored status. Unknown values are kept
// verbatim so they never match a known filter.
func ParseEventStatus(raw string) EventStatus {
	return EventStatus(strings.ToLower(strings.TrimSpace(raw)))
}

// Joinable reports whether new participations are accepted.
func (s EventStatus) Joinable() bool {
	return s == EventStatusActive
}

// EventCategory groups events for display.
type EventCategory string

const (
	EventCategoryTournament EventCategory = "tournament"
	EventCategoryChallenge  EventCategory = "challenge"
	EventCategoryCommunity  EventCategory = "community"
	EventCategorySeasonal   EventCategory = "seasonal"
)

// Reward is one prize attached to an event.
type Reward struct {
	Kind   string
	Amount int
	Label  string
}

// Event is a scheduled community event with a participant cap.
type Event struct {
	ID                  string
	Title               string
	Description         string
	Category            EventCategory
	Status              EventStatus
	StartDate           time.Time
	EndDate             time.Time
	MaxParticipants     int
	CurrentParticipants int
	Rewards             []Reward
	Requirements        map[string]string
}

// Full reports whether the event has reached capacity.
func (e Event) Full() bool {
	return e.CurrentParticipants >= e.MaxParticipants
}

// Clone returns a deep copy so callers cannot alias mirror state.
func (e Event) Clone() Event {
	out := e
	if e.Rewards != nil {
		out.Rewards = append([]Reward(nil), e.Rewards...)
	}
	if e.Requirements != nil {
		out.Requirements = make(map[string]string, len(e.Requirements))
		for k, v := range e.Requirements {
			out.Requirements[k] = v
		}
	}
	return out
}

// Participation records one user's registration for one event.
type Participation struct {
	ID            string
	EventID       string
	UserID        string
	JoinedAt      time.Time
	Score         int
	RewardClaimed bool
}

// Discussion is a community forum thread.
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

// Clone returns a deep copy.
func (d Discussion) Clone() Discussion {
	out := d
	if d.Tags != nil {
		out.Tags = append([]string(nil), d.Tags...)
	}
	return out
}

// Contributor is a community member ranked by contributions.
type Contributor struct {
	ID            string
	Name          string
	Avatar        string
	Contributions int
	Level         int
	Specialty     string
}

// NewsPriority ranks news items.
type NewsPriority string

const (
	NewsPriorityLow    NewsPriority = "low"
	NewsPriorityNormal NewsPriority = "normal"
	NewsPriorityHigh   NewsPriority = "high"
	NewsPriorityUrgent NewsPriority = "urgent"
)

// ParseNewsPriority normalizes a stored priority, defaulting to normal.
func ParseNewsPriority(raw string) NewsPriority {
	switch p := NewsPriority(strings.ToLower(strings.TrimSpace(raw))); p {
	case NewsPriorityLow, NewsPriorityNormal, NewsPriorityHigh, NewsPriorityUrgent:
		return p
	default:
		return NewsPriorityNormal
	}
}

// NewsItem is a published announcement.
type NewsItem struct {
	ID          string
	Title       string
	Content     string
	Category    string
	Priority    NewsPriority
	Published   bool
	PublishedAt time.Time
}

// CommunityStats is a point-in-time snapshot of community activity.
type CommunityStats struct {
	Members        int
	OnlineNow      int
	Discussions    int
	EventsThisWeek int
}

// Session identifies the caller. The zero value is an anonymous caller.
type Session struct {
	UserID      string
	Email       string
	AccessToken string
}

// Authenticated reports whether the session carries a user.
func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.UserID) != ""
}

// GrantKindStarterPack is the grant issued by a starter pack redemption.
const GrantKindStarterPack = "starter_pack"

// Grant is the result of redeeming a one-time reward.
type Grant struct {
	ID        string
	Email     string
	Kind      string
	GrantedAt time.Time
}
