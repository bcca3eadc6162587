package client

import (
	"context"

	"github.com/louisbranch/cardclash/internal/services/community/domain"
)

// EventStore reads events and manages the caller's participations.
type EventStore interface {
	// ListEvents returns every event ordered by start time ascending.
	ListEvents(ctx context.Context) ([]domain.Event, error)
	// ListParticipations returns the participations owned by the session user.
	ListParticipations(ctx context.Context, session domain.Session) ([]domain.Participation, error)
	// CreateParticipation registers the session user for an event. The store
	// re-validates capacity and uniqueness.
	CreateParticipation(ctx context.Context, session domain.Session, eventID string) (domain.Participation, error)
	// DeleteParticipation removes the (event, session user) participation.
	DeleteParticipation(ctx context.Context, session domain.Session, eventID string) error
}

// NewsStore reads published news.
type NewsStore interface {
	ListPublishedNews(ctx context.Context) ([]domain.NewsItem, error)
}

// CommunitySource supplies the read-only community collections. It may be
// backed by the datastore, a static fixture or an external service.
type CommunitySource interface {
	ListDiscussions(ctx context.Context) ([]domain.Discussion, error)
	ListContributors(ctx context.Context) ([]domain.Contributor, error)
	Stats(ctx context.Context) (domain.CommunityStats, error)
}

// GrantStore redeems one-time grants keyed by the session email.
type GrantStore interface {
	RedeemStarterPack(ctx context.Context, session domain.Session) (domain.Grant, error)
}
