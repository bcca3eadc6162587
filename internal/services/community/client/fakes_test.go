package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/louisbranch/cardclash/internal/services/community/domain"
)

var errRemote = errors.New("remote unavailable")

type fakeEventStore struct {
	mu sync.Mutex

	events         []domain.Event
	participations map[string][]domain.Participation
	listErr        error
	listPartsErr   error
	createErr      error
	deleteErr      error
	// beforeList runs inside ListEvents after the response is captured.
	beforeList func(ctx context.Context)
	// beforeCreate runs inside CreateParticipation before it succeeds.
	beforeCreate func()

	listCalls      int
	listPartsCalls int
	createCalls    int
	deleteCalls    int
}

func (f *fakeEventStore) ListEvents(ctx context.Context) ([]domain.Event, error) {
	// Snapshot first so a blocked call returns the data it saw on entry.
	f.mu.Lock()
	f.listCalls++
	hook := f.beforeList
	err := f.listErr
	out := make([]domain.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Clone())
	}
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeEventStore) ListParticipations(_ context.Context, session domain.Session) ([]domain.Participation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listPartsCalls++
	if f.listPartsErr != nil {
		return nil, f.listPartsErr
	}
	return append([]domain.Participation(nil), f.participations[session.UserID]...), nil
}

func (f *fakeEventStore) CreateParticipation(_ context.Context, session domain.Session, eventID string) (domain.Participation, error) {
	f.mu.Lock()
	hook := f.beforeCreate
	f.mu.Unlock()
	if hook != nil {
		hook()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return domain.Participation{}, f.createErr
	}
	p := domain.Participation{
		ID:       "p-" + eventID + "-" + session.UserID,
		EventID:  eventID,
		UserID:   session.UserID,
		JoinedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	if f.participations == nil {
		f.participations = map[string][]domain.Participation{}
	}
	f.participations[session.UserID] = append(f.participations[session.UserID], p)
	return p, nil
}

func (f *fakeEventStore) DeleteParticipation(_ context.Context, session domain.Session, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCalls++
	return f.deleteErr
}

func (f *fakeEventStore) calls() (list, create, del int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.createCalls, f.deleteCalls
}

type fakeNewsStore struct {
	items []domain.NewsItem
	err   error
}

func (f *fakeNewsStore) ListPublishedNews(context.Context) ([]domain.NewsItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.NewsItem(nil), f.items...), nil
}

type fakeCommunity struct {
	discussions  []domain.Discussion
	contributors []domain.Contributor
	stats        domain.CommunityStats
	err          error
}

func (f *fakeCommunity) ListDiscussions(context.Context) ([]domain.Discussion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Discussion(nil), f.discussions...), nil
}

func (f *fakeCommunity) ListContributors(context.Context) ([]domain.Contributor, error) {
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.Contributor(nil), f.contributors...), nil
}

func (f *fakeCommunity) Stats(context.Context) (domain.CommunityStats, error) {
	if f.err != nil {
		return domain.CommunityStats{}, f.err
	}
	return f.stats, nil
}

type fakeGrants struct {
	redeemed map[string]bool
	err      error
	calls    int
}

func (f *fakeGrants) RedeemStarterPack(_ context.Context, session domain.Session) (domain.Grant, error) {
	f.calls++
	if f.err != nil {
		return domain.Grant{}, f.err
	}
	if f.redeemed == nil {
		f.redeemed = map[string]bool{}
	}
	f.redeemed[session.Email] = true
	return domain.Grant{ID: "g1", Email: session.Email, Kind: domain.GrantKindStarterPack}, nil
}
