package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/cardclash/internal/services/datastore/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "datastore.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func seedEvent(t *testing.T, store *Store, id, status string, maxParticipants int, start time.Time) {
	t.Helper()
	err := store.PutEvent(context.Background(), storage.Event{
		ID:              id,
		Title:           "Event " + id,
		Status:          status,
		StartDate:       start,
		EndDate:         start.Add(24 * time.Hour),
		MaxParticipants: maxParticipants,
		Rewards:         []storage.Reward{{Kind: "gold", Amount: 100}},
		Requirements:    map[string]string{"level": "3"},
	})
	if err != nil {
		t.Fatalf("put event %s: %v", id, err)
	}
}

var start = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), ""); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestPutGetEventRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedEvent(t, store, "e1", "Active", 10, start)

	got, err := store.GetEvent(context.Background(), "e1")
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.Status != "active" {
		t.Fatalf("status = %q, want active", got.Status)
	}
	if !got.StartDate.Equal(start) {
		t.Fatalf("start = %v, want %v", got.StartDate, start)
	}
	if diff := cmp.Diff([]storage.Reward{{Kind: "gold", Amount: 100}}, got.Rewards); diff != "" {
		t.Fatalf("rewards mismatch (-want +got):\n%s", diff)
	}
	if got.Requirements["level"] != "3" {
		t.Fatalf("requirements = %v", got.Requirements)
	}

	if _, err := store.GetEvent(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("get missing = %v, want ErrNotFound", err)
	}
}

func TestListEventsOrderAndFilter(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedEvent(t, store, "late", "active", 10, start.Add(48*time.Hour))
	seedEvent(t, store, "early", "upcoming", 10, start)
	seedEvent(t, store, "mid", "active", 10, start.Add(24*time.Hour))

	all, err := store.ListEvents(context.Background(), storage.EventFilter{}, storage.ListOptions{
		OrderBy: []storage.OrderField{{Field: "start_date"}},
	})
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if diff := cmp.Diff([]string{"early", "mid", "late"}, eventIDs(all)); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}

	active, err := store.ListEvents(context.Background(), storage.EventFilter{Status: "active"}, storage.ListOptions{
		OrderBy: []storage.OrderField{{Field: "start_date", Desc: true}},
		Limit:   1,
	})
	if err != nil {
		t.Fatalf("list active events: %v", err)
	}
	if diff := cmp.Diff([]string{"late"}, eventIDs(active)); diff != "" {
		t.Fatalf("active mismatch (-want +got):\n%s", diff)
	}

	if _, err := store.ListEvents(context.Background(), storage.EventFilter{}, storage.ListOptions{
		OrderBy: []storage.OrderField{{Field: "title; DROP TABLE events"}},
	}); err == nil {
		t.Fatal("expected unknown order column to be rejected")
	}
}

func TestJoinEventIncrementsAndLeaveDecrements(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedEvent(t, store, "e1", "active", 10, start)
	ctx := context.Background()

	joined, err := store.JoinEvent(ctx, storage.Participation{ID: "p1", EventID: "e1", UserID: "alice"})
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if joined.JoinedAt.IsZero() {
		t.Fatal("expected joined_at to be set")
	}
	assertCurrent(t, store, "e1", 1)

	parts, err := store.ListParticipations(ctx, storage.ParticipationFilter{UserID: "alice"}, storage.ListOptions{})
	if err != nil {
		t.Fatalf("list participations: %v", err)
	}
	if len(parts) != 1 || parts[0].EventID != "e1" {
		t.Fatalf("participations = %+v", parts)
	}

	deleted, err := store.LeaveEvent(ctx, "e1", "alice")
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}
	assertCurrent(t, store, "e1", 0)

	deleted, err = store.LeaveEvent(ctx, "e1", "alice")
	if err != nil || deleted != 0 {
		t.Fatalf("second leave = %d, %v; want 0, nil", deleted, err)
	}
	assertCurrent(t, store, "e1", 0)
}

func TestJoinEventRejections(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedEvent(t, store, "full", "active", 1, start)
	seedEvent(t, store, "soon", "upcoming", 10, start)
	seedEvent(t, store, "open", "active", 10, start)
	ctx := context.Background()

	if _, err := store.JoinEvent(ctx, storage.Participation{ID: "p1", EventID: "full", UserID: "alice"}); err != nil {
		t.Fatalf("first join: %v", err)
	}
	if _, err := store.JoinEvent(ctx, storage.Participation{ID: "p2", EventID: "open", UserID: "alice"}); err != nil {
		t.Fatalf("open join: %v", err)
	}

	tests := []struct {
		name    string
		eventID string
		userID  string
		want    error
	}{
		{name: "missing event", eventID: "nope", userID: "alice", want: storage.ErrNotFound},
		{name: "already joined full event", eventID: "full", userID: "alice", want: storage.ErrAlreadyExists},
		{name: "already joined open event", eventID: "open", userID: "alice", want: storage.ErrAlreadyExists},
		{name: "not active", eventID: "soon", userID: "bob", want: storage.ErrNotJoinable},
		{name: "at capacity", eventID: "full", userID: "bob", want: storage.ErrEventFull},
	}
	for i, tc := range tests {
		_, err := store.JoinEvent(ctx, storage.Participation{ID: fmt.Sprintf("x%d", i), EventID: tc.eventID, UserID: tc.userID})
		if !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", tc.name, err, tc.want)
		}
	}
	// Rejected joins leave counters untouched.
	assertCurrent(t, store, "full", 1)
	assertCurrent(t, store, "open", 1)
}

func TestConcurrentJoinsNeverExceedCapacity(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedEvent(t, store, "e1", "active", 3, start)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.JoinEvent(context.Background(), storage.Participation{
				ID:      fmt.Sprintf("p%d", i),
				EventID: "e1",
				UserID:  fmt.Sprintf("user-%d", i),
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var joined int
	for err := range results {
		switch {
		case err == nil:
			joined++
		case errors.Is(err, storage.ErrEventFull):
		default:
			t.Errorf("unexpected join error: %v", err)
		}
	}
	if joined != 3 {
		t.Fatalf("joined = %d, want 3", joined)
	}
	assertCurrent(t, store, "e1", 3)
}

func TestPutEventKeepsCounter(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	seedEvent(t, store, "e1", "active", 10, start)
	if _, err := store.JoinEvent(context.Background(), storage.Participation{ID: "p1", EventID: "e1", UserID: "alice"}); err != nil {
		t.Fatalf("join: %v", err)
	}
	seedEvent(t, store, "e1", "active", 20, start)
	assertCurrent(t, store, "e1", 1)
}

func TestNewsFilterAndOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	items := []storage.NewsItem{
		{ID: "n1", Title: "Old", Published: true, PublishedAt: start},
		{ID: "n2", Title: "Draft", Published: false, PublishedAt: start.Add(time.Hour)},
		{ID: "n3", Title: "New", Published: true, PublishedAt: start.Add(2 * time.Hour), Priority: "HIGH"},
	}
	for _, item := range items {
		if err := store.PutNews(ctx, item); err != nil {
			t.Fatalf("put news: %v", err)
		}
	}

	published := true
	got, err := store.ListNews(ctx, storage.NewsFilter{Published: &published}, storage.ListOptions{
		OrderBy: []storage.OrderField{{Field: "published_at", Desc: true}},
	})
	if err != nil {
		t.Fatalf("list news: %v", err)
	}
	var ids []string
	for _, item := range got {
		ids = append(ids, item.ID)
	}
	if diff := cmp.Diff([]string{"n3", "n1"}, ids); diff != "" {
		t.Fatalf("news mismatch (-want +got):\n%s", diff)
	}
	if got[0].Priority != "high" {
		t.Fatalf("priority = %q, want high", got[0].Priority)
	}
}

func TestCommunityCollections(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if _, err := store.GetCommunityStats(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("stats before put = %v, want ErrNotFound", err)
	}
	if err := store.PutCommunityStats(ctx, storage.CommunityStats{Members: 120, OnlineNow: 7}); err != nil {
		t.Fatalf("put stats: %v", err)
	}
	stats, err := store.GetCommunityStats(ctx)
	if err != nil || stats.Members != 120 || stats.OnlineNow != 7 {
		t.Fatalf("stats = %+v, %v", stats, err)
	}

	for _, d := range []storage.Discussion{
		{ID: "d1", Title: "One", Hot: true, Tags: []string{"meta"}, CreatedAt: start},
		{ID: "d2", Title: "Two", CreatedAt: start.Add(time.Hour)},
	} {
		if err := store.PutDiscussion(ctx, d); err != nil {
			t.Fatalf("put discussion: %v", err)
		}
	}
	hot := true
	discussions, err := store.ListDiscussions(ctx, storage.DiscussionFilter{Hot: &hot}, storage.ListOptions{})
	if err != nil {
		t.Fatalf("list discussions: %v", err)
	}
	if len(discussions) != 1 || discussions[0].ID != "d1" || discussions[0].Tags[0] != "meta" {
		t.Fatalf("discussions = %+v", discussions)
	}

	for _, c := range []storage.Contributor{
		{ID: "c1", Name: "Ada", Contributions: 3},
		{ID: "c2", Name: "Lin", Contributions: 9},
	} {
		if err := store.PutContributor(ctx, c); err != nil {
			t.Fatalf("put contributor: %v", err)
		}
	}
	contributors, err := store.ListContributors(ctx, storage.ListOptions{})
	if err != nil {
		t.Fatalf("list contributors: %v", err)
	}
	if len(contributors) != 2 || contributors[0].ID != "c2" {
		t.Fatalf("contributors = %+v", contributors)
	}
}

func TestCreateGrantIsUniquePerEmailAndKind(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	if err := store.CreateGrant(ctx, storage.Grant{ID: "g1", Email: "Ada@Example.com", Kind: "starter_pack"}); err != nil {
		t.Fatalf("create grant: %v", err)
	}
	err := store.CreateGrant(ctx, storage.Grant{ID: "g2", Email: "ada@example.com", Kind: "starter_pack"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("duplicate grant = %v, want ErrAlreadyExists", err)
	}
	if err := store.CreateGrant(ctx, storage.Grant{ID: "g3", Email: "ada@example.com", Kind: "other"}); err != nil {
		t.Fatalf("other kind: %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListEvents(ctx, storage.EventFilter{}, storage.ListOptions{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("list with canceled context = %v", err)
	}
}

func assertCurrent(t *testing.T, store *Store, id string, want int) {
	t.Helper()
	event, err := store.GetEvent(context.Background(), id)
	if err != nil {
		t.Fatalf("get event %s: %v", id, err)
	}
	if event.CurrentParticipants != want {
		t.Fatalf("event %s current participants = %d, want %d", id, event.CurrentParticipants, want)
	}
}

func eventIDs(events []storage.Event) []string {
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	return ids
}
