package remote

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"net"
	"path/filepath"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	apperrors "github.com/louisbranch/cardclash/internal/platform/errors"
	"github.com/louisbranch/cardclash/internal/services/community/client"
	"github.com/louisbranch/cardclash/internal/services/community/domain"
	"github.com/louisbranch/cardclash/internal/services/datastore/api/grpc/datastore"
	"github.com/louisbranch/cardclash/internal/services/datastore/auth"
	"github.com/louisbranch/cardclash/internal/services/datastore/storage"
	"github.com/louisbranch/cardclash/internal/services/datastore/storage/sqlite"
)

var testStart = time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC)

type env struct {
	remote *Store
	store  *sqlite.Store
	auth   auth.Config
}

func newEnv(t *testing.T, opts ...Option) *env {
	t.Helper()
	store, err := sqlite.Open(context.Background(), filepath.Join(t.TempDir(), "datastore.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	cfg := auth.Config{Issuer: "cardclash", Audience: "cardclash-datastore", PublicKey: pub, PrivateKey: priv}

	lis := bufconn.Listen(1 << 20)
	server := grpc.NewServer(grpc.UnaryInterceptor(auth.UnaryServerInterceptor(cfg, nil)))
	datastore.RegisterDatastoreServer(server, datastore.NewService(store, nil))
	go func() { _ = server.Serve(lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
		server.Stop()
		_ = store.Close()
	})
	opts = append([]Option{WithInsecureCredentials()}, opts...)
	return &env{remote: New(conn, opts...), store: store, auth: cfg}
}

func (e *env) session(t *testing.T, userID, email string) domain.Session {
	t.Helper()
	token, err := auth.Mint(e.auth, userID, email, time.Hour)
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	return domain.Session{UserID: userID, Email: email, AccessToken: token}
}

func (e *env) putEvent(t *testing.T, id string, maxParticipants, current int) {
	t.Helper()
	err := e.store.PutEvent(context.Background(), storage.Event{
		ID:                  id,
		Title:               "Event " + id,
		Category:            "tournament",
		Status:              "active",
		StartDate:           testStart,
		EndDate:             testStart.Add(2 * time.Hour),
		MaxParticipants:     maxParticipants,
		CurrentParticipants: current,
		Rewards:             []storage.Reward{{Kind: "gems", Amount: 5, Label: "Gems"}},
		Requirements:        map[string]string{"rank": "silver"},
	})
	if err != nil {
		t.Fatalf("put event: %v", err)
	}
}

func TestListEventsDecodesRows(t *testing.T) {
	e := newEnv(t)
	e.putEvent(t, "e1", 10, 3)

	events, err := e.remote.ListEvents(context.Background())
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("events = %+v", events)
	}
	got := events[0]
	if got.Status != domain.EventStatusActive || got.Category != domain.EventCategoryTournament {
		t.Fatalf("status/category = %q/%q", got.Status, got.Category)
	}
	if got.MaxParticipants != 10 || got.CurrentParticipants != 3 {
		t.Fatalf("counts = %d/%d", got.CurrentParticipants, got.MaxParticipants)
	}
	if !got.StartDate.Equal(testStart) {
		t.Fatalf("start = %v", got.StartDate)
	}
	if len(got.Rewards) != 1 || got.Rewards[0] != (domain.Reward{Kind: "gems", Amount: 5, Label: "Gems"}) {
		t.Fatalf("rewards = %+v", got.Rewards)
	}
	if got.Requirements["rank"] != "silver" {
		t.Fatalf("requirements = %+v", got.Requirements)
	}
}

func TestParticipationLifecycle(t *testing.T) {
	e := newEnv(t)
	e.putEvent(t, "e1", 10, 0)
	ctx := context.Background()
	alice := e.session(t, "alice", "")

	p, err := e.remote.CreateParticipation(ctx, alice, "e1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.EventID != "e1" || p.UserID != "alice" || p.ID == "" {
		t.Fatalf("participation = %+v", p)
	}
	parts, err := e.remote.ListParticipations(ctx, alice)
	if err != nil || len(parts) != 1 {
		t.Fatalf("participations = %+v, %v", parts, err)
	}

	_, err = e.remote.CreateParticipation(ctx, alice, "e1")
	if !apperrors.IsCode(err, apperrors.CodeAlreadyJoined) {
		t.Fatalf("duplicate create = %v", err)
	}
	if err := e.remote.DeleteParticipation(ctx, alice, "e1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = e.remote.DeleteParticipation(ctx, alice, "e1")
	if !apperrors.IsCode(err, apperrors.CodeParticipationNotFound) {
		t.Fatalf("second delete = %v", err)
	}
}

func TestAnonymousParticipationsRejected(t *testing.T) {
	e := newEnv(t)
	_, err := e.remote.ListParticipations(context.Background(), domain.Session{UserID: "alice"})
	if !apperrors.IsCode(err, apperrors.CodeNotAuthenticated) {
		t.Fatalf("err = %v, want NOT_AUTHENTICATED", err)
	}
}

func TestPublishedNewsAndCommunity(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	for _, item := range []storage.NewsItem{
		{ID: "n1", Title: "Old", Published: true, PublishedAt: testStart, Priority: "urgent"},
		{ID: "n2", Title: "New", Published: true, PublishedAt: testStart.Add(time.Hour)},
		{ID: "n3", Title: "Draft", PublishedAt: testStart.Add(2 * time.Hour)},
	} {
		if err := e.store.PutNews(ctx, item); err != nil {
			t.Fatalf("put news: %v", err)
		}
	}
	news, err := e.remote.ListPublishedNews(ctx)
	if err != nil {
		t.Fatalf("news: %v", err)
	}
	if len(news) != 2 || news[0].ID != "n2" || news[1].Priority != domain.NewsPriorityUrgent {
		t.Fatalf("news = %+v", news)
	}

	stats, err := e.remote.Stats(ctx)
	if err != nil || stats != (domain.CommunityStats{}) {
		t.Fatalf("empty stats = %+v, %v", stats, err)
	}
	if err := e.store.PutCommunityStats(ctx, storage.CommunityStats{Members: 9, OnlineNow: 2, Discussions: 4, EventsThisWeek: 1}); err != nil {
		t.Fatalf("put stats: %v", err)
	}
	stats, err = e.remote.Stats(ctx)
	if err != nil || stats != (domain.CommunityStats{Members: 9, OnlineNow: 2, Discussions: 4, EventsThisWeek: 1}) {
		t.Fatalf("stats = %+v, %v", stats, err)
	}

	if err := e.store.PutContributor(ctx, storage.Contributor{ID: "c1", Name: "Ada", Contributions: 7, Level: 3}); err != nil {
		t.Fatalf("put contributor: %v", err)
	}
	contributors, err := e.remote.ListContributors(ctx)
	if err != nil || len(contributors) != 1 || contributors[0].Contributions != 7 {
		t.Fatalf("contributors = %+v, %v", contributors, err)
	}

	if err := e.store.PutDiscussion(ctx, storage.Discussion{ID: "d1", Title: "Meta", Hot: true, Tags: []string{"meta"}, CreatedAt: testStart}); err != nil {
		t.Fatalf("put discussion: %v", err)
	}
	discussions, err := e.remote.ListDiscussions(ctx)
	if err != nil || len(discussions) != 1 || !discussions[0].Hot || discussions[0].Tags[0] != "meta" {
		t.Fatalf("discussions = %+v, %v", discussions, err)
	}
}

func TestRedeemStarterPackThroughClient(t *testing.T) {
	e := newEnv(t)
	c := client.New(e.remote, e.remote, e.remote, e.remote)
	defer c.Close()
	ada := e.session(t, "ada", "ada@example.com")

	grant, res := c.RedeemStarterPack(context.Background(), ada)
	if !res.OK() {
		t.Fatalf("redeem: %+v", res)
	}
	if grant.Kind != domain.GrantKindStarterPack || grant.Email != "ada@example.com" {
		t.Fatalf("grant = %+v", grant)
	}
	_, res = c.RedeemStarterPack(context.Background(), ada)
	if res.Code() != apperrors.CodeStarterPackRedeemed {
		t.Fatalf("second redeem code = %s", res.Code())
	}
	if res.Message != "The starter pack has already been claimed for ada@example.com." {
		t.Fatalf("message = %q", res.Message)
	}
}

func TestClientEndToEnd(t *testing.T) {
	e := newEnv(t)
	e.putEvent(t, "e1", 10, 9)
	ctx := context.Background()
	c := client.New(e.remote, e.remote, e.remote, e.remote)
	defer c.Close()

	alice := e.session(t, "alice", "")
	bob := e.session(t, "bob", "")

	if err := c.LoadEvents(ctx); err != nil {
		t.Fatalf("load events: %v", err)
	}
	if res := c.JoinEvent(ctx, alice, "e1"); !res.OK() {
		t.Fatalf("join: %+v", res)
	}
	if got, _ := c.Event("e1"); got.CurrentParticipants != 10 {
		t.Fatalf("local count = %d, want 10", got.CurrentParticipants)
	}
	if res := c.JoinEvent(ctx, bob, "e1"); res.Code() != apperrors.CodeEventFull {
		t.Fatalf("bob join code = %s, want EVENT_FULL", res.Code())
	}
	if err := c.Reconcile(ctx, alice); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if !c.IsParticipating("e1") {
		t.Fatal("expected alice to be participating after reconcile")
	}
	if res := c.LeaveEvent(ctx, alice, "e1"); !res.OK() {
		t.Fatalf("leave: %+v", res)
	}
	if got, _ := c.Event("e1"); got.CurrentParticipants != 9 {
		t.Fatalf("local count after leave = %d, want 9", got.CurrentParticipants)
	}
}

func TestStaleMirrorRemoteRejection(t *testing.T) {
	e := newEnv(t)
	e.putEvent(t, "e1", 1, 0)
	ctx := context.Background()
	c := client.New(e.remote, e.remote, e.remote, e.remote)
	defer c.Close()

	if err := c.LoadEvents(ctx); err != nil {
		t.Fatalf("load events: %v", err)
	}
	// Someone else takes the last seat after the mirror was loaded.
	if _, err := e.remote.CreateParticipation(ctx, e.session(t, "carol", ""), "e1"); err != nil {
		t.Fatalf("carol join: %v", err)
	}

	res := c.JoinEvent(ctx, e.session(t, "dave", ""), "e1")
	if res.Code() != apperrors.CodeRemoteFailure {
		t.Fatalf("code = %s, want REMOTE_FAILURE", res.Code())
	}
	if res.Message != "The request failed: This event is full." {
		t.Fatalf("message = %q", res.Message)
	}
	if got, _ := c.Event("e1"); got.CurrentParticipants != 0 {
		t.Fatalf("local count = %d, want unchanged 0", got.CurrentParticipants)
	}
}

func TestCallTimeout(t *testing.T) {
	e := newEnv(t, WithCallTimeout(time.Nanosecond))
	_, err := e.remote.ListEvents(context.Background())
	if err == nil {
		t.Fatal("expected deadline error")
	}
}
