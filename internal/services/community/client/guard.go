package client

import "sync/atomic"

// Collection names one mirrored collection.
type Collection string

const (
	CollectionEvents         Collection = "events"
	CollectionParticipations Collection = "participations"
	CollectionNews           Collection = "news"
	CollectionDiscussions    Collection = "discussions"
	CollectionContributors   Collection = "contributors"
	CollectionStats          Collection = "community_stats"
)

var allCollections = []Collection{
	CollectionEvents,
	CollectionParticipations,
	CollectionNews,
	CollectionDiscussions,
	CollectionContributors,
	CollectionStats,
}

// loadGuard orders writes to one mirror. Every load takes a ticket before it
// fetches and may only apply its result if no later ticket was applied first.
type loadGuard struct {
	issued  atomic.Uint64
	applied uint64 // guarded by Client.mu
}

func (g *loadGuard) ticket() uint64 {
	return g.issued.Add(1)
}

// admit must be called with Client.mu held.
func (g *loadGuard) admit(ticket uint64) bool {
	if ticket <= g.applied {
		return false
	}
	g.applied = ticket
	return true
}

// invalidate discards every load still in flight. Called with Client.mu held
// after a local optimistic mutation so an older snapshot cannot undo it.
func (g *loadGuard) invalidate() {
	g.applied = g.issued.Add(1)
}
