// Package seed loads demo data into the datastore and catalog stores.
package seed

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	catalogserver "github.com/louisbranch/cardclash/internal/services/catalog/app"
	catalogstorage "github.com/louisbranch/cardclash/internal/services/catalog/storage"
	"github.com/louisbranch/cardclash/internal/services/datastore/storage"
	datastoresqlite "github.com/louisbranch/cardclash/internal/services/datastore/storage/sqlite"
)

// Config holds seed runner configuration.
type Config struct {
	DatastorePath string
	CatalogPath   string
	// CatalogDatabaseURL seeds Postgres instead of CatalogPath when set.
	CatalogDatabaseURL string
	// FixturePath overrides the embedded demo fixture.
	FixturePath string
	Verbose     bool
}

// DefaultConfig returns configuration with common defaults.
func DefaultConfig() Config {
	return Config{
		DatastorePath: filepath.Join("data", "datastore.db"),
		CatalogPath:   filepath.Join("data", "catalog.db"),
	}
}

// Summary counts the records written by Run.
type Summary struct {
	Events       int
	News         int
	Discussions  int
	Contributors int
	Stats        bool
	Catalog      int
}

// Run loads the fixture and writes it to both stores. Records are upserted,
// so running twice is safe.
func Run(ctx context.Context, cfg Config, out io.Writer) (Summary, error) {
	if out == nil {
		out = io.Discard
	}
	fixture, err := LoadFixture(cfg.FixturePath)
	if err != nil {
		return Summary{}, fmt.Errorf("load fixture: %w", err)
	}

	datastore, err := datastoresqlite.Open(ctx, cfg.DatastorePath)
	if err != nil {
		return Summary{}, fmt.Errorf("open datastore: %w", err)
	}
	defer datastore.Close()

	catalog, err := catalogserver.OpenStore(ctx, cfg.CatalogDatabaseURL, cfg.CatalogPath)
	if err != nil {
		return Summary{}, err
	}
	defer catalog.Close()

	var summary Summary
	if err := seedDatastore(ctx, datastore, fixture, &summary, cfg.Verbose, out); err != nil {
		return summary, err
	}
	if err := seedCatalog(ctx, catalog, fixture.Catalog, &summary, cfg.Verbose, out); err != nil {
		return summary, err
	}
	return summary, nil
}

func seedDatastore(ctx context.Context, store storage.Store, fixture Fixture, summary *Summary, verbose bool, out io.Writer) error {
	for _, e := range fixture.Events {
		if err := store.PutEvent(ctx, toEvent(e)); err != nil {
			return fmt.Errorf("seed event %s: %w", e.ID, err)
		}
		summary.Events++
		if verbose {
			fmt.Fprintf(out, "event %s: %s\n", e.ID, e.Title)
		}
	}
	for _, n := range fixture.News {
		if err := store.PutNews(ctx, storage.NewsItem{
			ID:          n.ID,
			Title:       n.Title,
			Content:     n.Content,
			Category:    n.Category,
			Priority:    n.Priority,
			Published:   n.Published,
			PublishedAt: n.PublishedAt,
		}); err != nil {
			return fmt.Errorf("seed news %s: %w", n.ID, err)
		}
		summary.News++
	}
	for _, d := range fixture.Discussions {
		if err := store.PutDiscussion(ctx, storage.Discussion{
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
			CreatedAt:    d.CreatedAt,
			UpdatedAt:    d.UpdatedAt,
			Hot:          d.Hot,
		}); err != nil {
			return fmt.Errorf("seed discussion %s: %w", d.ID, err)
		}
		summary.Discussions++
	}
	for _, c := range fixture.Contributors {
		if err := store.PutContributor(ctx, storage.Contributor{
			ID:            c.ID,
			Name:          c.Name,
			Avatar:        c.Avatar,
			Contributions: c.Contributions,
			Level:         c.Level,
			Specialty:     c.Specialty,
		}); err != nil {
			return fmt.Errorf("seed contributor %s: %w", c.ID, err)
		}
		summary.Contributors++
	}
	if s := fixture.Stats; s != nil {
		if err := store.PutCommunityStats(ctx, storage.CommunityStats{
			Members:        s.Members,
			OnlineNow:      s.OnlineNow,
			Discussions:    s.Discussions,
			EventsThisWeek: s.EventsThisWeek,
		}); err != nil {
			return fmt.Errorf("seed community stats: %w", err)
		}
		summary.Stats = true
	}
	return nil
}

func toEvent(e EventFixture) storage.Event {
	rewards := make([]storage.Reward, 0, len(e.Rewards))
	for _, r := range e.Rewards {
		rewards = append(rewards, storage.Reward{Kind: r.Kind, Amount: r.Amount, Label: r.Label})
	}
	return storage.Event{
		ID:                  e.ID,
		Title:               e.Title,
		Description:         e.Description,
		Category:            e.Category,
		Status:              e.Status,
		StartDate:           e.StartDate,
		EndDate:             e.EndDate,
		MaxParticipants:     e.MaxParticipants,
		CurrentParticipants: e.CurrentParticipants,
		Rewards:             rewards,
		Requirements:        e.Requirements,
	}
}

func seedCatalog(ctx context.Context, store catalogstorage.Store, entries []CatalogFixture, summary *Summary, verbose bool, out io.Writer) error {
	for _, c := range entries {
		if err := store.Put(ctx, catalogstorage.CatalogEntry{
			ID:          c.ID,
			Name:        c.Name,
			Description: c.Description,
			Kind:        c.Kind,
			PriceCents:  c.PriceCents,
			Currency:    c.Currency,
			Active:      c.Active,
		}); err != nil {
			return fmt.Errorf("seed catalog entry %s: %w", c.ID, err)
		}
		summary.Catalog++
		if verbose {
			fmt.Fprintf(out, "catalog %s: %s\n", c.ID, c.Name)
		}
	}
	return nil
}
