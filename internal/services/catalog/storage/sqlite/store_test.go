package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/louisbranch/cardclash/internal/services/catalog/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
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

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestListActiveOrdersByNameAndSkipsInactive(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	for _, entry := range []storage.CatalogEntry{
		{ID: "c", Name: "Crystal Bundle", PriceCents: 999, Active: true},
		{ID: "a", Name: "Arcane Deck", PriceCents: 499, Active: true},
		{ID: "r", Name: "Retired Sleeve", PriceCents: 199, Active: false},
		{ID: "b", Name: "Battle Pass", PriceCents: 1299, Currency: "eur", Active: true},
	} {
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("put %s: %v", entry.ID, err)
		}
	}

	entries, err := store.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	var names []string
	for _, entry := range entries {
		names = append(names, entry.Name)
	}
	want := []string{"Arcane Deck", "Battle Pass", "Crystal Bundle"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if entries[1].Currency != "EUR" {
		t.Fatalf("currency = %q, want EUR", entries[1].Currency)
	}
}

func TestListActiveEmpty(t *testing.T) {
	store := openTempStore(t)
	entries, err := store.ListActive(context.Background())
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestGetAndPutKeepsCreatedAt(t *testing.T) {
	store := openTempStore(t)
	created := time.Date(2026, time.January, 2, 3, 4, 5, 0, time.UTC)
	updated := created.Add(time.Hour)
	store.now = func() time.Time { return created }
	ctx := context.Background()

	if err := store.Put(ctx, storage.CatalogEntry{ID: "p1", Name: "Starter Pack", Kind: "Bundle", PriceCents: 0, Active: true}); err != nil {
		t.Fatalf("put: %v", err)
	}
	store.now = func() time.Time { return updated }
	if err := store.Put(ctx, storage.CatalogEntry{ID: "p1", Name: "Starter Pack", Kind: "bundle", PriceCents: 100, Active: false}); err != nil {
		t.Fatalf("put again: %v", err)
	}

	got, err := store.Get(ctx, "p1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := storage.CatalogEntry{
		ID:         "p1",
		Name:       "Starter Pack",
		Kind:       "bundle",
		PriceCents: 100,
		Currency:   storage.DefaultCurrency,
		Active:     false,
		CreatedAt:  created,
		UpdatedAt:  updated,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("entry mismatch (-want +got):\n%s", diff)
	}
}

func TestGetMissing(t *testing.T) {
	store := openTempStore(t)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(context.Background(), ""); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for empty id, got %v", err)
	}
}

func TestPutRejectsDuplicateName(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	if err := store.Put(ctx, storage.CatalogEntry{ID: "a", Name: "Arcane Deck"}); err != nil {
		t.Fatalf("put: %v", err)
	}
	err := store.Put(ctx, storage.CatalogEntry{ID: "b", Name: "Arcane Deck"})
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCanceledContext(t *testing.T) {
	store := openTempStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.ListActive(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
