// Package storage defines persistence contracts for the item catalog.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrNotFound indicates a requested catalog entry is missing.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrAlreadyExists indicates another entry already uses the same name.
	ErrAlreadyExists = errors.New("catalog entry already exists")
)

// DefaultCurrency applies when an entry omits its currency.
const DefaultCurrency = "USD"

// CatalogEntry is one purchasable item listed by the catalog endpoints.
type CatalogEntry struct {
	ID          string
	Name        string
	Description string
	Kind        string
	PriceCents  int64
	Currency    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Store reads and writes catalog entries.
type Store interface {
	// ListActive returns active entries ordered by name.
	ListActive(ctx context.Context) ([]CatalogEntry, error)
	// Get returns one entry whether or not it is active.
	Get(ctx context.Context, id string) (CatalogEntry, error)
	// Put inserts or replaces one entry.
	Put(ctx context.Context, entry CatalogEntry) error
	Close() error
}

// Normalize trims an entry and checks the fields every backend requires.
func Normalize(entry CatalogEntry) (CatalogEntry, error) {
	entry.ID = strings.TrimSpace(entry.ID)
	entry.Name = strings.TrimSpace(entry.Name)
	entry.Kind = strings.ToLower(strings.TrimSpace(entry.Kind))
	entry.Currency = strings.ToUpper(strings.TrimSpace(entry.Currency))
	if entry.ID == "" {
		return CatalogEntry{}, fmt.Errorf("catalog entry id is required")
	}
	if entry.Name == "" {
		return CatalogEntry{}, fmt.Errorf("catalog entry name is required")
	}
	if entry.PriceCents < 0 {
		return CatalogEntry{}, fmt.Errorf("catalog entry price must not be negative")
	}
	if entry.Currency == "" {
		entry.Currency = DefaultCurrency
	}
	return entry, nil
}
