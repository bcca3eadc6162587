// Package sqlite provides the SQLite-backed catalog store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/cardclash/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/cardclash/internal/services/catalog/storage"
	"github.com/louisbranch/cardclash/internal/services/catalog/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists catalog entries in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open opens a SQLite catalog and applies embedded migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	sqlDB, err := sqlitemigrate.Open(ctx, path, migrations.FS, ".")
	if err != nil {
		return nil, err
	}
	return &Store{sqlDB: sqlDB, now: time.Now}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	return nil
}

const entryColumns = `id, name, description, kind, price_cents, currency, active, created_at, updated_at`

// ListActive returns active entries ordered by name.
func (s *Store) ListActive(ctx context.Context) ([]storage.CatalogEntry, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM catalog_entries WHERE active = 1 ORDER BY name ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list catalog entries: %w", err)
	}
	defer rows.Close()

	entries := make([]storage.CatalogEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog entries: %w", err)
	}
	return entries, nil
}

// Get returns one entry by id.
func (s *Store) Get(ctx context.Context, id string) (storage.CatalogEntry, error) {
	if err := s.ready(ctx); err != nil {
		return storage.CatalogEntry{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.CatalogEntry{}, storage.ErrNotFound
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+entryColumns+` FROM catalog_entries WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.CatalogEntry{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CatalogEntry{}, err
	}
	return entry, nil
}

// Put inserts or replaces one entry, keeping the original creation time.
func (s *Store) Put(ctx context.Context, entry storage.CatalogEntry) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	entry, err := storage.Normalize(entry)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO catalog_entries (`+entryColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   kind = excluded.kind,
		   price_cents = excluded.price_cents,
		   currency = excluded.currency,
		   active = excluded.active,
		   updated_at = excluded.updated_at`,
		entry.ID,
		entry.Name,
		entry.Description,
		entry.Kind,
		entry.PriceCents,
		entry.Currency,
		boolToInt(entry.Active),
		createdAt.UnixMilli(),
		now.UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put catalog entry: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (storage.CatalogEntry, error) {
	var (
		entry     storage.CatalogEntry
		active    int64
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Description,
		&entry.Kind,
		&entry.PriceCents,
		&entry.Currency,
		&active,
		&createdAt,
		&updatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.CatalogEntry{}, err
		}
		return storage.CatalogEntry{}, fmt.Errorf("scan catalog entry: %w", err)
	}
	entry.Active = active != 0
	entry.CreatedAt = time.UnixMilli(createdAt).UTC()
	entry.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return entry, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
