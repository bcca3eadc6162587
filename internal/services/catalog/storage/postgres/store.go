// Package postgres provides the Postgres-backed catalog store.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/louisbranch/cardclash/internal/services/catalog/storage"
	"github.com/louisbranch/cardclash/internal/services/catalog/storage/postgres/migrations"
)

const defaultMaxConns int32 = 8

// Store persists catalog entries in Postgres.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open connects to the database at dsn and applies embedded migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("database url is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns <= 0 || cfg.MaxConns > defaultMaxConns {
		cfg.MaxConns = defaultMaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return New(pool), nil
}

// New wraps an existing pool. The caller keeps ownership of migrations.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

// Close closes the pool.
func (s *Store) Close() error {
	if s == nil || s.pool == nil {
		return nil
	}
	s.pool.Close()
	return nil
}

// ListActive returns active entries ordered by name.
func (s *Store) ListActive(ctx context.Context) ([]storage.CatalogEntry, error) {
	const query = `
SELECT id, name, description, kind, price_cents, currency, active, created_at, updated_at
FROM catalog_entries
WHERE active
ORDER BY name ASC, id ASC`
	rows, err := s.pool.Query(ctx, query)
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
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate catalog entries: %w", rows.Err())
	}
	return entries, nil
}

// Get returns one entry by id.
func (s *Store) Get(ctx context.Context, id string) (storage.CatalogEntry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return storage.CatalogEntry{}, storage.ErrNotFound
	}
	const query = `
SELECT id, name, description, kind, price_cents, currency, active, created_at, updated_at
FROM catalog_entries
WHERE id = $1`
	entry, err := scanEntry(s.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.CatalogEntry{}, storage.ErrNotFound
	}
	if err != nil {
		return storage.CatalogEntry{}, err
	}
	return entry, nil
}

// Put inserts or replaces one entry, keeping the original creation time.
func (s *Store) Put(ctx context.Context, entry storage.CatalogEntry) error {
	entry, err := storage.Normalize(entry)
	if err != nil {
		return err
	}
	now := s.now().UTC()
	createdAt := entry.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	const stmt = `
INSERT INTO catalog_entries (id, name, description, kind, price_cents, currency, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
	name = EXCLUDED.name,
	description = EXCLUDED.description,
	kind = EXCLUDED.kind,
	price_cents = EXCLUDED.price_cents,
	currency = EXCLUDED.currency,
	active = EXCLUDED.active,
	updated_at = EXCLUDED.updated_at`
	_, err = s.pool.Exec(ctx, stmt,
		entry.ID,
		entry.Name,
		entry.Description,
		entry.Kind,
		entry.PriceCents,
		entry.Currency,
		entry.Active,
		createdAt,
		now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("put catalog entry: %w", err)
	}
	return nil
}

func scanEntry(row pgx.Row) (storage.CatalogEntry, error) {
	var entry storage.CatalogEntry
	if err := row.Scan(
		&entry.ID,
		&entry.Name,
		&entry.Description,
		&entry.Kind,
		&entry.PriceCents,
		&entry.Currency,
		&entry.Active,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.CatalogEntry{}, err
		}
		return storage.CatalogEntry{}, fmt.Errorf("scan catalog entry: %w", err)
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	entry.UpdatedAt = entry.UpdatedAt.UTC()
	return entry, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
