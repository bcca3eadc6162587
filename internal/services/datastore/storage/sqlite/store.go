// Package sqlite provides a SQLite-backed datastore implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/cardclash/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/cardclash/internal/services/datastore/storage"
	"github.com/louisbranch/cardclash/internal/services/datastore/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists datastore collections in SQLite.
type Store struct {
	sqlDB *sql.DB
	now   func() time.Time
}

func toMillis(value time.Time) int64 {
	if value.IsZero() {
		return 0
	}
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	if value == 0 {
		return time.Time{}
	}
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite datastore and applies embedded migrations.
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

// PutEvent inserts or replaces one event. The participant counter is kept
// when the event already exists.
func (s *Store) PutEvent(ctx context.Context, event storage.Event) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	id := strings.TrimSpace(event.ID)
	if id == "" {
		return fmt.Errorf("event id is required")
	}
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("event title is required")
	}
	if event.MaxParticipants < 0 {
		return fmt.Errorf("max participants must not be negative")
	}
	rewards, err := json.Marshal(nonNilRewards(event.Rewards))
	if err != nil {
		return fmt.Errorf("encode rewards: %w", err)
	}
	requirements, err := json.Marshal(nonNilMap(event.Requirements))
	if err != nil {
		return fmt.Errorf("encode requirements: %w", err)
	}
	now := s.now().UTC()
	createdAt := event.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO events (
		   id, title, description, category, status,
		   start_date, end_date, max_participants, current_participants,
		   rewards_json, requirements_json, created_at, updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   title = excluded.title,
		   description = excluded.description,
		   category = excluded.category,
		   status = excluded.status,
		   start_date = excluded.start_date,
		   end_date = excluded.end_date,
		   max_participants = excluded.max_participants,
		   rewards_json = excluded.rewards_json,
		   requirements_json = excluded.requirements_json,
		   updated_at = excluded.updated_at`,
		id,
		strings.TrimSpace(event.Title),
		event.Description,
		event.Category,
		strings.ToLower(strings.TrimSpace(event.Status)),
		toMillis(event.StartDate),
		toMillis(event.EndDate),
		event.MaxParticipants,
		max(event.CurrentParticipants, 0),
		string(rewards),
		string(requirements),
		toMillis(createdAt),
		toMillis(now),
	)
	if err != nil {
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

const eventColumns = `id, title, description, category, status,
		        start_date, end_date, max_participants, current_participants,
		        rewards_json, requirements_json, created_at, updated_at`

// GetEvent returns one event by id.
func (s *Store) GetEvent(ctx context.Context, id string) (storage.Event, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Event{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, strings.TrimSpace(id))
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.Event{}, storage.ErrNotFound
		}
		return storage.Event{}, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

var eventOrderColumns = map[string]string{
	"id":                   "id",
	"title":                "title",
	"status":               "status",
	"start_date":           "start_date",
	"end_date":             "end_date",
	"current_participants": "current_participants",
}

// ListEvents returns events matching filter.
func (s *Store) ListEvents(ctx context.Context, filter storage.EventFilter, opts storage.ListOptions) ([]storage.Event, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var q selectBuilder
	q.eq("id", filter.ID)
	q.eq("status", strings.ToLower(strings.TrimSpace(filter.Status)))
	q.eq("category", filter.Category)
	stmt, args, err := q.build(`SELECT `+eventColumns+` FROM events`, opts, eventOrderColumns, "start_date ASC, id ASC")
	if err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []storage.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		out = append(out, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (storage.Event, error) {
	var (
		event                storage.Event
		startDate, endDate   int64
		createdAt, updatedAt int64
		rewards, reqs        string
	)
	if err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&event.Category,
		&event.Status,
		&startDate,
		&endDate,
		&event.MaxParticipants,
		&event.CurrentParticipants,
		&rewards,
		&reqs,
		&createdAt,
		&updatedAt,
	); err != nil {
		return storage.Event{}, err
	}
	if err := json.Unmarshal([]byte(rewards), &event.Rewards); err != nil {
		return storage.Event{}, fmt.Errorf("decode rewards for %s: %w", event.ID, err)
	}
	if err := json.Unmarshal([]byte(reqs), &event.Requirements); err != nil {
		return storage.Event{}, fmt.Errorf("decode requirements for %s: %w", event.ID, err)
	}
	event.StartDate = fromMillis(startDate)
	event.EndDate = fromMillis(endDate)
	event.CreatedAt = fromMillis(createdAt)
	event.UpdatedAt = fromMillis(updatedAt)
	return event, nil
}

// JoinEvent claims a seat and records the participation in one transaction.
// The counter update runs first so the transaction holds the write lock
// before any check is made.
func (s *Store) JoinEvent(ctx context.Context, p storage.Participation) (storage.Participation, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Participation{}, err
	}
	p.ID = strings.TrimSpace(p.ID)
	p.EventID = strings.TrimSpace(p.EventID)
	p.UserID = strings.TrimSpace(p.UserID)
	if p.ID == "" || p.EventID == "" || p.UserID == "" {
		return storage.Participation{}, fmt.Errorf("participation id, event id and user id are required")
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = s.now().UTC()
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return storage.Participation{}, fmt.Errorf("begin join: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE events
		    SET current_participants = current_participants + 1
		  WHERE id = ?
		    AND status = ?
		    AND current_participants < max_participants`,
		p.EventID, storage.EventStatusActive,
	)
	if err != nil {
		return storage.Participation{}, fmt.Errorf("claim seat: %w", err)
	}
	if claimed, err := res.RowsAffected(); err != nil {
		return storage.Participation{}, fmt.Errorf("claim seat: %w", err)
	} else if claimed == 0 {
		return storage.Participation{}, explainRejectedJoin(ctx, tx, p.EventID, p.UserID)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO participations (id, event_id, user_id, joined_at, score, reward_claimed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.ID, p.EventID, p.UserID, toMillis(p.JoinedAt), p.Score, boolToInt(p.RewardClaimed),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.Participation{}, storage.ErrAlreadyExists
		}
		return storage.Participation{}, fmt.Errorf("insert participation: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return storage.Participation{}, fmt.Errorf("commit join: %w", err)
	}
	return p, nil
}

// explainRejectedJoin reports why no seat could be claimed, checking in the
// same order a client checks its mirror.
func explainRejectedJoin(ctx context.Context, tx *sql.Tx, eventID, userID string) error {
	var status string
	var maxParticipants, current int
	err := tx.QueryRowContext(ctx,
		`SELECT status, max_participants, current_participants FROM events WHERE id = ?`, eventID,
	).Scan(&status, &maxParticipants, &current)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load event: %w", err)
	}

	var found int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM participations WHERE event_id = ? AND user_id = ?`, eventID, userID,
	).Scan(&found)
	switch {
	case err == nil:
		return storage.ErrAlreadyExists
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("load participation: %w", err)
	}
	if status != storage.EventStatusActive {
		return storage.ErrNotJoinable
	}
	return storage.ErrEventFull
}

// LeaveEvent removes the participation and releases its seat.
func (s *Store) LeaveEvent(ctx context.Context, eventID, userID string) (int, error) {
	if err := s.ready(ctx); err != nil {
		return 0, err
	}
	eventID = strings.TrimSpace(eventID)
	userID = strings.TrimSpace(userID)
	if eventID == "" || userID == "" {
		return 0, fmt.Errorf("event id and user id are required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin leave: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM participations WHERE event_id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		return 0, fmt.Errorf("delete participation: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete participation: %w", err)
	}
	if deleted > 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE events SET current_participants = MAX(current_participants - ?, 0) WHERE id = ?`,
			deleted, eventID,
		); err != nil {
			return 0, fmt.Errorf("release seat: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit leave: %w", err)
	}
	return int(deleted), nil
}

var participationOrderColumns = map[string]string{
	"joined_at": "joined_at",
	"event_id":  "event_id",
	"score":     "score",
}

// ListParticipations returns participations matching filter.
func (s *Store) ListParticipations(ctx context.Context, filter storage.ParticipationFilter, opts storage.ListOptions) ([]storage.Participation, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	var q selectBuilder
	q.eq("event_id", filter.EventID)
	q.eq("user_id", filter.UserID)
	stmt, args, err := q.build(
		`SELECT id, event_id, user_id, joined_at, score, reward_claimed FROM participations`,
		opts, participationOrderColumns, "joined_at ASC, id ASC",
	)
	if err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	defer rows.Close()

	var out []storage.Participation
	for rows.Next() {
		var p storage.Participation
		var joinedAt int64
		var claimed int
		if err := rows.Scan(&p.ID, &p.EventID, &p.UserID, &joinedAt, &p.Score, &claimed); err != nil {
			return nil, fmt.Errorf("list participations: %w", err)
		}
		p.JoinedAt = fromMillis(joinedAt)
		p.RewardClaimed = claimed != 0
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list participations: %w", err)
	}
	return out, nil
}

// CreateGrant inserts one grant.
func (s *Store) CreateGrant(ctx context.Context, grant storage.Grant) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	email := strings.ToLower(strings.TrimSpace(grant.Email))
	if strings.TrimSpace(grant.ID) == "" || email == "" || strings.TrimSpace(grant.Kind) == "" {
		return fmt.Errorf("grant id, email and kind are required")
	}
	grantedAt := grant.GrantedAt
	if grantedAt.IsZero() {
		grantedAt = s.now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO grants (id, email, kind, granted_at) VALUES (?, ?, ?, ?)`,
		grant.ID, email, grant.Kind, toMillis(grantedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("create grant: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nonNilRewards(rewards []storage.Reward) []storage.Reward {
	if rewards == nil {
		return []storage.Reward{}
	}
	return rewards
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

var _ storage.Store = (*Store)(nil)
