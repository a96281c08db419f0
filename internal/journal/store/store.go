// Package store provides the per-entity repositories over the journal
// database.
//
// Every read performs on-read migration: a fetched record lacking a userId
// is shaped as belonging to the "default" user before any filtering, so
// legacy records surface to the default user's view even before the batch
// migration engine has run. Reads never write the assignment back; that is
// the migration engine's job. Saves are upserts that overwrite the full
// record; callers fetch-merge-save for partial edits. Deletes of missing
// records are no-op successes.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ali-derogar/bujo/internal/journal/db"
	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// Store exposes typed read/write/delete operations per entity.
type Store struct {
	db  *db.DB
	log *zap.SugaredLogger
}

// New creates a Store over an initialized database. If logger is nil a
// no-op logger is used.
func New(database *db.DB, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		db:  database,
		log: logger,
	}
}

// timeLayout is the stored form of the updated_at index column.
const timeLayout = time.RFC3339

func fmtTime(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func parseTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t, err := time.Parse(timeLayout, ns.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullIfEmpty(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// put upserts a record body into a store, keeping the index columns in
// step with the body.
func (s *Store) put(ctx context.Context, store string, meta schema.Meta, body []byte) error {
	var err error
	if store == schema.StoreAIMessages {
		query := `
		INSERT INTO ai_messages (id, session_id, updated_at, body)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			session_id = excluded.session_id,
			updated_at = excluded.updated_at,
			body = excluded.body
		`
		_, err = s.db.RawDB().ExecContext(ctx, query,
			meta.ID, meta.SessionID, fmtTime(meta.UpdatedAt), string(body))
	} else {
		query := fmt.Sprintf(`
		INSERT INTO %s (id, user_id, date, updated_at, body)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			date = excluded.date,
			updated_at = excluded.updated_at,
			body = excluded.body
		`, store)
		_, err = s.db.RawDB().ExecContext(ctx, query,
			meta.ID, meta.UserID, nullIfEmpty(meta.Date), fmtTime(meta.UpdatedAt), string(body))
	}

	if err != nil {
		if db.IsMissingStore(err) {
			return &db.SchemaUpgradeRequiredError{Store: store, Err: err}
		}
		return fmt.Errorf("failed to save %s record %s: %w", store, meta.ID, err)
	}
	return nil
}

// saveRecord marshals a record and upserts it.
func (s *Store) saveRecord(ctx context.Context, store string, record interface{}, meta schema.Meta) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record %s: %w", store, meta.ID, err)
	}
	return s.put(ctx, store, meta, body)
}

// deleteByID removes a record by primary key. Missing records are a no-op.
func (s *Store) deleteByID(ctx context.Context, store, id string) error {
	_, err := s.db.RawDB().ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = ?", store), id)
	if err != nil {
		if db.IsMissingStore(err) {
			return nil
		}
		return fmt.Errorf("failed to delete %s record %s: %w", store, id, err)
	}
	return nil
}

// bodiesByDate returns all record bodies for a date, in insertion order.
// A store missing from an un-upgraded database degrades to an empty result.
func (s *Store) bodiesByDate(ctx context.Context, store, date string) ([][]byte, error) {
	query := fmt.Sprintf("SELECT body FROM %s WHERE date = ? ORDER BY rowid", store)
	return s.bodies(ctx, store, query, date)
}

// bodiesByUser returns all record bodies owned by a user, legacy rows
// included when the user is the default user.
func (s *Store) bodiesByUser(ctx context.Context, store, userID string) ([][]byte, error) {
	query := fmt.Sprintf("SELECT body FROM %s WHERE user_id = ?", store)
	if userID == schema.DefaultUserID {
		query = fmt.Sprintf("SELECT body FROM %s WHERE user_id = ? OR user_id IS NULL OR user_id = ''", store)
	}
	return s.bodies(ctx, store, query, userID)
}

// bodyByID returns a single record body, or nil if not found.
func (s *Store) bodyByID(ctx context.Context, store, id string) ([]byte, error) {
	var body string
	query := fmt.Sprintf("SELECT body FROM %s WHERE id = ?", store)
	err := s.db.RawDB().QueryRowContext(ctx, query, id).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if db.IsMissingStore(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s record %s: %w", store, id, err)
	}
	return []byte(body), nil
}

func (s *Store) bodies(ctx context.Context, store, query string, args ...interface{}) ([][]byte, error) {
	rows, err := s.db.RawDB().QueryContext(ctx, query, args...)
	if err != nil {
		if db.IsMissingStore(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s: %w", store, err)
	}
	defer rows.Close()

	var bodies [][]byte
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", store, err)
		}
		bodies = append(bodies, []byte(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", store, err)
	}
	return bodies, nil
}

func orDefault(userID string) string {
	if userID == "" {
		return schema.DefaultUserID
	}
	return userID
}
