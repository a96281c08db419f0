package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ali-derogar/bujo/internal/journal/db"
	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// Record is the wire shape a record takes when exchanged with the remote
// backend.
type Record struct {
	ID        string          `json:"id"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Body      json.RawMessage `json:"body"`
}

// ModifiedSince returns the user's records in a store changed after the
// given instant. Records with no recorded change time are treated as
// always modified so they are never stranded locally. Bodies are
// normalized to the current schema before leaving the device.
func (s *Store) ModifiedSince(ctx context.Context, store, userID string, since time.Time) ([]Record, error) {
	userID = orDefault(userID)

	userClause := "user_id = ?"
	if userID == schema.DefaultUserID {
		userClause = "(user_id = ? OR user_id IS NULL OR user_id = '')"
	}
	query := fmt.Sprintf(`
	SELECT body, updated_at FROM %s
	WHERE %s AND (updated_at IS NULL OR updated_at > ?)
	ORDER BY rowid`, store, userClause)

	rows, err := s.db.RawDB().QueryContext(ctx, query, userID, fmtTime(since).String)
	if err != nil {
		if db.IsMissingStore(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s changes: %w", store, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var body string
		var updatedAt sql.NullString
		if err := rows.Scan(&body, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s record: %w", store, err)
		}

		normalized, meta, _, err := schema.Normalize(store, []byte(body))
		if err != nil {
			s.log.Warnw("skipping unsendable record", "store", store, "error", err)
			continue
		}
		if meta.UserID != userID {
			continue
		}
		records = append(records, Record{
			ID:        meta.ID,
			UpdatedAt: meta.UpdatedAt,
			Body:      normalized,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s changes: %w", store, err)
	}
	return records, nil
}

// ApplyRemote merges records pulled from the backend into a store. A
// remote record wins only when its change time is newer than the local
// copy's; otherwise the local record is kept and the clash counted as a
// resolved conflict. Undecodable remote records are logged and skipped.
func (s *Store) ApplyRemote(ctx context.Context, store string, records []Record) (applied, conflicts int, err error) {
	for _, record := range records {
		normalized, meta, _, err := schema.Normalize(store, record.Body)
		if err != nil {
			s.log.Warnw("skipping unreadable remote record", "store", store, "id", record.ID, "error", err)
			continue
		}
		if meta.ID == "" {
			meta.ID = record.ID
		}
		if meta.UpdatedAt.IsZero() {
			meta.UpdatedAt = record.UpdatedAt
		}

		local, err := s.localUpdatedAt(ctx, store, meta.ID)
		if err != nil {
			return applied, conflicts, err
		}
		if local != nil && !meta.UpdatedAt.After(*local) {
			conflicts++
			continue
		}

		if err := s.put(ctx, store, meta, normalized); err != nil {
			return applied, conflicts, err
		}
		applied++
	}
	return applied, conflicts, nil
}

// localUpdatedAt returns the stored change time of a record, nil when the
// record does not exist locally.
func (s *Store) localUpdatedAt(ctx context.Context, store, id string) (*time.Time, error) {
	var updatedAt sql.NullString
	query := fmt.Sprintf("SELECT updated_at FROM %s WHERE id = ?", store)
	err := s.db.RawDB().QueryRowContext(ctx, query, id).Scan(&updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		if db.IsMissingStore(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query %s record %s: %w", store, id, err)
	}
	return parseTime(updatedAt), nil
}
