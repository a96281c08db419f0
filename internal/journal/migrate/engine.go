// Package migrate moves legacy single-user records onto the default user
// in batches, store by store.
//
// Legacy records are rows whose user_id column is NULL or empty, or whose
// body predates the current shape (missing userId, old field names). The
// engine rewrites each such record through the current-schema decoder and
// persists the normalized form. Running it again over a migrated database
// finds nothing to do.
package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ali-derogar/bujo/internal/journal/db"
	"github.com/ali-derogar/bujo/internal/journal/schema"
)

// DefaultBatchSize is how many legacy rows a single migration pass reads
// at a time.
const DefaultBatchSize = 200

// Engine runs batch migrations over the journal database.
type Engine struct {
	db        *db.DB
	log       *zap.SugaredLogger
	batchSize int
}

// NewEngine creates a migration engine. A nil logger means no logging.
func NewEngine(database *db.DB, logger *zap.SugaredLogger) *Engine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Engine{
		db:        database,
		log:       logger,
		batchSize: DefaultBatchSize,
	}
}

// StoreScan reports how much of a store still needs migration.
type StoreScan struct {
	Store          string `json:"store"`
	Total          int    `json:"total"`
	NeedsMigration int    `json:"needsMigration"`
}

// StoreResult is the outcome of migrating one store.
type StoreResult struct {
	Store           string   `json:"store"`
	TotalRecords    int      `json:"totalRecords"`
	MigratedRecords int      `json:"migratedRecords"`
	Errors          []string `json:"errors,omitempty"`
}

// Report is the outcome of a full migration pass.
type Report struct {
	Success       bool          `json:"success"`
	Results       []StoreResult `json:"results"`
	TotalMigrated int           `json:"totalMigrated"`
	Timestamp     time.Time     `json:"timestamp"`
}

// ScanStore counts a store's records and how many of them are still on
// the legacy shape. A store absent from the database scans as empty.
func (e *Engine) ScanStore(ctx context.Context, store string) (StoreScan, error) {
	scan := StoreScan{Store: store}

	total, err := e.count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", store))
	if err != nil {
		if db.IsMissingStore(err) {
			return scan, nil
		}
		return scan, fmt.Errorf("failed to scan %s: %w", store, err)
	}
	scan.Total = total

	// ai_messages are keyed by session, never by user; they carry no
	// ownership to migrate.
	if store == schema.StoreAIMessages {
		return scan, nil
	}

	pending, err := e.count(ctx, fmt.Sprintf(
		"SELECT COUNT(*) FROM %s WHERE user_id IS NULL OR user_id = ''", store))
	if err != nil {
		return scan, fmt.Errorf("failed to scan %s: %w", store, err)
	}
	scan.NeedsMigration = pending
	return scan, nil
}

// MigrateStore rewrites a store's legacy records onto the default user,
// reading them in batches. Individual record failures are collected and
// do not stop the pass.
func (e *Engine) MigrateStore(ctx context.Context, store string) (StoreResult, error) {
	result := StoreResult{Store: store}

	scan, err := e.ScanStore(ctx, store)
	if err != nil {
		return result, err
	}
	result.TotalRecords = scan.Total

	// put keeps the index columns in step with the body, so a zero
	// pending count also means no row carries a stale body shape.
	if store == schema.StoreAIMessages || scan.NeedsMigration == 0 {
		return result, nil
	}

	for {
		batch, err := e.legacyBatch(ctx, store)
		if err != nil {
			return result, err
		}
		if len(batch) == 0 {
			break
		}

		for _, row := range batch {
			if err := e.migrateRecord(ctx, store, row); err != nil {
				e.log.Warnw("record migration failed",
					"store", store, "id", row.id, "error", err)
				result.Errors = append(result.Errors,
					fmt.Sprintf("%s/%s: %v", store, row.id, err))
				// Park the row so the batch loop cannot reread it.
				if perr := e.parkRecord(ctx, store, row.id); perr != nil {
					return result, perr
				}
				continue
			}
			result.MigratedRecords++
		}
	}

	if result.MigratedRecords > 0 {
		e.log.Infow("store migrated",
			"store", store, "migrated", result.MigratedRecords, "errors", len(result.Errors))
	}
	return result, nil
}

// MigrateAll migrates every store in the fixed order. Success is false
// only when the pass could not run at all; per-record failures are
// reported in the store results.
func (e *Engine) MigrateAll(ctx context.Context) (Report, error) {
	report := Report{Timestamp: time.Now().UTC()}

	if err := e.db.RawDB().PingContext(ctx); err != nil {
		return report, &db.ConnectionError{Path: e.db.Path(), Err: err}
	}
	report.Success = true

	for _, store := range schema.Stores() {
		result, err := e.MigrateStore(ctx, store)
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
		report.Results = append(report.Results, result)
		report.TotalMigrated += result.MigratedRecords
	}

	e.log.Infow("migration pass finished",
		"migrated", report.TotalMigrated, "stores", len(report.Results))
	return report, nil
}

// Status scans every store without changing anything.
func (e *Engine) Status(ctx context.Context) ([]StoreScan, error) {
	var scans []StoreScan
	for _, store := range schema.Stores() {
		scan, err := e.ScanStore(ctx, store)
		if err != nil {
			return nil, err
		}
		scans = append(scans, scan)
	}
	return scans, nil
}

// CheckMigrationNeeded reports whether any store still holds legacy
// records.
func (e *Engine) CheckMigrationNeeded(ctx context.Context) (bool, error) {
	scans, err := e.Status(ctx)
	if err != nil {
		return false, err
	}
	for _, scan := range scans {
		if scan.NeedsMigration > 0 {
			return true, nil
		}
	}
	return false, nil
}

type legacyRow struct {
	id   string
	body string
}

// legacyBatch reads the next batch of unmigrated rows.
func (e *Engine) legacyBatch(ctx context.Context, store string) ([]legacyRow, error) {
	query := fmt.Sprintf(`
	SELECT id, body FROM %s
	WHERE user_id IS NULL OR user_id = ''
	ORDER BY rowid LIMIT ?`, store)

	rows, err := e.db.RawDB().QueryContext(ctx, query, e.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s batch: %w", store, err)
	}
	defer rows.Close()

	var batch []legacyRow
	for rows.Next() {
		var row legacyRow
		if err := rows.Scan(&row.id, &row.body); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", store, err)
		}
		batch = append(batch, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s batch: %w", store, err)
	}
	return batch, nil
}

// migrateRecord normalizes one record body and writes back the shaped
// form with its index columns.
func (e *Engine) migrateRecord(ctx context.Context, store string, row legacyRow) error {
	body, meta, _, err := schema.Normalize(store, []byte(row.body))
	if err != nil {
		return &db.MigrationRecordError{Store: store, RecordID: row.id, Err: err}
	}
	if meta.ID == "" {
		meta.ID = row.id
	}
	// A body that decodes but yields no owner (an id-less profile, say)
	// must still leave the legacy selector, or the batch loop rereads it.
	if meta.UserID == "" {
		meta.UserID = schema.DefaultUserID
	}

	query := fmt.Sprintf(`
	UPDATE %s SET user_id = ?, date = ?, updated_at = ?, body = ?
	WHERE id = ?`, store)
	_, err = e.db.RawDB().ExecContext(ctx, query,
		meta.UserID, nullString(meta.Date), timeString(meta.UpdatedAt), string(body), row.id)
	if err != nil {
		return &db.MigrationRecordError{Store: store, RecordID: row.id, Err: err}
	}
	return nil
}

// parkRecord assigns ownership of a record the decoder rejected so the
// batch scan does not loop over it forever. The body is left untouched
// for a later fix.
func (e *Engine) parkRecord(ctx context.Context, store, id string) error {
	query := fmt.Sprintf("UPDATE %s SET user_id = ? WHERE id = ?", store)
	if _, err := e.db.RawDB().ExecContext(ctx, query, schema.DefaultUserID, id); err != nil {
		return fmt.Errorf("failed to park %s record %s: %w", store, id, err)
	}
	return nil
}

func (e *Engine) count(ctx context.Context, query string) (int, error) {
	var n int
	if err := e.db.RawDB().QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func timeString(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
