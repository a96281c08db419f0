package db

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotInitialized is returned by Manager.Conn before Initialize has
// completed successfully.
var ErrNotInitialized = errors.New("database not initialized")

// ConnectionError means the database could not be opened at all. Fatal;
// callers surface it with a retry/reload prompt.
type ConnectionError struct {
	Path string
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to open database %s: %v", e.Path, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// SchemaUpgradeRequiredError means a write targeted a store that the open
// database does not have yet (an older schema version). Recoverable by
// re-running InitSchema / the migration path.
type SchemaUpgradeRequiredError struct {
	Store string
	Err   error
}

func (e *SchemaUpgradeRequiredError) Error() string {
	return fmt.Sprintf("store %s requires a schema upgrade: %v", e.Store, e.Err)
}

func (e *SchemaUpgradeRequiredError) Unwrap() error { return e.Err }

// MigrationRecordError marks a single record the migration engine could
// not rewrite. The batch pass collects these and keeps going.
type MigrationRecordError struct {
	Store    string
	RecordID string
	Err      error
}

func (e *MigrationRecordError) Error() string {
	return fmt.Sprintf("failed to migrate %s record %s: %v", e.Store, e.RecordID, e.Err)
}

func (e *MigrationRecordError) Unwrap() error { return e.Err }

// IsMissingStore reports whether err is SQLite's complaint about a table
// that doesn't exist. Reads degrade to empty results on it; writes wrap it
// in SchemaUpgradeRequiredError.
func IsMissingStore(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
