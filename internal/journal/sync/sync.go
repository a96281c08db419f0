// Package sync pushes local changes to the journal backend and merges its
// changes back, one user at a time.
package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Phases a sync run moves through, reported to the progress callback.
// Success and failure both end on PhaseIdle.
const (
	PhaseIdle    = "idle"
	PhaseLoading = "loading"
	PhaseSaving  = "saving"
)

// Stats counts what a sync run moved, keyed by store name.
type Stats struct {
	Uploaded          map[string]int `json:"uploaded"`
	Downloaded        map[string]int `json:"downloaded"`
	ConflictsResolved int            `json:"conflictsResolved"`
}

// Result is the outcome of one sync run.
type Result struct {
	Success      bool   `json:"success"`
	Message      string `json:"message"`
	Stats        Stats  `json:"stats"`
	Err          error  `json:"-"`
	Retryable    bool   `json:"retryable"`
	TokenExpired bool   `json:"tokenExpired"`
}

// AuthError means the backend rejected the user's credentials. Not
// retryable without a fresh token.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("sync authentication failed: %v", e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransientError means the backend was unreachable or answered with a
// server failure. Safe to retry later.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("sync temporarily failed: %v", e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// StoreRecords groups one store's records for transfer.
type StoreRecords struct {
	Store   string   `json:"store"`
	Records []Record `json:"records"`
}

// Record is one record on the wire.
type Record struct {
	ID        string          `json:"id"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Body      json.RawMessage `json:"body"`
}

// PushResponse is the backend's answer to an upload.
type PushResponse struct {
	Accepted int `json:"accepted"`
}

// Client is the remote half of a sync. Implementations classify failures
// as AuthError or TransientError; anything else is treated as fatal.
type Client interface {
	// Push uploads local changes.
	Push(ctx context.Context, userID string, changes []StoreRecords) (*PushResponse, error)

	// Pull fetches remote changes made after since. A zero since asks for
	// everything.
	Pull(ctx context.Context, userID string, since time.Time) ([]StoreRecords, error)
}

// classify maps a client error onto the result flags.
func classify(result *Result, err error) {
	result.Err = err

	var authErr *AuthError
	if errors.As(err, &authErr) {
		result.TokenExpired = true
		result.Message = "session expired, sign in again"
		return
	}

	var transientErr *TransientError
	if errors.As(err, &transientErr) {
		result.Retryable = true
		result.Message = "sync failed, will retry"
		return
	}

	// Anything short of an auth failure is safe to try again.
	result.Retryable = true
	result.Message = "sync failed"
}
