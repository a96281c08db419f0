// Package syncmeta persists sync bookkeeping outside the journal
// database, so wiping the database does not forget when the last sync
// happened.
package syncmeta

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Metadata is the persisted sync state. LastSyncAt is nil before the
// first successful sync; UserID is the user the timestamp belongs to.
type Metadata struct {
	LastSyncAt *time.Time `json:"lastSyncAt"`
	UserID     string     `json:"userId"`
}

// Store reads and writes sync metadata in a single JSON file.
type Store struct {
	mu   sync.Mutex
	path string
}

// NewStore creates a metadata store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored metadata. A missing file reads as zero metadata.
func (s *Store) Get() (Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Set overwrites the stored metadata.
func (s *Store) Set(meta Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(meta)
}

// UpdateLastSyncAt stamps a successful sync for a user. A timestamp left
// by a different user is replaced.
func (s *Store) UpdateLastSyncAt(userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	at = at.UTC()
	return s.write(Metadata{LastSyncAt: &at, UserID: userID})
}

// LastSyncAt returns when the given user last synced, nil if that user
// has never synced (or the stored timestamp belongs to someone else).
func (s *Store) LastSyncAt(userID string) (*time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, err := s.read()
	if err != nil {
		return nil, err
	}
	if meta.UserID != userID {
		return nil, nil
	}
	return meta.LastSyncAt, nil
}

// Clear forgets all sync state.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to clear sync metadata: %w", err)
	}
	return nil
}

func (s *Store) read() (Metadata, error) {
	var meta Metadata

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("failed to read sync metadata: %w", err)
	}
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("failed to parse sync metadata: %w", err)
	}
	return meta, nil
}

// write replaces the file atomically so a crash mid-write cannot leave a
// truncated file behind.
func (s *Store) write(meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sync metadata: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create sync metadata dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write sync metadata: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace sync metadata: %w", err)
	}
	return nil
}
