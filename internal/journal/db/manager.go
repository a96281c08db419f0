package db

import (
	"context"
	"sync"
)

// Manager guards the single shared database handle behind a one-time
// initialization. Initialize is idempotent and safe to call from multiple
// goroutines; concurrent callers converge on the same open connection.
// Conn fails with ErrNotInitialized until Initialize has completed.
type Manager struct {
	path string

	once sync.Once
	mu   sync.RWMutex
	db   *DB
	err  error
}

// NewManager creates a manager for the database at path. The database is
// not opened until Initialize is called.
func NewManager(path string) *Manager {
	return &Manager{path: path}
}

// Initialize opens (or creates, or upgrades) the database and applies the
// schema. Subsequent calls return the first call's result.
func (m *Manager) Initialize(ctx context.Context) error {
	m.once.Do(func() {
		database, err := Open(m.path)
		if err == nil {
			err = database.InitSchemaContext(ctx)
			if err != nil {
				_ = database.Close()
				database = nil
			}
		}
		m.mu.Lock()
		m.db = database
		m.err = err
		m.mu.Unlock()
	})

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.err
}

// Conn returns the active database handle.
func (m *Manager) Conn() (*DB, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.db == nil {
		return nil, ErrNotInitialized
	}
	return m.db, nil
}

// Close closes the underlying database if it was opened.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.db == nil {
		return nil
	}
	err := m.db.Close()
	m.db = nil
	return err
}
