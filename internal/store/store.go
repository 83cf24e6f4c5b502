// Package store persists completed negotiation sessions.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parleyhq/parley/internal/core"
)

// Store is an append-only log of completed sessions. Records are never
// rewritten or deleted; LoadAll returns sessions oldest first and skips
// records it cannot parse.
type Store interface {
	Append(session *core.Session) error
	LoadAll() ([]*core.Session, error)
	Close() error
}

// ErrNoFeedback rejects persisting a session that has not been ended.
var ErrNoFeedback = errors.New("session has no feedback; only ended sessions are persisted")

// PersistenceError wraps a failed append. The in-memory session is intact;
// callers surface this as a warning rather than losing the session.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to persist session: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Backend selects a store implementation.
type Backend string

const (
	BackendJSONL  Backend = "jsonl"
	BackendSQLite Backend = "sqlite"
)

// Open creates a store for the given backend and path.
func Open(backend Backend, path string) (Store, error) {
	switch backend {
	case "", BackendJSONL:
		return NewJSONL(path)
	case BackendSQLite:
		s, err := NewSQLite(path)
		if err != nil {
			return nil, err
		}
		if err := s.Initialize(); err != nil {
			s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", backend)
	}
}

// DefaultLogPath returns the default JSONL session log location.
func DefaultLogPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "negotiation_sessions.json"
	}
	return filepath.Join(home, ".parley", "negotiation_sessions.json")
}

// DefaultDBPath returns the default SQLite archive location.
func DefaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "parley.db"
	}
	return filepath.Join(home, ".parley", "parley.db")
}
