package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/parleyhq/parley/internal/core"
)

// JSONLStore appends one self-contained JSON record per line to a flat file.
// Earlier records are never touched, so corruption in one line cannot spread
// and a partial final write cannot damage prior sessions.
type JSONLStore struct {
	path string
	mu   sync.Mutex
}

// NewJSONL creates the store, ensuring the parent directory exists. The log
// file itself is created lazily on first append.
func NewJSONL(path string) (*JSONLStore, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	return &JSONLStore{path: path}, nil
}

// Append serializes the session and appends it as one line.
func (s *JSONLStore) Append(session *core.Session) error {
	if session.Feedback == nil {
		return ErrNoFeedback
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(session); err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return nil
}

// LoadAll reads the log oldest first. Malformed lines are logged and
// skipped; a missing file is an empty history, not an error.
func (s *JSONLStore) LoadAll() ([]*core.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)

	var sessions []*core.Session
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var sess core.Session
		if err := json.Unmarshal(raw, &sess); err != nil {
			slog.Warn("Skipping corrupt session record", "line", line, "error", err)
			continue
		}
		sessions = append(sessions, &sess)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}
	return sessions, nil
}

// Close is a no-op; the file is opened per operation.
func (s *JSONLStore) Close() error {
	return nil
}
