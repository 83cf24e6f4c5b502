package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/parleyhq/parley/internal/core"
)

// SQLiteStore keeps the session log in a SQLite file for users who want a
// queryable archive instead of a flat file. The Store contract is the same:
// insert-only, rows with unreadable payloads are skipped on load.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (creating if needed) the archive database.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	return &SQLiteStore{db: db, path: dbPath}, nil
}

// Initialize creates the schema.
func (s *SQLiteStore) Initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scenario TEXT NOT NULL,
		style TEXT NOT NULL,
		conversation_json TEXT NOT NULL,
		feedback_json TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_timestamp ON sessions(timestamp);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Append inserts the session as a new row.
func (s *SQLiteStore) Append(session *core.Session) error {
	if session.Feedback == nil {
		return ErrNoFeedback
	}

	convJSON, err := json.Marshal(session.Conversation)
	if err != nil {
		return fmt.Errorf("marshal conversation: %w", err)
	}
	fbJSON, err := json.Marshal(session.Feedback)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO sessions (scenario, style, conversation_json, feedback_json, timestamp) VALUES (?, ?, ?, ?, ?)`,
		session.Scenario,
		string(session.Style),
		string(convJSON),
		string(fbJSON),
		session.Timestamp.Time().Format(core.TimestampLayout),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// LoadAll returns sessions in insertion order, skipping rows whose payloads
// no longer parse.
func (s *SQLiteStore) LoadAll() ([]*core.Session, error) {
	rows, err := s.db.Query(
		`SELECT id, scenario, style, conversation_json, feedback_json, timestamp FROM sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*core.Session
	for rows.Next() {
		var (
			id               int64
			scenario, styleS string
			convJSON, fbJSON string
			ts               string
		)
		if err := rows.Scan(&id, &scenario, &styleS, &convJSON, &fbJSON, &ts); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}

		sess := &core.Session{
			Scenario: scenario,
			Style:    core.Style(styleS),
		}
		if err := json.Unmarshal([]byte(convJSON), &sess.Conversation); err != nil {
			slog.Warn("Skipping corrupt session row", "id", id, "error", err)
			continue
		}
		var fb core.Feedback
		if err := json.Unmarshal([]byte(fbJSON), &fb); err != nil {
			slog.Warn("Skipping corrupt session row", "id", id, "error", err)
			continue
		}
		sess.Feedback = &fb

		parsed, err := time.ParseInLocation(core.TimestampLayout, ts, time.Local)
		if err != nil {
			slog.Warn("Skipping corrupt session row", "id", id, "error", err)
			continue
		}
		sess.Timestamp = core.Timestamp(parsed)

		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
