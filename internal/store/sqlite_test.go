package store

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "parley.db"))
	if err != nil {
		t.Fatalf("new sqlite store: %v", err)
	}
	if err := s.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRoundTrip(t *testing.T) {
	s := newTestSQLite(t)

	want := sampleSession("vendor contract")
	if err := s.Append(want); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 session, got %d", len(got))
	}
	if !reflect.DeepEqual(got[0], want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got[0], want)
	}
}

func TestSQLiteOrder(t *testing.T) {
	s := newTestSQLite(t)

	for _, scenario := range []string{"first", "second", "third"} {
		if err := s.Append(sampleSession(scenario)); err != nil {
			t.Fatalf("append %s: %v", scenario, err)
		}
	}

	sessions, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("want 3 sessions, got %d", len(sessions))
	}
	for i, want := range []string{"first", "second", "third"} {
		if sessions[i].Scenario != want {
			t.Errorf("session %d: got %s, want %s", i, sessions[i].Scenario, want)
		}
	}
}

func TestSQLiteSkipsCorruptRows(t *testing.T) {
	s := newTestSQLite(t)

	if err := s.Append(sampleSession("good")); err != nil {
		t.Fatal(err)
	}
	if _, err := s.db.Exec(
		`INSERT INTO sessions (scenario, style, conversation_json, feedback_json, timestamp) VALUES (?, ?, ?, ?, ?)`,
		"bad", "Neutral", "{not json", "{}", "2025-01-01 00:00:00"); err != nil {
		t.Fatal(err)
	}

	sessions, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sessions) != 1 || sessions[0].Scenario != "good" {
		t.Errorf("corrupt row should be skipped, got %d sessions", len(sessions))
	}
}

func TestSQLiteRejectsUnfinishedSession(t *testing.T) {
	s := newTestSQLite(t)

	sess := sampleSession("unfinished")
	sess.Feedback = nil
	if err := s.Append(sess); !errors.Is(err, ErrNoFeedback) {
		t.Errorf("want ErrNoFeedback, got %v", err)
	}
}
