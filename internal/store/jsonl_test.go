package store

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/parleyhq/parley/internal/core"
)

func sampleSession(scenario string) *core.Session {
	return &core.Session{
		Scenario: scenario,
		Style:    core.StyleCollaborative,
		Conversation: core.Conversation{
			{User: "I want a better deal.", AI: "Convince me."},
			{User: "My offer stands on market data.", AI: "Show me the data."},
		},
		Feedback: &core.Feedback{
			Summary:             "summary",
			Improvements:        []string{"one", "two", "three"},
			Score:               core.Scores{Clarity: 0.53, Persuasiveness: 0.31, Total: 0.42},
			PointsToConsider:    "points",
			PerformanceAnalysis: "analysis",
		},
		// second precision matches the wire format
		Timestamp: core.Timestamp(time.Now().Truncate(time.Second)),
	}
}

func TestJSONLRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	s, err := NewJSONL(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer s.Close()

	want := sampleSession("salary negotiation")
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

func TestJSONLMissingFile(t *testing.T) {
	s, err := NewJSONL(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	sessions, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load on missing file: %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("want empty history, got %d sessions", len(sessions))
	}
}

func TestJSONLSkipsCorruptLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	s, err := NewJSONL(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := s.Append(sampleSession("first")); err != nil {
		t.Fatalf("append: %v", err)
	}

	// simulate a torn write
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteString("{\"scenario\": \"torn\n"); err != nil {
		t.Fatal(err)
	}
	f.Close()

	if err := s.Append(sampleSession("second")); err != nil {
		t.Fatalf("append after corruption: %v", err)
	}

	sessions, err := s.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("want 2 sessions, got %d", len(sessions))
	}
	if sessions[0].Scenario != "first" || sessions[1].Scenario != "second" {
		t.Errorf("wrong order: %s, %s", sessions[0].Scenario, sessions[1].Scenario)
	}
}

func TestJSONLRejectsUnfinishedSession(t *testing.T) {
	s, err := NewJSONL(filepath.Join(t.TempDir(), "sessions.json"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	sess := sampleSession("unfinished")
	sess.Feedback = nil
	if err := s.Append(sess); !errors.Is(err, ErrNoFeedback) {
		t.Errorf("want ErrNoFeedback, got %v", err)
	}
}

func TestJSONLAppendOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	s, _ := NewJSONL(path)

	if err := s.Append(sampleSession("first")); err != nil {
		t.Fatal(err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Append(sampleSession("second")); err != nil {
		t.Fatal(err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if len(after) <= len(before) || string(after[:len(before)]) != string(before) {
		t.Error("append rewrote earlier records")
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open("parchment", "x"); err == nil {
		t.Error("expected error for unknown backend")
	}
}
