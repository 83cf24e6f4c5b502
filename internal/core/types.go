// Package core contains the core domain types for parley.
package core

import (
	"fmt"
	"time"
)

// Style is the conversation style the AI counterpart adopts.
type Style string

const (
	StyleCollaborative Style = "Collaborative"
	StyleAggressive    Style = "Aggressive"
	StyleNeutral       Style = "Neutral"
)

// Turn is a single exchange in a negotiation: what the user said and what
// the counterpart answered. Immutable once appended to a conversation.
type Turn struct {
	User string `json:"user"`
	AI   string `json:"ai"`
}

// Conversation is the ordered transcript of a session. Order is meaningful.
type Conversation []Turn

// Scores holds the three feedback metrics, each clamped to [0, 10].
type Scores struct {
	Clarity        float64 `json:"Clarity"`
	Persuasiveness float64 `json:"Persuasiveness"`
	Total          float64 `json:"Total"`
}

// Feedback is the scored report produced when a session ends. It is derived
// from the conversation and scenario and never mutated afterwards.
type Feedback struct {
	Summary             string   `json:"summary"`
	Improvements        []string `json:"improvements"`
	Score               Scores   `json:"score"`
	PointsToConsider    string   `json:"points_to_consider"`
	PerformanceAnalysis string   `json:"performance_analysis"`
}

// TimestampLayout is the wire format for session timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// Timestamp marshals as "YYYY-MM-DD HH:MM:SS" to match the session log format.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", time.Time(t).Format(TimestampLayout))), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid timestamp: %s", s)
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s[1:len(s)-1], time.Local)
	if err != nil {
		return fmt.Errorf("invalid timestamp: %w", err)
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// Session is one negotiation practice session. Feedback is nil while the
// session is in progress and set exactly once when it ends; a session is
// only persisted with feedback present.
type Session struct {
	Scenario     string       `json:"scenario"`
	Style        Style        `json:"style"`
	Conversation Conversation `json:"conversation"`
	Feedback     *Feedback    `json:"feedback"`
	Timestamp    Timestamp    `json:"timestamp"`
}

// SessionSummary is a lightweight representation for listing sessions.
type SessionSummary struct {
	Index     int       `json:"index"`
	Scenario  string    `json:"scenario"`
	Style     Style     `json:"style"`
	Turns     int       `json:"turns"`
	Total     float64   `json:"total_score"`
	Timestamp Timestamp `json:"timestamp"`
}

// Summarize builds a SessionSummary for list views.
func (s *Session) Summarize(index int) SessionSummary {
	sum := SessionSummary{
		Index:     index,
		Scenario:  s.Scenario,
		Style:     s.Style,
		Turns:     len(s.Conversation),
		Timestamp: s.Timestamp,
	}
	if s.Feedback != nil {
		sum.Total = s.Feedback.Score.Total
	}
	return sum
}
