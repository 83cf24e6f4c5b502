// Package session orchestrates negotiation practice sessions: the
// NotStarted -> Active -> Ended lifecycle and the per-turn pipeline of
// capture, transcription, emotion classification, response generation and
// speech synthesis.
package session

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/feedback"
	"github.com/parleyhq/parley/internal/provider"
	"github.com/parleyhq/parley/internal/store"
)

// Status is the lifecycle state of the coach.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusActive     Status = "active"
	StatusEnded      Status = "ended"
)

var (
	// ErrSessionActive is returned when starting while a session is running.
	ErrSessionActive = errors.New("a negotiation is already in progress")
	// ErrNoActiveSession is returned by Continue/End without a session.
	ErrNoActiveSession = errors.New("no negotiation in progress")
)

// Deps are the collaborators the coach drives. All are required except
// Store, which may be nil when persistence is not wanted.
type Deps struct {
	Capturer    provider.Capturer
	Transcriber provider.Transcriber
	Classifier  provider.EmotionClassifier
	Generator   provider.ResponseGenerator
	Synthesizer provider.Synthesizer
	Store       store.Store
}

// Events are optional callbacks fired as a turn progresses, so a caller can
// narrate the pipeline stages. Nil callbacks are skipped.
type Events struct {
	OnListening  func()
	OnTranscript func(text string)
	OnEmotion    func(label string)
	OnResponse   func(text string)
}

// Coach owns at most one active session and runs its turns sequentially.
// It is not safe for concurrent use; the model is single-user, one turn at
// a time.
type Coach struct {
	deps   Deps
	events Events

	status  Status
	current *core.Session
	last    *core.Session
}

// New creates a coach in the NotStarted state.
func New(deps Deps) *Coach {
	return &Coach{deps: deps, status: StatusNotStarted}
}

// SetEvents installs progress callbacks.
func (c *Coach) SetEvents(ev Events) {
	c.events = ev
}

// Status returns the lifecycle state.
func (c *Coach) Status() Status {
	return c.status
}

// Current returns the active session, or nil.
func (c *Coach) Current() *core.Session {
	return c.current
}

// Last returns the most recently ended session. It stays available for
// display and export until a new negotiation starts.
func (c *Coach) Last() *core.Session {
	return c.last
}

// Start begins a new session and immediately executes its first turn;
// starting a negotiation and speaking the first exchange are one action.
// If the first turn fails the session stays active so the caller can retry
// with Continue.
func (c *Coach) Start(ctx context.Context, scenario string, style core.Style) (*core.Turn, error) {
	if c.status == StatusActive {
		return nil, ErrSessionActive
	}

	c.current = &core.Session{
		Scenario:  scenario,
		Style:     style,
		Timestamp: core.Timestamp(time.Now()),
	}
	c.last = nil
	c.status = StatusActive
	slog.Info("Negotiation started", "scenario", scenario, "style", style)

	return c.executeTurn(ctx)
}

// Continue executes the next turn of the active session. Adapter failures
// abort only the turn; the session remains active and Continue may be
// called again.
func (c *Coach) Continue(ctx context.Context) (*core.Turn, error) {
	if c.status != StatusActive {
		return nil, ErrNoActiveSession
	}
	return c.executeTurn(ctx)
}

// End finishes the active session: computes feedback, freezes the
// conversation and appends the session to the store. The ended session is
// always returned and retained in memory; a persistence failure is reported
// alongside it so the caller can warn without losing the session.
func (c *Coach) End(ctx context.Context) (*core.Session, error) {
	if c.status != StatusActive {
		return nil, ErrNoActiveSession
	}

	sess := c.current
	sess.Feedback = feedback.Generate(sess.Conversation, sess.Scenario)

	c.current = nil
	c.last = sess
	c.status = StatusNotStarted
	slog.Info("Negotiation ended",
		"turns", len(sess.Conversation),
		"total_score", sess.Feedback.Score.Total)

	if c.deps.Store != nil {
		if err := c.deps.Store.Append(sess); err != nil {
			return sess, &store.PersistenceError{Err: err}
		}
	}
	return sess, nil
}

// executeTurn runs the capture-through-synthesis pipeline once and appends
// the resulting turn to the conversation. No step is retried; the first
// failure aborts the turn and surfaces, except synthesis which is logged
// and swallowed.
func (c *Coach) executeTurn(ctx context.Context) (*core.Turn, error) {
	sess := c.current

	c.emit(c.events.OnListening)
	samples, err := c.deps.Capturer.Capture(ctx)
	if err != nil {
		return nil, err
	}
	slog.Debug("Capture complete", "samples", len(samples))

	userText, err := c.deps.Transcriber.Transcribe(ctx, samples)
	if err != nil {
		return nil, &provider.TranscriptionError{Err: err}
	}
	if strings.TrimSpace(userText) == "" {
		return nil, &provider.TranscriptionError{Err: provider.ErrEmptyTranscript}
	}
	c.emitText(c.events.OnTranscript, userText)

	emotion, err := c.deps.Classifier.ClassifyEmotion(ctx, userText)
	if err != nil {
		return nil, &provider.ClassificationError{Err: err}
	}
	c.emitText(c.events.OnEmotion, emotion)

	aiText, err := c.deps.Generator.GenerateResponse(ctx, provider.ResponseRequest{
		Scenario: sess.Scenario,
		Style:    sess.Style,
		Emotion:  emotion,
		UserText: userText,
	})
	if err != nil {
		return nil, &provider.GenerationError{Err: err}
	}
	c.emitText(c.events.OnResponse, aiText)

	// Playback failure does not invalidate the turn.
	if err := c.deps.Synthesizer.Synthesize(ctx, aiText); err != nil {
		synthErr := &provider.SynthesisError{Err: err}
		slog.Warn("Speech playback failed", "error", synthErr)
	}

	turn := core.Turn{User: userText, AI: aiText}
	sess.Conversation = append(sess.Conversation, turn)
	slog.Debug("Turn complete", "turn", len(sess.Conversation), "emotion", emotion)
	return &turn, nil
}

func (c *Coach) emit(fn func()) {
	if fn != nil {
		fn()
	}
}

func (c *Coach) emitText(fn func(string), text string) {
	if fn != nil {
		fn(text)
	}
}
