package session

import (
	"context"
	"errors"
	"testing"

	"github.com/parleyhq/parley/internal/core"
	"github.com/parleyhq/parley/internal/provider"
	"github.com/parleyhq/parley/internal/store"
)

// stubs with overridable behavior per test

type stubCapturer struct {
	err error
}

func (s *stubCapturer) Capture(ctx context.Context) ([]int16, error) {
	if s.err != nil {
		return nil, s.err
	}
	return make([]int16, 1600), nil
}

type stubTranscriber struct {
	text string
	err  error
}

func (s *stubTranscriber) Transcribe(ctx context.Context, samples []int16) (string, error) {
	return s.text, s.err
}

type stubClassifier struct {
	err error
}

func (s *stubClassifier) ClassifyEmotion(ctx context.Context, text string) (string, error) {
	return "calm", s.err
}

type stubGenerator struct {
	err  error
	last provider.ResponseRequest
}

func (s *stubGenerator) GenerateResponse(ctx context.Context, req provider.ResponseRequest) (string, error) {
	s.last = req
	return "counter-offer", s.err
}

type stubSynthesizer struct {
	err   error
	calls int
}

func (s *stubSynthesizer) Synthesize(ctx context.Context, text string) error {
	s.calls++
	return s.err
}

type memStore struct {
	appendErr error
	sessions  []*core.Session
}

func (m *memStore) Append(s *core.Session) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.sessions = append(m.sessions, s)
	return nil
}

func (m *memStore) LoadAll() ([]*core.Session, error) { return m.sessions, nil }
func (m *memStore) Close() error                      { return nil }

type fixture struct {
	capturer    *stubCapturer
	transcriber *stubTranscriber
	classifier  *stubClassifier
	generator   *stubGenerator
	synthesizer *stubSynthesizer
	store       *memStore
	coach       *Coach
}

func newFixture() *fixture {
	f := &fixture{
		capturer:    &stubCapturer{},
		transcriber: &stubTranscriber{text: "I want a raise."},
		classifier:  &stubClassifier{},
		generator:   &stubGenerator{},
		synthesizer: &stubSynthesizer{},
		store:       &memStore{},
	}
	f.coach = New(Deps{
		Capturer:    f.capturer,
		Transcriber: f.transcriber,
		Classifier:  f.classifier,
		Generator:   f.generator,
		Synthesizer: f.synthesizer,
		Store:       f.store,
	})
	return f
}

func TestStartRunsFirstTurn(t *testing.T) {
	f := newFixture()

	turn, err := f.coach.Start(context.Background(), "salary talk", core.StyleNeutral)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if f.coach.Status() != StatusActive {
		t.Errorf("status after start: got %s, want %s", f.coach.Status(), StatusActive)
	}
	if turn.User != "I want a raise." || turn.AI != "counter-offer" {
		t.Errorf("unexpected turn: %+v", turn)
	}
	if got := len(f.coach.Current().Conversation); got != 1 {
		t.Errorf("conversation length: got %d, want 1", got)
	}
	if f.generator.last.Scenario != "salary talk" || f.generator.last.Emotion != "calm" {
		t.Errorf("generator request not threaded through: %+v", f.generator.last)
	}
	if f.synthesizer.calls != 1 {
		t.Errorf("synthesizer calls: got %d, want 1", f.synthesizer.calls)
	}
}

func TestStartWhileActive(t *testing.T) {
	f := newFixture()
	if _, err := f.coach.Start(context.Background(), "a", core.StyleNeutral); err != nil {
		t.Fatal(err)
	}
	if _, err := f.coach.Start(context.Background(), "b", core.StyleNeutral); !errors.Is(err, ErrSessionActive) {
		t.Errorf("want ErrSessionActive, got %v", err)
	}
}

func TestContinueWithoutSession(t *testing.T) {
	f := newFixture()
	if _, err := f.coach.Continue(context.Background()); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("want ErrNoActiveSession, got %v", err)
	}
	if _, err := f.coach.End(context.Background()); !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("want ErrNoActiveSession, got %v", err)
	}
}

func TestTranscriptionFailureAbortsTurnOnly(t *testing.T) {
	f := newFixture()
	if _, err := f.coach.Start(context.Background(), "a", core.StyleNeutral); err != nil {
		t.Fatal(err)
	}

	f.transcriber.err = errors.New("service down")
	_, err := f.coach.Continue(context.Background())

	var trErr *provider.TranscriptionError
	if !errors.As(err, &trErr) {
		t.Fatalf("want TranscriptionError, got %v", err)
	}
	if f.coach.Status() != StatusActive {
		t.Error("session should remain active after a failed turn")
	}
	if got := len(f.coach.Current().Conversation); got != 1 {
		t.Errorf("conversation length changed: got %d, want 1", got)
	}

	// the turn can be retried
	f.transcriber.err = nil
	if _, err := f.coach.Continue(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if got := len(f.coach.Current().Conversation); got != 2 {
		t.Errorf("conversation length after retry: got %d, want 2", got)
	}
}

func TestEmptyTranscriptFailsTurn(t *testing.T) {
	f := newFixture()
	f.transcriber.text = "   "

	_, err := f.coach.Start(context.Background(), "a", core.StyleNeutral)
	if !errors.Is(err, provider.ErrEmptyTranscript) {
		t.Fatalf("want ErrEmptyTranscript, got %v", err)
	}
	if f.coach.Status() != StatusActive {
		t.Error("session should remain active")
	}
}

func TestAdapterFailureTypes(t *testing.T) {
	t.Run("Classification", func(t *testing.T) {
		f := newFixture()
		f.classifier.err = errors.New("boom")
		_, err := f.coach.Start(context.Background(), "a", core.StyleNeutral)
		var clErr *provider.ClassificationError
		if !errors.As(err, &clErr) {
			t.Errorf("want ClassificationError, got %v", err)
		}
	})

	t.Run("Generation", func(t *testing.T) {
		f := newFixture()
		f.generator.err = errors.New("boom")
		_, err := f.coach.Start(context.Background(), "a", core.StyleNeutral)
		var genErr *provider.GenerationError
		if !errors.As(err, &genErr) {
			t.Errorf("want GenerationError, got %v", err)
		}
	})
}

func TestSynthesisFailureIsNonFatal(t *testing.T) {
	f := newFixture()
	f.synthesizer.err = errors.New("no speakers")

	turn, err := f.coach.Start(context.Background(), "a", core.StyleNeutral)
	if err != nil {
		t.Fatalf("synthesis failure should not fail the turn: %v", err)
	}
	if turn.AI != "counter-offer" {
		t.Errorf("turn text should still be recorded: %+v", turn)
	}
}

func TestEndComputesFeedbackAndPersists(t *testing.T) {
	f := newFixture()
	if _, err := f.coach.Start(context.Background(), "salary talk", core.StyleCollaborative); err != nil {
		t.Fatal(err)
	}

	sess, err := f.coach.End(context.Background())
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if sess.Feedback == nil {
		t.Fatal("ended session has no feedback")
	}
	want := (sess.Feedback.Score.Clarity + sess.Feedback.Score.Persuasiveness) / 2
	if sess.Feedback.Score.Total != want {
		t.Errorf("total: got %v, want %v", sess.Feedback.Score.Total, want)
	}

	if f.coach.Status() != StatusNotStarted {
		t.Errorf("status after end: got %s, want %s", f.coach.Status(), StatusNotStarted)
	}
	if f.coach.Current() != nil {
		t.Error("current session should be cleared")
	}
	if f.coach.Last() != sess {
		t.Error("ended session should stay available via Last")
	}
	if len(f.store.sessions) != 1 {
		t.Errorf("persisted sessions: got %d, want 1", len(f.store.sessions))
	}

	// a new negotiation can start right away and clears the last session
	if _, err := f.coach.Start(context.Background(), "next", core.StyleNeutral); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if f.coach.Last() != nil {
		t.Error("starting a new negotiation should clear the last session")
	}
}

func TestEndWithEmptyConversation(t *testing.T) {
	f := newFixture()
	f.transcriber.err = errors.New("down")
	if _, err := f.coach.Start(context.Background(), "a", core.StyleNeutral); err == nil {
		t.Fatal("expected first turn to fail")
	}

	sess, err := f.coach.End(context.Background())
	if err != nil {
		t.Fatalf("ending an empty session should not fail: %v", err)
	}
	if sess.Feedback.Score.Total != 0 || sess.Feedback.Score.Clarity != 0 {
		t.Errorf("empty conversation should score zero: %+v", sess.Feedback.Score)
	}
	if len(f.store.sessions) != 1 {
		t.Error("empty session should still be persistable")
	}
}

func TestEndSurfacesPersistenceWarning(t *testing.T) {
	f := newFixture()
	f.store.appendErr = errors.New("disk full")
	if _, err := f.coach.Start(context.Background(), "a", core.StyleNeutral); err != nil {
		t.Fatal(err)
	}

	sess, err := f.coach.End(context.Background())
	var perr *store.PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("want PersistenceError, got %v", err)
	}
	if sess == nil || sess.Feedback == nil {
		t.Fatal("session must survive a persistence failure")
	}
	if f.coach.Last() != sess {
		t.Error("session should remain exportable from memory")
	}
}

func TestEvents(t *testing.T) {
	f := newFixture()
	var stages []string
	f.coach.SetEvents(Events{
		OnListening:  func() { stages = append(stages, "listening") },
		OnTranscript: func(string) { stages = append(stages, "transcript") },
		OnEmotion:    func(string) { stages = append(stages, "emotion") },
		OnResponse:   func(string) { stages = append(stages, "response") },
	})

	if _, err := f.coach.Start(context.Background(), "a", core.StyleNeutral); err != nil {
		t.Fatal(err)
	}

	want := []string{"listening", "transcript", "emotion", "response"}
	if len(stages) != len(want) {
		t.Fatalf("stages: got %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stage %d: got %s, want %s", i, stages[i], want[i])
		}
	}
}
