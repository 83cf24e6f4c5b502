package provider

import (
	"context"
	"fmt"
	"sync"

	"github.com/parleyhq/parley/internal/core"
)

// Mock implements every adapter contract with canned content so the full
// pipeline can run without a microphone or an API key.
type Mock struct {
	mu   sync.Mutex
	turn int
}

// NewMock creates a mock adapter suite.
func NewMock() *Mock {
	return &Mock{}
}

var mockUtterances = []string{
	"I think my contribution over the last year justifies a better offer.",
	"I hear your concerns, but the market data supports my position.",
	"Could we meet in the middle and revisit the numbers in six months?",
}

var mockEmotions = []string{"confident", "calm", "hopeful"}

// Capture returns a short synthetic utterance: silence, a burst of energy,
// then trailing silence.
func (m *Mock) Capture(ctx context.Context) ([]int16, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	samples := make([]int16, 16000)
	for i := 4000; i < 12000; i++ {
		samples[i] = 6000
	}
	return samples, nil
}

// Transcribe returns a canned user utterance, rotating per turn.
func (m *Mock) Transcribe(ctx context.Context, samples []int16) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	text := mockUtterances[m.turn%len(mockUtterances)]
	m.mu.Unlock()
	return text, nil
}

// ClassifyEmotion returns a canned emotion label.
func (m *Mock) ClassifyEmotion(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	label := mockEmotions[m.turn%len(mockEmotions)]
	m.mu.Unlock()
	return label, nil
}

// GenerateResponse returns a simulated counterpart reply and advances the
// canned-turn counter.
func (m *Mock) GenerateResponse(ctx context.Context, req ResponseRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	m.turn++
	n := m.turn
	m.mu.Unlock()

	tone := "Let's see if we can find something workable."
	if req.Style == core.StyleAggressive {
		tone = "That's not going to fly with me."
	}
	return fmt.Sprintf("[simulated %s counterpart, turn %d] You said %q while sounding %s. %s",
		req.Style, n, truncate(req.UserText, 40), req.Emotion, tone), nil
}

// Synthesize is a no-op.
func (m *Mock) Synthesize(ctx context.Context, text string) error {
	return ctx.Err()
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
