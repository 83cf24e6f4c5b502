// Package provider contains the external-service adapter contracts the
// session pipeline depends on, and their OpenAI-backed implementations.
package provider

import (
	"context"

	"github.com/parleyhq/parley/internal/core"
)

// Capturer records one utterance of PCM16 mono audio, blocking until the
// speaker has stopped.
type Capturer interface {
	Capture(ctx context.Context) ([]int16, error)
}

// Transcriber converts captured audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, samples []int16) (string, error)
}

// EmotionClassifier labels the emotional tone of a text. The label is a
// short free-form string; no vocabulary is enforced.
type EmotionClassifier interface {
	ClassifyEmotion(ctx context.Context, text string) (string, error)
}

// ResponseRequest carries everything the counterpart needs for its next line.
type ResponseRequest struct {
	Scenario string
	Style    core.Style
	Emotion  string
	UserText string
}

// ResponseGenerator produces the counterpart's next utterance.
type ResponseGenerator interface {
	GenerateResponse(ctx context.Context, req ResponseRequest) (string, error)
}

// Synthesizer speaks a text out loud. The audio playback is a side effect;
// failures here do not invalidate a turn.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) error
}
