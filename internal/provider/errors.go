package provider

import (
	"errors"
	"fmt"
)

// ErrEmptyTranscript is returned when the transcription service succeeds but
// yields no text.
var ErrEmptyTranscript = errors.New("transcription returned empty text")

// TranscriptionError wraps failures of the speech-to-text stage.
type TranscriptionError struct {
	Err error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed: %v", e.Err)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Err
}

// ClassificationError wraps failures of the emotion-classification stage.
type ClassificationError struct {
	Err error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("emotion classification failed: %v", e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// GenerationError wraps failures of the response-generation stage.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("response generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// SynthesisError wraps failures of the text-to-speech stage. Non-fatal to a
// turn: the turn text is recorded even when playback fails.
type SynthesisError struct {
	Err error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis failed: %v", e.Err)
}

func (e *SynthesisError) Unwrap() error {
	return e.Err
}
