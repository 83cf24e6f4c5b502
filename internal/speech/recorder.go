// Package speech handles audio capture with energy-based endpointing,
// plus PCM encoding and playback helpers.
package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
)

// ChunkSource yields fixed-size PCM16 mono chunks. Implementations block
// until a chunk is available and return io.EOF when the stream ends.
type ChunkSource interface {
	ReadChunk() ([]int16, error)
}

// State of the endpointing machine.
type State int

const (
	// StateIdle means no speech has been detected yet.
	StateIdle State = iota
	// StateListening means speech has started; trailing silence is counted.
	StateListening
	// StateEndpointed means the utterance is complete.
	StateEndpointed
)

// Config holds the recorder tuning parameters.
type Config struct {
	SampleRate       int           // samples per second
	ChunkSize        int           // samples per chunk
	SilenceThreshold float64       // RMS energy below this counts as silence
	SilenceTimeout   time.Duration // trailing silence that ends an utterance
	MaxDuration      time.Duration // hard cap on total capture time, 0 = unbounded
}

// DefaultConfig returns the default capture parameters: 16kHz mono,
// 1024-sample chunks, 2s silence window, 60s hard cap.
func DefaultConfig() Config {
	return Config{
		SampleRate:       16000,
		ChunkSize:        1024,
		SilenceThreshold: 500,
		SilenceTimeout:   2 * time.Second,
		MaxDuration:      60 * time.Second,
	}
}

// ErrNoSpeech is returned when capture ends before any speech was detected.
var ErrNoSpeech = errors.New("no speech detected")

// CaptureError wraps failures of the audio capture stage.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("audio capture failed: %v", e.Err)
}

func (e *CaptureError) Unwrap() error {
	return e.Err
}

// Recorder pulls chunks from a source until the speaker has stopped. It
// requires speech to start before it can endpoint on silence; the MaxDuration
// cap bounds the wait when no speech ever arrives.
type Recorder struct {
	cfg Config
	src ChunkSource
}

// NewRecorder creates a recorder over the given chunk source.
func NewRecorder(cfg Config, src ChunkSource) *Recorder {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 16000
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1024
	}
	return &Recorder{cfg: cfg, src: src}
}

// Capture records until the silence timeout elapses after speech, the source
// is exhausted, the duration cap is hit, or ctx is cancelled. All chunks read
// are part of the returned samples, including leading and trailing silence.
func (r *Recorder) Capture(ctx context.Context) ([]int16, error) {
	var (
		samples       []int16
		state         = StateIdle
		silentChunks  int
		timeoutChunks = r.silenceTimeoutChunks()
		maxSamples    = r.maxSamples()
	)

	for state != StateEndpointed {
		select {
		case <-ctx.Done():
			return nil, &CaptureError{Err: ctx.Err()}
		default:
		}

		chunk, err := r.src.ReadChunk()
		if err != nil {
			if errors.Is(err, io.EOF) {
				// Stream ended; a started utterance is complete, an
				// all-silent one is a failed capture.
				if state == StateListening {
					return samples, nil
				}
				return nil, &CaptureError{Err: ErrNoSpeech}
			}
			return nil, &CaptureError{Err: err}
		}
		if len(chunk) == 0 {
			continue
		}

		samples = append(samples, chunk...)

		if Energy(chunk) > r.cfg.SilenceThreshold {
			state = StateListening
			silentChunks = 0
		} else if state == StateListening {
			silentChunks++
			if silentChunks > timeoutChunks {
				state = StateEndpointed
			}
		}

		if maxSamples > 0 && len(samples) >= maxSamples {
			if state == StateListening {
				return samples, nil
			}
			return nil, &CaptureError{Err: ErrNoSpeech}
		}
	}

	return samples, nil
}

func (r *Recorder) silenceTimeoutChunks() int {
	chunkDur := float64(r.cfg.ChunkSize) / float64(r.cfg.SampleRate)
	return int(r.cfg.SilenceTimeout.Seconds() / chunkDur)
}

func (r *Recorder) maxSamples() int {
	if r.cfg.MaxDuration <= 0 {
		return 0
	}
	return int(r.cfg.MaxDuration.Seconds() * float64(r.cfg.SampleRate))
}

// Energy computes the RMS energy of a PCM16 chunk.
func Energy(chunk []int16) float64 {
	if len(chunk) == 0 {
		return 0
	}
	var sum float64
	for _, s := range chunk {
		f := float64(s)
		sum += f * f
	}
	return math.Sqrt(sum / float64(len(chunk)))
}
