package speech

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
)

// Player plays synthesized audio out loud.
type Player interface {
	Play(ctx context.Context, audio io.Reader) error
}

// ExecPlayer plays audio through the first available command-line player.
type ExecPlayer struct {
	command string
}

var playerCommands = []string{"afplay", "mpg123", "mpv", "ffplay"}

// NewExecPlayer locates a CLI audio player. Returns an error when no player
// is installed; playback failures are non-fatal to a turn, so callers may
// choose to proceed without one.
func NewExecPlayer() (*ExecPlayer, error) {
	for _, name := range playerCommands {
		if _, err := exec.LookPath(name); err == nil {
			return &ExecPlayer{command: name}, nil
		}
	}
	return nil, fmt.Errorf("no audio player found (tried %v)", playerCommands)
}

// Play writes the audio to a temp file and plays it synchronously.
func (p *ExecPlayer) Play(ctx context.Context, audio io.Reader) error {
	dir, err := os.MkdirTemp("", "parley-audio-")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "response.mp3")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		return fmt.Errorf("write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	args := []string{path}
	if p.command == "ffplay" {
		args = []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
	}

	slog.Debug("Playing audio", "player", p.command, "file", path)
	cmd := exec.CommandContext(ctx, p.command, args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w", p.command, err)
	}
	return nil
}
