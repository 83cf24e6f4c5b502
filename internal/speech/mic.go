package speech

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
)

// MicSource reads PCM16 mono audio from a recording subprocess. It shells out
// to the first available capture tool rather than binding an audio library,
// matching the single-user CLI model.
type MicSource struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	chunk  int
	buf    []byte
}

// recorders lists known capture commands and their raw-PCM arguments.
// %d placeholders are the sample rate.
func recorderCommand(rate int) (string, []string, bool) {
	r := strconv.Itoa(rate)
	candidates := []struct {
		name string
		args []string
	}{
		{"arecord", []string{"-q", "-f", "S16_LE", "-c", "1", "-r", r, "-t", "raw"}},
		{"rec", []string{"-q", "-t", "raw", "-b", "16", "-e", "signed-integer", "-c", "1", "-r", r, "-"}},
		{"sox", []string{"-q", "-d", "-t", "raw", "-b", "16", "-e", "signed-integer", "-c", "1", "-r", r, "-"}},
	}
	for _, c := range candidates {
		if _, err := exec.LookPath(c.name); err == nil {
			return c.name, c.args, true
		}
	}
	return "", nil, false
}

// NewMicSource starts a capture subprocess producing ChunkSize-sample chunks.
func NewMicSource(cfg Config) (*MicSource, error) {
	name, args, ok := recorderCommand(cfg.SampleRate)
	if !ok {
		return nil, &CaptureError{Err: fmt.Errorf("no audio capture tool found (tried arecord, rec, sox)")}
	}

	cmd := exec.Command(name, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &CaptureError{Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &CaptureError{Err: fmt.Errorf("start %s: %w", name, err)}
	}
	slog.Debug("Microphone capture started", "command", name, "sample_rate", cfg.SampleRate)

	return &MicSource{
		cmd:    cmd,
		stdout: stdout,
		chunk:  cfg.ChunkSize,
		buf:    make([]byte, cfg.ChunkSize*2),
	}, nil
}

// ReadChunk blocks until a full chunk of samples has been read.
func (m *MicSource) ReadChunk() ([]int16, error) {
	if _, err := io.ReadFull(m.stdout, m.buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return nil, err
	}
	samples := make([]int16, m.chunk)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(m.buf[i*2 : i*2+2]))
	}
	return samples, nil
}

// Close stops the capture subprocess.
func (m *MicSource) Close() error {
	_ = m.stdout.Close()
	if m.cmd.Process != nil {
		_ = m.cmd.Process.Kill()
	}
	_ = m.cmd.Wait()
	return nil
}
