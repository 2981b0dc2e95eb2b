// Package audio provides microphone capture and the PCM plumbing between the
// capture process and the outbound media track.
package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"sync"

	"github.com/lexiqai/translate-client/internal/observability"
)

// CaptureConfig describes the microphone input. Mono only; the remote peer
// expects a single channel.
type CaptureConfig struct {
	FFmpegPath  string
	InputFormat string // ffmpeg input demuxer, e.g. "pulse", "alsa", "avfoundation"
	InputDevice string
	SampleRate  int
	FrameMs     int // duration of one emitted frame
}

// Capture delivers fixed-size mono PCM frames from a local microphone.
type Capture interface {
	Start(ctx context.Context) error
	Frames() <-chan []int16
	Stop() error
}

// ErrCaptureDenied wraps capture-start failures so callers can surface them
// as a permission problem rather than a generic fault.
var ErrCaptureDenied = errors.New("microphone capture unavailable")

// FFmpegCapture shells out to ffmpeg for microphone access, reading raw
// s16le PCM from its stdout.
type FFmpegCapture struct {
	cfg    CaptureConfig
	frames chan []int16

	mu     sync.Mutex
	cmd    *exec.Cmd
	stdout io.ReadCloser
	quit   chan struct{}
	done   chan struct{}
}

// NewFFmpegCapture creates an unstarted capture. Zero-valued config fields
// get sensible defaults (pulse "default" device, 8 kHz, 20 ms frames).
func NewFFmpegCapture(cfg CaptureConfig) *FFmpegCapture {
	if cfg.FFmpegPath == "" {
		cfg.FFmpegPath = "ffmpeg"
	}
	if cfg.InputFormat == "" {
		cfg.InputFormat = "pulse"
	}
	if cfg.InputDevice == "" {
		cfg.InputDevice = "default"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 8000
	}
	if cfg.FrameMs <= 0 {
		cfg.FrameMs = 20
	}
	return &FFmpegCapture{cfg: cfg}
}

// Start launches the capture process. Failure to start is reported as
// ErrCaptureDenied so the session surfaces it as a permission error.
func (c *FFmpegCapture) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cmd != nil {
		return errors.New("capture already started")
	}

	args := []string{
		"-nostdin",
		"-hide_banner",
		"-loglevel", "error",
		"-f", c.cfg.InputFormat,
		"-i", c.cfg.InputDevice,
		"-ac", "1",
		"-ar", strconv.Itoa(c.cfg.SampleRate),
		"-f", "s16le",
		"-",
	}
	cmd := exec.CommandContext(ctx, c.cfg.FFmpegPath, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureDenied, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrCaptureDenied, err)
	}

	c.cmd = cmd
	c.stdout = stdout
	c.frames = make(chan []int16, 16)
	c.quit = make(chan struct{})
	c.done = make(chan struct{})

	go c.pump()
	return nil
}

// Frames returns the channel of captured PCM frames. Closed when the capture
// stops or the process exits.
func (c *FFmpegCapture) Frames() <-chan []int16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Stop terminates the capture process. Idempotent; safe to call whether or
// not the process is still running.
func (c *FFmpegCapture) Stop() error {
	c.mu.Lock()
	cmd := c.cmd
	stdout := c.stdout
	quit := c.quit
	done := c.done
	c.cmd = nil
	c.stdout = nil
	c.mu.Unlock()

	if cmd == nil {
		return nil
	}
	close(quit)
	if cmd.Process != nil {
		_ = cmd.Process.Signal(os.Interrupt)
	}
	if stdout != nil {
		_ = stdout.Close()
	}
	<-done
	return nil
}

func (c *FFmpegCapture) pump() {
	logger := observability.GetLogger().With().Str("component", "capture").Logger()
	defer close(c.done)
	defer close(c.frames)

	samplesPerFrame := c.cfg.SampleRate * c.cfg.FrameMs / 1000
	buf := make([]byte, samplesPerFrame*2)
	for {
		if _, err := io.ReadFull(c.stdoutReader(), buf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) && !errors.Is(err, io.ErrUnexpectedEOF) {
				logger.Warn().Err(err).Msg("Capture read failed")
			}
			c.reap()
			return
		}
		frame := make([]int16, samplesPerFrame)
		for i := range frame {
			frame[i] = int16(binary.LittleEndian.Uint16(buf[i*2:]))
		}
		observability.AddAudioBytes(len(buf))
		select {
		case c.frames <- frame:
		case <-c.quit:
			c.reap()
			return
		}
	}
}

func (c *FFmpegCapture) stdoutReader() io.Reader {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stdout == nil {
		return eofReader{}
	}
	return c.stdout
}

func (c *FFmpegCapture) reap() {
	c.mu.Lock()
	cmd := c.cmd
	c.mu.Unlock()
	if cmd != nil {
		_ = cmd.Wait()
	}
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }
