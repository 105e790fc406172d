// Package speech reads listening scripts aloud through an external
// text-to-speech program.
package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// ErrNoCommand is returned when no speech program is configured or found.
var ErrNoCommand = errors.New("speech: no command available")

// Speaker plays text aloud. Playback is best-effort.
type Speaker interface {
	// Speak blocks until playback ends, is cancelled, or ctx is done.
	// Cancellation is not an error.
	Speak(ctx context.Context, text string) error

	// Cancel stops any playback in progress. Safe to call at any time.
	Cancel()
}

// Nop is a Speaker that does nothing.
type Nop struct{}

func (Nop) Speak(context.Context, string) error { return nil }
func (Nop) Cancel() {}

// candidates are probed in order by Detect.
var candidates = []string{"espeak-ng -v it", "espeak -v it", "say -v Alice", "spd-say -w -l it"}

// Command runs an external program with the text as its last argument.
// Only one playback runs at a time; starting a new one stops the previous.
type Command struct {
	name string
	args []string

	mu     sync.Mutex
	cancel context.CancelFunc
	seq    uint64
}

// NewCommand parses a command line such as "espeak -v it".
func NewCommand(line string) (*Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, ErrNoCommand
	}
	return &Command{name: fields[0], args: fields[1:]}, nil
}

// Detect returns a Command for the first known speech program on PATH.
func Detect() (*Command, error) {
	for _, line := range candidates {
		fields := strings.Fields(line)
		if _, err := exec.LookPath(fields[0]); err == nil {
			return NewCommand(line)
		}
	}
	return nil, ErrNoCommand
}

// New returns a Command for line, a detected program when line is "auto",
// or Nop when line is empty or nothing is found.
func New(line string) Speaker {
	switch strings.TrimSpace(line) {
	case "", "off", "none":
		return Nop{}
	case "auto":
		if c, err := Detect(); err == nil {
			return c
		}
		return Nop{}
	}
	c, err := NewCommand(line)
	if err != nil {
		return Nop{}
	}
	return c
}

// Name returns the program name.
func (c *Command) Name() string { return c.name }

func (c *Command) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if _, err := exec.LookPath(c.name); err != nil {
		return fmt.Errorf("speech: %s not found in PATH: %w", c.name, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.seq++
	seq := c.seq
	c.mu.Unlock()

	args := append(append([]string(nil), c.args...), text)
	cmd := exec.CommandContext(ctx, c.name, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	err := cmd.Run()

	c.mu.Lock()
	if c.seq == seq {
		c.cancel = nil
	}
	c.mu.Unlock()

	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("speech: %s: %w", c.name, err)
		}
		return fmt.Errorf("speech: %s: %w: %s", c.name, err, msg)
	}
	return nil
}

func (c *Command) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
