package speech

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"
)

func TestNewCommand_Empty(t *testing.T) {
	if _, err := NewCommand("   "); !errors.Is(err, ErrNoCommand) {
		t.Errorf("NewCommand(blank) error = %v, want ErrNoCommand", err)
	}
}

func TestNewCommand_Parses(t *testing.T) {
	c, err := NewCommand("espeak -v it")
	if err != nil {
		t.Fatalf("NewCommand: %v", err)
	}
	if c.Name() != "espeak" || len(c.args) != 2 || c.args[1] != "it" {
		t.Errorf("parsed %q %v", c.name, c.args)
	}
}

func TestNew_Off(t *testing.T) {
	for _, line := range []string{"", "off", "none"} {
		if _, ok := New(line).(Nop); !ok {
			t.Errorf("New(%q) should be Nop", line)
		}
	}
}

func TestSpeak_BlankTextIsNoop(t *testing.T) {
	c, _ := NewCommand("definitely-not-a-real-tts-binary")
	if err := c.Speak(context.Background(), "  "); err != nil {
		t.Errorf("Speak(blank) = %v, want nil", err)
	}
}

func TestSpeak_MissingBinary(t *testing.T) {
	c, _ := NewCommand("definitely-not-a-real-tts-binary")
	if err := c.Speak(context.Background(), "ciao"); err == nil {
		t.Error("expected error for missing binary")
	}
}

func TestSpeak_CancelStopsPlayback(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	c, _ := NewCommand("sleep")

	done := make(chan error, 1)
	go func() { done <- c.Speak(context.Background(), "30") }()

	// Wait for the process to be registered before cancelling.
	deadline := time.Now().Add(2 * time.Second)
	for {
		c.mu.Lock()
		started := c.cancel != nil
		c.mu.Unlock()
		if started || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	c.Cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Speak after Cancel = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Speak did not return after Cancel")
	}
}

func TestNop(t *testing.T) {
	var s Speaker = Nop{}
	if err := s.Speak(context.Background(), "hello"); err != nil {
		t.Errorf("Nop.Speak = %v", err)
	}
	s.Cancel()
}
