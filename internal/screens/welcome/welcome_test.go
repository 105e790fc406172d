package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
)

// stubScreen is a minimal screen implementation for testing.
type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "home" }
func (s *stubScreen) Title() string                          { return "Home" }

func newTestWelcome() (*WelcomeScreen, *int) {
	calls := 0
	return New(func() screen.Screen {
		calls++
		return &stubScreen{}
	}), &calls
}

func sendTicks(w *WelcomeScreen, n int) {
	for i := 0; i < n; i++ {
		w.Update(tickMsg(time.Now()))
	}
}

func TestRevealsLinesOverTime(t *testing.T) {
	w, _ := newTestWelcome()
	if w.revealed() != 1 {
		t.Fatalf("revealed = %d at start, want 1", w.revealed())
	}

	sendTicks(w, int(lineDelay/tickInterval))
	if w.revealed() != 2 {
		t.Errorf("revealed = %d after one delay, want 2", w.revealed())
	}

	sendTicks(w, 100)
	if w.revealed() != len(lines()) {
		t.Errorf("revealed = %d, want all %d", w.revealed(), len(lines()))
	}
}

func TestTickStopsWhenComplete(t *testing.T) {
	w, _ := newTestWelcome()
	sendTicks(w, 100)
	if _, cmd := w.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("no more ticks expected once every line is shown")
	}
}

func TestFirstKeySkipsAnimation(t *testing.T) {
	w, calls := newTestWelcome()

	_, cmd := w.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd != nil {
		t.Error("first key should only reveal the remaining lines")
	}
	if w.revealed() != len(lines()) {
		t.Errorf("revealed = %d, want all", w.revealed())
	}
	if *calls != 0 {
		t.Errorf("next factory called %d times, want 0", *calls)
	}
}

func TestKeyTransitionsOnce(t *testing.T) {
	w, calls := newTestWelcome()
	sendTicks(w, 100)

	_, cmd := w.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected transition command")
	}
	msg := cmd()
	if _, ok := msg.(router.ReplaceScreenMsg); !ok {
		t.Fatalf("expected ReplaceScreenMsg, got %T", msg)
	}

	if _, cmd := w.Update(tea.KeyPressMsg{Code: tea.KeyEnter}); cmd != nil {
		t.Error("second key should not transition again")
	}
	if *calls != 1 {
		t.Errorf("next factory called %d times, want 1", *calls)
	}
}

func TestView_ShowsPromptWhenComplete(t *testing.T) {
	w, _ := newTestWelcome()
	if strings.Contains(w.View(80, 24), "PressAnyKey") {
		t.Error("prompt should not show before every line is revealed")
	}
	sendTicks(w, 100)
	if !strings.Contains(w.View(80, 24), "PressAnyKey") {
		t.Error("expected prompt once complete")
	}
}
