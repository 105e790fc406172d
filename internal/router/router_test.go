package router

import (
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
)

type stubScreen struct {
	title  string
	inits  int
	closed int
}

func (s *stubScreen) Init() tea.Cmd                           { s.inits++; return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return s.title }
func (s *stubScreen) Title() string                           { return s.title }
func (s *stubScreen) Close()                                  { s.closed++ }

func stack(titles ...string) (*Router, []*stubScreen) {
	screens := make([]*stubScreen, len(titles))
	for i, t := range titles {
		screens[i] = &stubScreen{title: t}
	}
	r := New(screens[0])
	for _, s := range screens[1:] {
		r.Push(s)
	}
	return r, screens
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name       string
		msg        tea.Msg
		wantDepth  int
		wantActive string
		wantClosed []int // closed count per initial screen
	}{
		{"push", PushScreenMsg{Screen: &stubScreen{title: "result"}}, 4, "result", []int{0, 0, 0}},
		{"pop", PopScreenMsg{}, 2, "setup", []int{0, 0, 1}},
		{"replace", ReplaceScreenMsg{Screen: &stubScreen{title: "result"}}, 3, "result", []int{0, 0, 1}},
		{"pop to root", PopToRootMsg{}, 1, "home", []int{0, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, screens := stack("home", "setup", "runner")
			r.Update(tt.msg)
			if r.Depth() != tt.wantDepth || r.Active().Title() != tt.wantActive {
				t.Errorf("depth %d active %q, want %d %q", r.Depth(), r.Active().Title(), tt.wantDepth, tt.wantActive)
			}
			for i, want := range tt.wantClosed {
				if screens[i].closed != want {
					t.Errorf("%s closed %d times, want %d", screens[i].title, screens[i].closed, want)
				}
			}
		})
	}
}

func TestPush_RunsInit(t *testing.T) {
	r, _ := stack("home")
	next := &stubScreen{title: "setup"}
	r.Push(next)
	if next.inits != 1 {
		t.Errorf("Init ran %d times, want 1", next.inits)
	}
}

func TestPop_KeepsBottom(t *testing.T) {
	r, screens := stack("home")
	r.Pop()
	if r.Depth() != 1 || screens[0].closed != 0 {
		t.Errorf("depth %d, home closed %d", r.Depth(), screens[0].closed)
	}
}

func TestReplace_Bottom(t *testing.T) {
	r, screens := stack("welcome")
	home := &stubScreen{title: "home"}
	r.Replace(home)
	if r.Depth() != 1 || r.Active() != home || home.inits != 1 {
		t.Errorf("depth %d active %q inits %d", r.Depth(), r.Active().Title(), home.inits)
	}
	if screens[0].closed != 1 {
		t.Error("replaced bottom screen should be closed")
	}
}

func TestPopToRoot_ReinitsRoot(t *testing.T) {
	r, screens := stack("home", "runner", "result")
	r.PopToRoot()
	if screens[0].inits != 1 {
		t.Errorf("root Init ran %d times, want 1 so it can refresh", screens[0].inits)
	}
}

func TestCloseAll(t *testing.T) {
	r, screens := stack("home", "runner")
	r.CloseAll()
	for _, s := range screens {
		if s.closed != 1 {
			t.Errorf("%s closed %d times, want 1", s.title, s.closed)
		}
	}
}

func TestUpdate_ForwardsToActive(t *testing.T) {
	r, _ := stack("home", "setup")
	if cmd := r.Update(tea.KeyPressMsg{Code: 'x', Text: "x"}); cmd != nil {
		t.Error("stub screens return no command")
	}
	if got := r.View(80, 24); got != "setup" {
		t.Errorf("View = %q, want the active screen", got)
	}
}
