package app

import (
	"io"
	"log/slog"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/customtext"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/home"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/result"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/setup"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/welcome"
	"github.com/VitoPalumboPodcast/Invalsi/internal/ui/layout"
)

// backScreen records the messages it receives and may claim Esc.
type backScreen struct {
	claimsBack bool
	got        []tea.Msg
}

func (b *backScreen) Init() tea.Cmd { return nil }
func (b *backScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	b.got = append(b.got, msg)
	return b, nil
}
func (b *backScreen) View(int, int) string  { return "back" }
func (b *backScreen) Title() string         { return "Back" }
func (b *backScreen) HandlesBack() bool     { return b.claimsBack }
func (b *backScreen) Status() layout.Status { return layout.Status{Text: "0:42", Warning: true} }

func testDeps() screen.Deps {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return screen.Deps{
		History: history.NewLog(history.NewMemoryKV(), history.WithLogger(logger)),
		Logger:  logger,
	}
}

func boolPtr(b bool) *bool { return &b }

func TestNewAppModel_WelcomeOnEmptyHistory(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps()})
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Errorf("root = %T, want welcome on first run", m.router.Active())
	}

	m = newAppModel(Options{Deps: testDeps(), Welcome: boolPtr(false)})
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("root = %T, want home", m.router.Active())
	}
}

func TestNewAppModel_InitialText(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps(), InitialText: "Un testo."})
	if _, ok := m.pending.(*customtext.CustomTextScreen); !ok {
		t.Fatalf("pending = %T", m.pending)
	}
	if m.Init() == nil {
		t.Error("expected init commands")
	}
}

func TestEsc_PopsWhenScreenDoesNotClaimIt(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps(), Welcome: boolPtr(false)})
	s := &backScreen{}
	m.router.Push(s)

	_, cmd := m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
	if len(s.got) != 0 {
		t.Error("screen should not see Esc")
	}
}

func TestEsc_ForwardedWhenClaimed(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps(), Welcome: boolPtr(false)})
	s := &backScreen{claimsBack: true}
	m.router.Push(s)

	m.Update(tea.KeyPressMsg{Code: tea.KeyEscape})
	if len(s.got) != 1 {
		t.Fatalf("screen got %d messages, want the Esc key", len(s.got))
	}
}

func TestView_UsesStatusProvider(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps(), Welcome: boolPtr(false)})
	m.router.Push(&backScreen{})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	v := updated.(AppModel).View()
	if v.Content == nil {
		t.Error("empty view")
	}
}

func TestRestart_ReplacesWithSetup(t *testing.T) {
	m := newAppModel(Options{Deps: testDeps(), Welcome: boolPtr(false)})
	cfg := quiz.Config{Subject: quiz.SubjectMatematica, Grade: quiz.GradeSecondaSuperiore, QuestionCount: 20, Mode: quiz.ModeExam}

	_, cmd := m.Update(result.RestartMsg{Config: cfg})
	if cmd == nil {
		t.Fatal("expected a replace command")
	}
	rep, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("got %T, want ReplaceScreenMsg", cmd())
	}
	s, ok := rep.Screen.(*setup.SetupScreen)
	if !ok {
		t.Fatalf("replaced with %T, want *setup.SetupScreen", rep.Screen)
	}
	if s.Config() != cfg {
		t.Errorf("Config = %+v, want %+v", s.Config(), cfg)
	}
}
