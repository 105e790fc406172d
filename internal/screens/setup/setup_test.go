package setup

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/runner"
)

type fakeSource struct {
	questions []quiz.Question
	err       error
	got       []quiz.Config
}

func (f *fakeSource) ForConfig(_ context.Context, cfg quiz.Config) ([]quiz.Question, error) {
	f.got = append(f.got, cfg)
	return f.questions, f.err
}

func (f *fakeSource) FromText(context.Context, string, quiz.Config) ([]quiz.Question, quiz.Config, error) {
	return nil, quiz.Config{}, errors.New("not used")
}

func newTestSetup(src *fakeSource) *SetupScreen {
	return New(screen.Deps{
		Source: src,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func sampleQuestions() []quiz.Question {
	return []quiz.Question{
		quiz.NewSingleChoice("a", "Domanda?", []string{"1", "2", "3", "4"}, 0),
	}
}

// fetch returns the questionsReadyMsg produced by the start command.
func fetch(t *testing.T, cmd tea.Cmd) questionsReadyMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected a batch of fetch and spinner commands")
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(questionsReadyMsg); ok {
			return msg
		}
	}
	t.Fatal("no questionsReadyMsg in batch")
	return questionsReadyMsg{}
}

func TestDefaults(t *testing.T) {
	s := newTestSetup(&fakeSource{})
	if s.Config() != quiz.DefaultConfig() {
		t.Errorf("Config = %+v, want defaults", s.Config())
	}
}

func TestCycleFields(t *testing.T) {
	s := newTestSetup(&fakeSource{})

	s.Update(specialKey(tea.KeyRight))
	if s.Config().Subject != quiz.SubjectInglese {
		t.Errorf("Subject = %q, want Inglese", s.Config().Subject)
	}
	s.Update(specialKey(tea.KeyLeft))
	s.Update(specialKey(tea.KeyLeft))
	if s.Config().Subject != quiz.SubjectItaliano {
		t.Errorf("Subject = %q, want Italiano", s.Config().Subject)
	}

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyRight))
	if s.Config().Grade != quiz.GradeQuintaSuperiore {
		t.Errorf("Grade = %q", s.Config().Grade)
	}
	s.Update(specialKey(tea.KeyRight))
	if s.Config().Grade != quiz.GradeTerzaMedia {
		t.Errorf("Grade should wrap around, got %q", s.Config().Grade)
	}

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyRight))
	if s.Config().QuestionCount != 15 {
		t.Errorf("QuestionCount = %d, want next preset 15", s.Config().QuestionCount)
	}

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyRight))
	if s.Config().Mode != quiz.ModeExam {
		t.Errorf("Mode = %q, want exam", s.Config().Mode)
	}
}

func TestTypedCount(t *testing.T) {
	s := newTestSetup(&fakeSource{})
	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))

	s.Update(specialKey(tea.KeyBackspace))
	s.Update(specialKey(tea.KeyBackspace))
	s.Update(keyPress('2'))
	s.Update(keyPress('x'))
	s.Update(keyPress('5'))
	if s.Config().QuestionCount != 25 {
		t.Errorf("QuestionCount = %d, want 25", s.Config().QuestionCount)
	}
}

func TestNextPreset(t *testing.T) {
	presets := []int{7, 10, 15, 30}
	tests := []struct {
		current, delta, want int
	}{
		{10, 1, 15},
		{30, 1, 7},
		{7, -1, 30},
		{12, 1, 15},
		{12, -1, 10},
	}
	for _, tt := range tests {
		if got := nextPreset(presets, tt.current, tt.delta); got != tt.want {
			t.Errorf("nextPreset(%d, %d) = %d, want %d", tt.current, tt.delta, got, tt.want)
		}
	}
}

func TestStart_ReplacesWithRunner(t *testing.T) {
	src := &fakeSource{questions: sampleQuestions()}
	s := newTestSetup(src)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	if !s.loading || !s.HandlesBack() {
		t.Fatal("expected loading state")
	}
	msg := fetch(t, cmd)
	if len(src.got) != 1 || src.got[0] != quiz.DefaultConfig() {
		t.Errorf("ForConfig called with %+v", src.got)
	}

	_, cmd = s.Update(msg)
	replace, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := replace.Screen.(*runner.RunnerScreen); !ok {
		t.Errorf("replaced with %T", replace.Screen)
	}
}

func TestStart_ErrorStaysOnScreen(t *testing.T) {
	src := &fakeSource{err: errors.New("quota exceeded")}
	s := newTestSetup(src)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	_, cmd = s.Update(fetch(t, cmd))
	if cmd != nil {
		t.Error("no navigation on failure")
	}
	if s.loading || s.errMsg == "" {
		t.Errorf("loading = %v, errMsg = %q", s.loading, s.errMsg)
	}

	// The user can retry.
	src.err, src.questions = nil, sampleQuestions()
	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if fetch(t, cmd).Err != nil {
		t.Error("retry should succeed")
	}
}

func TestEscCancelsLoading(t *testing.T) {
	src := &fakeSource{questions: sampleQuestions()}
	s := newTestSetup(src)

	_, cmd := s.Update(specialKey(tea.KeyEnter))
	s.Update(specialKey(tea.KeyEscape))
	if s.loading || s.HandlesBack() {
		t.Fatal("Esc should cancel loading")
	}
	if _, cmd := s.Update(fetch(t, cmd)); cmd != nil {
		t.Error("a result arriving after cancellation must be dropped")
	}
}

func TestNoSource(t *testing.T) {
	s := New(screen.Deps{})
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil || s.errMsg == "" {
		t.Error("expected an error without a question source")
	}
}

func TestView(t *testing.T) {
	s := newTestSetup(&fakeSource{})
	if s.View(100, 30) == "" {
		t.Error("empty view")
	}
	s.loading = true
	if s.View(100, 30) == "" {
		t.Error("empty loading view")
	}
}

func TestRestart_StartsWithConfig(t *testing.T) {
	src := &fakeSource{questions: sampleQuestions()}
	cfg := quiz.Config{Subject: quiz.SubjectInglese, Grade: quiz.GradeTerzaMedia, QuestionCount: 15, Mode: quiz.ModeExam}
	s := Restart(screen.Deps{
		Source: src,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, cfg)

	msg := fetch(t, s.Init())
	if !s.loading {
		t.Error("Restart should be loading after Init")
	}
	if len(src.got) != 1 || src.got[0] != cfg {
		t.Fatalf("ForConfig calls = %+v, want one with %+v", src.got, cfg)
	}

	_, cmd := s.Update(msg)
	if cmd == nil {
		t.Fatal("expected a replace command")
	}
	rep, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatalf("got %T, want ReplaceScreenMsg", cmd())
	}
	if _, ok := rep.Screen.(*runner.RunnerScreen); !ok {
		t.Errorf("replaced with %T, want *runner.RunnerScreen", rep.Screen)
	}
	if s.Init() != nil {
		t.Error("a second Init must not fetch again")
	}
}

func TestRestart_ErrorKeepsConfig(t *testing.T) {
	src := &fakeSource{err: errors.New("offline")}
	cfg := quiz.Config{Subject: quiz.SubjectItaliano, Grade: quiz.GradeSecondaSuperiore, QuestionCount: 5, Mode: quiz.ModeTraining}
	s := Restart(screen.Deps{
		Source: src,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, cfg)

	s.Update(fetch(t, s.Init()))
	if s.loading || s.errMsg == "" {
		t.Errorf("loading = %v, errMsg = %q; want an error on the form", s.loading, s.errMsg)
	}
	if s.Config() != cfg {
		t.Errorf("Config = %+v, want %+v", s.Config(), cfg)
	}
}
