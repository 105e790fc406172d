package customtext

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
	err      error
	gotText  string
	gotCfg   quiz.Config
	returned []quiz.Question
}

func (f *fakeSource) ForConfig(context.Context, quiz.Config) ([]quiz.Question, error) {
	return nil, errors.New("not used")
}

func (f *fakeSource) FromText(_ context.Context, text string, cfg quiz.Config) ([]quiz.Question, quiz.Config, error) {
	f.gotText, f.gotCfg = text, cfg
	cfg.Mode = quiz.ModeTraining
	return f.returned, cfg, f.err
}

func newTestScreen(src *fakeSource, text string) *CustomTextScreen {
	return New(screen.Deps{
		Source: src,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, text)
}

func ctrlKey(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func fetch(t *testing.T, cmd tea.Cmd) questionsReadyMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected a batch")
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

const passage = "Il lupo e l'agnello si incontrano presso un ruscello."

func TestDefaults(t *testing.T) {
	s := newTestScreen(&fakeSource{}, "")
	if s.cfg.QuestionCount != 5 || s.cfg.Mode != quiz.ModeTraining {
		t.Errorf("cfg = %+v", s.cfg)
	}
	if !s.HandlesBack() {
		t.Error("Esc in the text area should move to the settings")
	}
}

func TestEmptyTextRejected(t *testing.T) {
	src := &fakeSource{}
	s := newTestScreen(src, "   ")
	if _, cmd := s.Update(ctrlKey('s')); cmd != nil {
		t.Fatal("blank text must not start generation")
	}
	if s.errMsg == "" {
		t.Error("expected an error message")
	}
}

func TestGenerate_ReplacesWithRunner(t *testing.T) {
	src := &fakeSource{returned: []quiz.Question{
		quiz.NewSingleChoice("custom-0", "Chi arriva per primo?", []string{"Il lupo", "L'agnello", "Nessuno", "Entrambi"}, 0),
	}}
	s := newTestScreen(src, passage)

	_, cmd := s.Update(ctrlKey('s'))
	msg := fetch(t, cmd)
	if src.gotText != passage || src.gotCfg.QuestionCount != 5 {
		t.Errorf("FromText(%q, %+v)", src.gotText, src.gotCfg)
	}

	_, cmd = s.Update(msg)
	replace, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	run, ok := replace.Screen.(*runner.RunnerScreen)
	if !ok {
		t.Fatalf("replaced with %T", replace.Screen)
	}
	if run.Session().Mode() != quiz.ModeTraining {
		t.Error("tests from text always run in training mode")
	}
}

func TestGenerate_Failure(t *testing.T) {
	src := &fakeSource{err: errors.New("no LLM provider configured")}
	s := newTestScreen(src, passage)
	_, cmd := s.Update(ctrlKey('s'))
	_, cmd = s.Update(fetch(t, cmd))
	if cmd != nil || s.errMsg == "" || s.loading {
		t.Errorf("cmd = %v, errMsg = %q, loading = %v", cmd, s.errMsg, s.loading)
	}
}

func TestSettingsNavigation(t *testing.T) {
	s := newTestScreen(&fakeSource{}, passage)

	s.Update(specialKey(tea.KeyEscape))
	if s.focus != focusSubject || s.HandlesBack() {
		t.Fatalf("focus = %d, want subject and Esc released to the app", s.focus)
	}
	s.Update(specialKey(tea.KeyRight))
	if s.cfg.Subject != quiz.SubjectMatematica {
		t.Errorf("Subject = %q", s.cfg.Subject)
	}
	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyRight))
	if s.cfg.QuestionCount != 10 {
		t.Errorf("QuestionCount = %d, want 10", s.cfg.QuestionCount)
	}
	s.Update(specialKey(tea.KeyRight))
	if s.cfg.QuestionCount != 3 {
		t.Errorf("QuestionCount = %d, want wrap to 3", s.cfg.QuestionCount)
	}

	s.Update(specialKey(tea.KeyTab))
	if s.focus != focusText {
		t.Errorf("Tab from the last field should return to the text, focus = %d", s.focus)
	}
}

func TestView(t *testing.T) {
	s := newTestScreen(&fakeSource{}, passage)
	if s.View(100, 30) == "" {
		t.Error("empty view")
	}
}
