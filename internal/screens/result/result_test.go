package result

import (
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
)

func testRecord() history.Record {
	questions := []quiz.Question{
		quiz.NewSingleChoice("a", "Capitale d'Italia?", []string{"Roma", "Milano", "Napoli", "Torino"}, 0),
		quiz.NewMatrix("b", "Vero o falso?", []string{"1 è dispari", "2 è dispari"}, []string{"V", "F"}, []int{0, 1}),
		quiz.NewSingleChoice("c", "2+2?", []string{"3", "4", "5", "6"}, 1),
	}
	return history.Record{
		ID:             "r1",
		CreatedAt:      time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC),
		Config:         quiz.Config{Subject: quiz.SubjectMatematica, Grade: quiz.GradeSecondaSuperiore, QuestionCount: 3, Mode: quiz.ModeExam},
		TotalQuestions: 3,
		CorrectCount:   1,
		ScorePercent:   33,
		ElapsedSeconds: 125,
		Questions:      questions,
		Answers: []quiz.Answer{
			quiz.ChoiceAnswer(0),
			quiz.CellsAnswer(0, 0),
			quiz.Unanswered(quiz.KindSingleChoice),
		},
	}
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestOutcomes(t *testing.T) {
	s := New(screen.Deps{}, testRecord(), nil)
	want := []quiz.Outcome{quiz.OutcomeCorrect, quiz.OutcomeIncorrect, quiz.OutcomeSkipped}
	for i, o := range want {
		if s.outcomes[i] != o {
			t.Errorf("outcome[%d] = %v, want %v", i, s.outcomes[i], o)
		}
	}
}

func TestEsc_FreshResultGoesHome(t *testing.T) {
	s := New(screen.Deps{}, testRecord(), nil)
	if !s.HandlesBack() {
		t.Fatal("fresh results handle Esc")
	}
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if _, ok := cmd().(router.PopToRootMsg); !ok {
		t.Error("expected PopToRootMsg")
	}
}

func TestEsc_ReviewPops(t *testing.T) {
	s := Review(screen.Deps{}, testRecord())
	if s.HandlesBack() {
		t.Fatal("reviews let the app pop them")
	}
	_, cmd := s.Update(specialKey(tea.KeyEscape))
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestExpand(t *testing.T) {
	s := New(screen.Deps{}, testRecord(), nil)

	s.Update(specialKey(tea.KeyDown))
	s.Update(specialKey(tea.KeyEnter))
	if !s.expanded[1] || s.expanded[0] {
		t.Errorf("expanded = %v, want only 1", s.expanded)
	}

	s.Update(keyPress('e'))
	for i := range s.record.Questions {
		if !s.expanded[i] {
			t.Errorf("e should expand question %d", i)
		}
	}
	s.Update(keyPress('e'))
	if len(s.expanded) != 0 {
		t.Error("second e should collapse everything")
	}
}

func TestSelectionBounds(t *testing.T) {
	s := New(screen.Deps{}, testRecord(), nil)
	s.Update(specialKey(tea.KeyUp))
	if s.selected != 0 {
		t.Errorf("selected = %d", s.selected)
	}
	for i := 0; i < 10; i++ {
		s.Update(specialKey(tea.KeyDown))
	}
	if s.selected != 2 {
		t.Errorf("selected = %d, want 2", s.selected)
	}
}

func TestView(t *testing.T) {
	s := New(screen.Deps{}, testRecord(), nil)
	s.Update(keyPress('e'))
	if s.View(100, 40) == "" {
		t.Error("empty view")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("uno  due\ntre", 40); got != "uno due tre" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abcdefghij", 6); got != "abcde…" {
		t.Errorf("truncate = %q", got)
	}
}

func TestRestart(t *testing.T) {
	rec := testRecord()
	for _, s := range []*ResultScreen{New(screen.Deps{}, rec, nil), Review(screen.Deps{}, rec)} {
		_, cmd := s.Update(keyPress('r'))
		if cmd == nil {
			t.Fatal("expected a restart command")
		}
		msg, ok := cmd().(RestartMsg)
		if !ok {
			t.Fatalf("got %T, want RestartMsg", cmd())
		}
		if msg.Config != rec.Config {
			t.Errorf("Config = %+v, want %+v", msg.Config, rec.Config)
		}
	}
}
