package history

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	hist "github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/result"
)

func record(id string, day int, subject quiz.Subject, score int) hist.Record {
	return hist.Record{
		ID:             id,
		CreatedAt:      time.Date(2026, 4, day, 9, 0, 0, 0, time.UTC),
		Config:         quiz.Config{Subject: subject, Grade: quiz.GradeTerzaMedia, QuestionCount: 1, Mode: quiz.ModeTraining},
		TotalQuestions: 1,
		ScorePercent:   score,
		Questions:      []quiz.Question{quiz.NewSingleChoice(id+"-q", "?", []string{"a", "b", "c", "d"}, 0)},
		Answers:        []quiz.Answer{quiz.ChoiceAnswer(0)},
	}
}

func newTestScreen(t *testing.T, records ...hist.Record) *HistoryScreen {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	log := hist.NewLog(hist.NewMemoryKV(), hist.WithLogger(logger))
	for _, r := range records {
		if err := log.Append(context.Background(), r); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	s := New(screen.Deps{History: log, Logger: logger})
	s.Update(s.Init()())
	return s
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestLoad_NewestFirst(t *testing.T) {
	s := newTestScreen(t,
		record("old", 1, quiz.SubjectItaliano, 50),
		record("new", 3, quiz.SubjectMatematica, 90),
		record("mid", 2, quiz.SubjectItaliano, 70),
	)
	if !s.loaded || len(s.records) != 3 {
		t.Fatalf("loaded = %v, records = %d", s.loaded, len(s.records))
	}
	ids := []string{s.records[0].ID, s.records[1].ID, s.records[2].ID}
	if ids[0] != "new" || ids[1] != "mid" || ids[2] != "old" {
		t.Errorf("order = %v", ids)
	}
	if len(s.stats) != 2 || s.stats[0].Subject != quiz.SubjectItaliano || s.stats[0].Average != 60 {
		t.Errorf("stats = %+v", s.stats)
	}
}

func TestEnter_OpensReview(t *testing.T) {
	s := newTestScreen(t,
		record("a", 1, quiz.SubjectInglese, 100),
		record("b", 2, quiz.SubjectInglese, 0),
	)
	s.Update(specialKey(tea.KeyDown))
	_, cmd := s.Update(specialKey(tea.KeyEnter))
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	rs, ok := push.Screen.(*result.ResultScreen)
	if !ok {
		t.Fatalf("pushed %T", push.Screen)
	}
	if rs.HandlesBack() {
		t.Error("a review should pop back to the list")
	}
}

func TestEmpty(t *testing.T) {
	s := newTestScreen(t)
	if _, cmd := s.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Error("Enter on an empty list does nothing")
	}
	if s.View(80, 24) == "" {
		t.Error("expected empty-state view")
	}
}

func TestView_Scrolls(t *testing.T) {
	var records []hist.Record
	for i := 1; i <= 20; i++ {
		records = append(records, record(string(rune('a'+i)), i, quiz.SubjectDiritto, i*5))
	}
	s := newTestScreen(t, records...)
	for i := 0; i < 19; i++ {
		s.Update(specialKey(tea.KeyDown))
	}
	if s.selected != 19 {
		t.Fatalf("selected = %d", s.selected)
	}
	if s.View(100, 15) == "" {
		t.Error("empty view")
	}
}
