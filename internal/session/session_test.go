package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type countingSpeaker struct{ cancels int }

func (s *countingSpeaker) Speak(context.Context, string) error { return nil }
func (s *countingSpeaker) Cancel() { s.cancels++ }

func threeChoices() []quiz.Question {
	opts := []string{"a", "b", "c", "d"}
	return []quiz.Question{
		quiz.NewSingleChoice("q1", "Uno", opts, 1),
		quiz.NewSingleChoice("q2", "Due", opts, 2),
		quiz.NewSingleChoice("q3", "Tre", opts, 0),
	}
}

func matrixQuestion() quiz.Question {
	return quiz.NewMatrix("m1", "Vero o falso", []string{"r1", "r2"}, []string{"V", "F"}, []int{0, 1})
}

func newTestSession(t *testing.T, qs []quiz.Question, mode quiz.Mode, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clk := &fakeClock{now: time.Date(2025, 5, 14, 9, 0, 0, 0, time.UTC)}
	s, err := New(qs, mode, append([]Option{WithClock(clk.Now)}, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, clk
}

func TestNew_RejectsEmpty(t *testing.T) {
	if _, err := New(nil, quiz.ModeTraining); !errors.Is(err, ErrNoQuestions) {
		t.Errorf("New(nil) error = %v, want ErrNoQuestions", err)
	}
}

func TestNew_RejectsInvalidQuestion(t *testing.T) {
	bad := quiz.NewSingleChoice("x", "Rotta", []string{"a", "b", "c", "d"}, 7)
	if _, err := New([]quiz.Question{bad}, quiz.ModeExam); !errors.Is(err, quiz.ErrInvalidQuestion) {
		t.Errorf("New(invalid) error = %v, want ErrInvalidQuestion", err)
	}
}

func TestNew_RejectsUnknownMode(t *testing.T) {
	if _, err := New(threeChoices(), quiz.Mode("boh")); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestNew_InitialState(t *testing.T) {
	qs := append(threeChoices(), matrixQuestion())
	s, _ := newTestSession(t, qs, quiz.ModeExam)

	if s.Len() != 4 || s.Current() != 0 || s.Completed() {
		t.Errorf("Len=%d Current=%d Completed=%v", s.Len(), s.Current(), s.Completed())
	}
	if s.TimeRemaining() != DefaultExamDuration {
		t.Errorf("TimeRemaining = %v, want %v", s.TimeRemaining(), DefaultExamDuration)
	}
	for i := range qs {
		if !quiz.IsSkipped(s.Answer(i)) {
			t.Errorf("answer %d not blank: %v", i, s.Answer(i))
		}
	}
	if s.Answer(3).Kind() != quiz.KindMatrix {
		t.Errorf("matrix answer kind = %q", s.Answer(3).Kind())
	}
}

func TestTraining_TimerIsInert(t *testing.T) {
	s, _ := newTestSession(t, threeChoices(), quiz.ModeTraining)
	if s.TimeRemaining() != 0 {
		t.Errorf("TimeRemaining = %v, want 0", s.TimeRemaining())
	}
	if s.Tick() || s.Completed() {
		t.Error("Tick must not affect a training session")
	}
	if s.TimeWarning() {
		t.Error("training sessions never warn")
	}
}

func TestTraining_ConfirmLocks(t *testing.T) {
	s, _ := newTestSession(t, threeChoices(), quiz.ModeTraining)

	if s.Confirm(0) {
		t.Error("Confirm on unanswered question should be a no-op")
	}
	if !s.SelectOption(0, 3) || !s.SelectOption(0, 1) {
		t.Fatal("SelectOption before confirm should succeed")
	}
	if !s.Confirm(0) {
		t.Fatal("Confirm should succeed after selecting")
	}
	if s.SelectOption(0, 2) {
		t.Error("SelectOption after Confirm should be rejected")
	}
	if s.ClearAnswer(0) {
		t.Error("ClearAnswer after Confirm should be rejected")
	}
	if s.Confirm(0) {
		t.Error("second Confirm should be a no-op")
	}
	if got := s.Answer(0).Index(); got != 1 {
		t.Errorf("locked answer = %d, want 1", got)
	}
	if !s.Confirmed(0) || !s.Feedback(0) || s.Feedback(1) {
		t.Error("feedback should be visible only for the confirmed question")
	}
}

func TestTraining_LiveCounts(t *testing.T) {
	s, _ := newTestSession(t, threeChoices(), quiz.ModeTraining)
	s.SelectOption(0, 1) // correct
	s.Confirm(0)
	s.SelectOption(1, 0) // wrong
	s.Confirm(1)
	s.SelectOption(2, 0) // correct, not confirmed

	if got := s.AnsweredCount(); got != 2 {
		t.Errorf("AnsweredCount = %d, want 2", got)
	}
	if got := s.CurrentCorrectCount(); got != 1 {
		t.Errorf("CurrentCorrectCount = %d, want 1", got)
	}
}

func TestExam_NoFeedbackUntilFinish(t *testing.T) {
	s, _ := newTestSession(t, threeChoices(), quiz.ModeExam)
	s.SelectOption(0, 1)
	s.SelectOption(1, 2)

	if s.Confirm(0) {
		t.Error("Confirm is training only")
	}
	if s.CurrentCorrectCount() != 0 {
		t.Error("exam must not reveal the live score")
	}
	if s.AnsweredCount() != 2 {
		t.Errorf("AnsweredCount = %d, want 2", s.AnsweredCount())
	}
	if s.Feedback(0) {
		t.Error("no feedback before completion")
	}

	// Answers stay mutable during an exam.
	if !s.SelectOption(0, 3) || !s.ClearAnswer(1) {
		t.Error("exam answers should remain editable")
	}

	s.Finish()
	if !s.Feedback(0) {
		t.Error("feedback available after completion")
	}
}

func TestSelect_Rejections(t *testing.T) {
	qs := append(threeChoices(), matrixQuestion())
	s, _ := newTestSession(t, qs, quiz.ModeExam)

	tests := []struct {
		name string
		fn   func() bool
	}{
		{"index out of range", func() bool { return s.SelectOption(9, 0) }},
		{"negative index", func() bool { return s.SelectOption(-1, 0) }},
		{"option out of range", func() bool { return s.SelectOption(0, 4) }},
		{"cell on single choice", func() bool { return s.SelectCell(0, 0, 0) }},
		{"option on matrix", func() bool { return s.SelectOption(3, 0) }},
		{"row out of range", func() bool { return s.SelectCell(3, 2, 0) }},
		{"column out of range", func() bool { return s.SelectCell(3, 0, 2) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.fn() {
				t.Error("expected rejection")
			}
		})
	}
}

func TestSelectCell_MaterialisesBlankRows(t *testing.T) {
	s, _ := newTestSession(t, []quiz.Question{matrixQuestion()}, quiz.ModeTraining)

	if !s.SelectCell(0, 1, 1) {
		t.Fatal("SelectCell should succeed")
	}
	cells := s.Answer(0).Cells()
	if len(cells) != 2 || cells[0] != quiz.NoChoice || cells[1] != 1 {
		t.Errorf("cells = %v, want [-1 1]", cells)
	}

	// Partial matrix is answered (confirmable) but incorrect.
	if !s.Confirm(0) {
		t.Error("partially answered matrix should be confirmable")
	}
	if s.CurrentCorrectCount() != 0 {
		t.Error("partial matrix must not count as correct")
	}
}

func TestNavigate_ClampsAndCancelsSpeech(t *testing.T) {
	sp := &countingSpeaker{}
	s, _ := newTestSession(t, threeChoices(), quiz.ModeTraining, WithSpeaker(sp))
	s.SelectOption(0, 2)

	s.Navigate(-5)
	if s.Current() != 0 || sp.cancels != 0 {
		t.Errorf("Current=%d cancels=%d, want 0/0", s.Current(), sp.cancels)
	}
	s.Navigate(99)
	if s.Current() != 2 || sp.cancels != 1 {
		t.Errorf("Current=%d cancels=%d, want 2/1", s.Current(), sp.cancels)
	}
	s.Next()
	if s.Current() != 2 {
		t.Errorf("Next past end moved to %d", s.Current())
	}
	s.Prev()
	if s.Current() != 1 {
		t.Errorf("Prev = %d, want 1", s.Current())
	}
	if s.CurrentQuestion().ID != "q2" {
		t.Errorf("CurrentQuestion = %s", s.CurrentQuestion().ID)
	}
	if s.Answer(0).Index() != 2 {
		t.Error("navigation must not touch answers")
	}
}

func TestFinish_Idempotent(t *testing.T) {
	sp := &countingSpeaker{}
	s, clk := newTestSession(t, threeChoices(), quiz.ModeExam, WithSpeaker(sp))
	s.SelectOption(0, 1)
	s.SelectOption(1, 2)
	s.SelectOption(2, 3)
	clk.Advance(2*time.Minute + 5*time.Second)

	if !s.Finish() {
		t.Fatal("first Finish should report true")
	}
	correct, elapsed := s.CorrectCount(), s.Elapsed()

	clk.Advance(time.Hour)
	if s.Finish() {
		t.Error("second Finish should report false")
	}
	if s.CorrectCount() != correct || s.Elapsed() != elapsed {
		t.Errorf("second Finish changed counts: %d/%v vs %d/%v", s.CorrectCount(), s.Elapsed(), correct, elapsed)
	}
	if correct != 2 {
		t.Errorf("CorrectCount = %d, want 2", correct)
	}
	if elapsed != 2*time.Minute+5*time.Second {
		t.Errorf("Elapsed = %v, want 2m5s", elapsed)
	}
	if sp.cancels != 1 {
		t.Errorf("speech cancels = %d, want 1", sp.cancels)
	}
	if s.SelectOption(2, 0) {
		t.Error("answers are frozen after completion")
	}
}

func TestTick_TimeoutFinishesOnce(t *testing.T) {
	s, _ := newTestSession(t, threeChoices(), quiz.ModeExam, WithExamDuration(3*time.Second))
	s.SelectOption(0, 1)

	if s.Tick() || s.Tick() {
		t.Fatal("session finished early")
	}
	if !s.TimeWarning() {
		t.Error("expected warning in the final seconds")
	}
	if !s.Tick() {
		t.Fatal("third Tick should finish the session")
	}
	if !s.Completed() || s.TimeRemaining() != 0 {
		t.Errorf("Completed=%v TimeRemaining=%v", s.Completed(), s.TimeRemaining())
	}
	if s.CorrectCount() != 1 {
		t.Errorf("CorrectCount = %d, want 1 (answers at timeout)", s.CorrectCount())
	}
	if s.Tick() || s.Finish() {
		t.Error("nothing finishes twice")
	}
	if s.TimeWarning() {
		t.Error("completed sessions never warn")
	}
}

func TestTick_ManualFinishFirst(t *testing.T) {
	s, _ := newTestSession(t, threeChoices(), quiz.ModeExam, WithExamDuration(time.Second))
	if !s.Finish() {
		t.Fatal("Finish should succeed")
	}
	if s.Tick() {
		t.Error("Tick after manual finish must not finish again")
	}
}

func TestTimeWarningThreshold(t *testing.T) {
	s, _ := newTestSession(t, threeChoices(), quiz.ModeExam, WithExamDuration(WarningThreshold+time.Second))
	if s.TimeWarning() {
		t.Error("no warning above threshold")
	}
	s.Tick()
	if s.TimeWarning() {
		t.Error("no warning at exactly the threshold")
	}
	s.Tick()
	if !s.TimeWarning() {
		t.Error("warning below threshold")
	}
}

func TestAggregate(t *testing.T) {
	qs := append(threeChoices(), matrixQuestion())
	s, clk := newTestSession(t, qs, quiz.ModeExam)
	s.SelectOption(0, 1)
	s.SelectOption(1, 2)
	s.SelectOption(2, 3)
	s.SelectCell(3, 0, 0)
	s.SelectCell(3, 1, 1)

	cfg := quiz.Config{Subject: quiz.SubjectMatematica, Grade: quiz.GradeSecondaSuperiore, QuestionCount: 4, Mode: quiz.ModeTraining}
	if _, err := Aggregate(s, cfg); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("Aggregate(running) error = %v, want ErrNotCompleted", err)
	}

	clk.Advance(95 * time.Second)
	s.Finish()
	rec, err := Aggregate(s, cfg, WithIDFunc(func() string { return "fixed" }))
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}

	if rec.ID != "fixed" {
		t.Errorf("ID = %q", rec.ID)
	}
	if rec.TotalQuestions != 4 || rec.CorrectCount != 3 || rec.ScorePercent != 75 {
		t.Errorf("totals = %d/%d %d%%, want 3/4 75%%", rec.CorrectCount, rec.TotalQuestions, rec.ScorePercent)
	}
	if rec.ElapsedSeconds != 95 {
		t.Errorf("ElapsedSeconds = %d, want 95", rec.ElapsedSeconds)
	}
	if rec.Config.Mode != quiz.ModeExam {
		t.Errorf("Mode = %q, want the session's mode", rec.Config.Mode)
	}
	if !rec.CreatedAt.Equal(s.FinishedAt()) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, s.FinishedAt())
	}

	// The record is a frozen copy.
	rec.Answers[3] = quiz.CellsAnswer(1, 1)
	if s.Answer(3).Cell(0) != 0 {
		t.Error("mutating the record leaked into the session")
	}
}

func TestAggregate_IgnoresConfirmations(t *testing.T) {
	s, _ := newTestSession(t, threeChoices(), quiz.ModeTraining)
	s.SelectOption(0, 1)
	s.SelectOption(1, 2) // answered, never confirmed
	s.Confirm(0)
	s.Finish()

	rec, err := Aggregate(s, quiz.DefaultConfig())
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if rec.CorrectCount != 2 || rec.ScorePercent != 67 {
		t.Errorf("score = %d (%d%%), want 2 (67%%)", rec.CorrectCount, rec.ScorePercent)
	}
	if rec.ID == "" {
		t.Error("expected generated id")
	}
}

func TestFinishTwice_AppendsOnce(t *testing.T) {
	ctx := context.Background()
	log := history.NewLog(history.NewMemoryKV())
	s, _ := newTestSession(t, threeChoices(), quiz.ModeExam, WithExamDuration(time.Second))

	save := func() {
		rec, err := Aggregate(s, quiz.DefaultConfig())
		if err != nil {
			t.Fatalf("Aggregate: %v", err)
		}
		if err := log.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	// Timeout and manual finish race for the same session.
	if s.Tick() {
		save()
	}
	if s.Finish() {
		save()
	}

	if got := len(log.LoadAll(ctx)); got != 1 {
		t.Errorf("history has %d records, want 1", got)
	}
}
