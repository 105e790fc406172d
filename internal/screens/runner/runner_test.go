package runner

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/router"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/screens/result"
	sess "github.com/VitoPalumboPodcast/Invalsi/internal/session"
	"github.com/VitoPalumboPodcast/Invalsi/internal/store"
)

// mockEventRepo records session events; every other method panics.
type mockEventRepo struct {
	store.EventRepo
	mu     sync.Mutex
	events []store.SessionEventData
}

func (m *mockEventRepo) AppendSessionEvent(_ context.Context, data store.SessionEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, data)
	return nil
}

func (m *mockEventRepo) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, e := range m.events {
		out = append(out, e.Action)
	}
	return out
}

type fakeSpeaker struct {
	spoken    []string
	cancelled int
}

func (f *fakeSpeaker) Speak(_ context.Context, text string) error {
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeSpeaker) Cancel() { f.cancelled++ }

type fixture struct {
	deps    screen.Deps
	log     *history.Log
	events  *mockEventRepo
	speaker *fakeSpeaker
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f := &fixture{
		log:     history.NewLog(history.NewMemoryKV(), history.WithLogger(logger)),
		events:  &mockEventRepo{},
		speaker: &fakeSpeaker{},
	}
	f.deps = screen.Deps{
		History: f.log,
		Events:  f.events,
		Speaker: f.speaker,
		Logger:  logger,
	}
	return f
}

func testQuestions() []quiz.Question {
	choice := quiz.NewSingleChoice("q1", "Quanto fa 2+3?", []string{"4", "5", "6", "7"}, 1)
	choice.Explanation = "2+3=5"
	matrix := quiz.NewMatrix("q2", "Vero o falso?", []string{"2 è pari", "3 è pari"}, []string{"V", "F"}, []int{0, 1})
	listening := quiz.NewSingleChoice("q3", "What time is it?", []string{"Six", "Seven", "Eight", "Nine"}, 2)
	listening.AudioScript = "It is eight o'clock."
	return []quiz.Question{choice, matrix, listening}
}

func testConfig(mode quiz.Mode) quiz.Config {
	return quiz.Config{
		Subject:       quiz.SubjectMatematica,
		Grade:         quiz.GradeSecondaSuperiore,
		QuestionCount: 3,
		Mode:          mode,
	}
}

func newRunner(t *testing.T, f *fixture, mode quiz.Mode) *RunnerScreen {
	t.Helper()
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start
	r, err := New(f.deps, testConfig(mode), testQuestions(), sess.WithClock(func() time.Time {
		now = now.Add(10 * time.Second)
		return now
	}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// collect runs cmd and every command it batches, returning the messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestNew_RejectsEmptyList(t *testing.T) {
	f := newFixture()
	if _, err := New(f.deps, testConfig(quiz.ModeTraining), nil); err == nil {
		t.Fatal("expected error for empty question list")
	}
}

func TestInit_LogsStart(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)
	collect(r.Init())
	if got := f.events.actions(); len(got) != 1 || got[0] != store.SessionActionStart {
		t.Errorf("events = %v, want [start]", got)
	}
}

func TestTraining_SelectConfirmAdvance(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)

	r.Update(keyPress('b'))
	if got := r.Session().Answer(0).Index(); got != 1 {
		t.Fatalf("answer = %d, want 1", got)
	}
	if r.options.Revealed() {
		t.Fatal("solution must stay hidden before confirmation")
	}

	r.Update(specialKey(tea.KeyEnter))
	if !r.Session().Confirmed(0) {
		t.Fatal("Enter should confirm in training mode")
	}
	if r.options.Correct != 1 {
		t.Errorf("options.Correct = %d, want 1 after confirmation", r.options.Correct)
	}
	if r.Session().CurrentCorrectCount() != 1 {
		t.Errorf("CurrentCorrectCount = %d, want 1", r.Session().CurrentCorrectCount())
	}

	// Locked: changing the answer has no effect.
	r.Update(keyPress('a'))
	if got := r.Session().Answer(0).Index(); got != 1 {
		t.Errorf("confirmed answer changed to %d", got)
	}

	r.Update(specialKey(tea.KeyEnter))
	if r.Session().Current() != 1 {
		t.Errorf("second Enter should move on, current = %d", r.Session().Current())
	}
}

func TestTraining_EnterSelectsCursorOption(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)

	r.Update(specialKey(tea.KeyDown))
	r.Update(specialKey(tea.KeyDown))
	r.Update(specialKey(tea.KeyEnter))
	if got := r.Session().Answer(0).Index(); got != 2 {
		t.Errorf("answer = %d, want cursor option 2", got)
	}
	if !r.Session().Confirmed(0) {
		t.Error("expected confirmation")
	}
}

func TestMatrix_SelectCells(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)
	r.Update(keyPress('n'))
	if r.Session().Current() != 1 {
		t.Fatalf("current = %d, want 1", r.Session().Current())
	}

	r.Update(specialKey(tea.KeyEnter))
	if r.Session().Confirmed(1) {
		t.Fatal("an untouched matrix cannot be confirmed")
	}
	if r.notice == "" {
		t.Error("expected a notice when nothing can be confirmed")
	}

	r.Update(specialKey(tea.KeySpace)) // row 0, col 0; cursor moves to row 1
	r.Update(specialKey(tea.KeyRight))
	r.Update(specialKey(tea.KeySpace)) // row 1, col 1
	if got := r.Session().Answer(1).Cells(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Fatalf("cells = %v, want [0 1]", got)
	}

	r.Update(specialKey(tea.KeyEnter))
	if !r.Session().Confirmed(1) {
		t.Fatal("expected confirmation")
	}
	if r.grid.Correct == nil {
		t.Error("grid should reveal the solution after confirmation")
	}
}

func TestClearAnswer(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeExam)
	r.Update(keyPress('c'))
	r.Update(keyPress('x'))
	if !quiz.IsSkipped(r.Session().Answer(0)) {
		t.Error("x should clear the answer")
	}
}

func TestExam_NoFeedbackWhileRunning(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeExam)

	r.Update(keyPress('b'))
	r.Update(specialKey(tea.KeyEnter))
	if r.Session().Confirmed(0) {
		t.Error("exam answers are never confirmed")
	}
	if r.options.Revealed() {
		t.Error("exam must not reveal solutions while running")
	}
	if st := r.Status(); st.Text == "" || st.Warning {
		t.Errorf("Status = %+v, want countdown without warning", st)
	}
}

func TestExam_TimerExpiryFinishesOnce(t *testing.T) {
	f := newFixture()
	f.deps.ExamDuration = 3 * time.Second
	r := newRunner(t, f, quiz.ModeExam)
	r.Update(keyPress('b'))

	if _, cmd := r.Update(timerTickMsg(time.Now())); cmd == nil {
		t.Fatal("expected next tick")
	}
	if !r.Status().Warning {
		t.Error("countdown below the threshold should warn")
	}
	r.Update(timerTickMsg(time.Now()))
	_, cmd := r.Update(timerTickMsg(time.Now()))
	if !r.Session().Completed() {
		t.Fatal("session should complete when time runs out")
	}

	msgs := collect(cmd)
	saved, ok := findMsg[recordSavedMsg](msgs)
	if !ok {
		t.Fatalf("expected recordSavedMsg, got %v", msgs)
	}
	if saved.Err != nil {
		t.Fatalf("save: %v", saved.Err)
	}

	// A late tick or finish request does nothing.
	if _, cmd := r.Update(timerTickMsg(time.Now())); cmd != nil {
		t.Error("no tick after completion")
	}
	r.Update(keyPress('f'))
	if r.confirmFinish {
		t.Error("finish dialog should not open while saving")
	}

	records := f.log.LoadAll(context.Background())
	if len(records) != 1 {
		t.Fatalf("history has %d records, want 1", len(records))
	}
	rec := records[0]
	if rec.Config.Mode != quiz.ModeExam || rec.CorrectCount != 1 || rec.TotalQuestions != 3 || rec.ScorePercent != 33 {
		t.Errorf("record = %+v", rec)
	}
	if got := f.events.actions(); len(got) != 1 || got[0] != store.SessionActionFinish {
		t.Errorf("events = %v, want [finish]", got)
	}
}

func TestFinish_ConfirmAndShowResult(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)

	r.Update(keyPress('f'))
	if !r.confirmFinish {
		t.Fatal("f should ask for confirmation")
	}
	r.Update(keyPress('n'))
	if r.confirmFinish || r.Session().Completed() {
		t.Fatal("n should cancel")
	}

	r.Update(keyPress('f'))
	_, cmd := r.Update(keyPress('y'))
	if !r.Session().Completed() {
		t.Fatal("y should finish the session")
	}
	saved, ok := findMsg[recordSavedMsg](collect(cmd))
	if !ok {
		t.Fatal("expected recordSavedMsg")
	}

	_, cmd = r.Update(saved)
	replace, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := replace.Screen.(*result.ResultScreen); !ok {
		t.Errorf("replaced with %T, want *result.ResultScreen", replace.Screen)
	}
}

func TestLastConfirmedQuestion_EnterOffersFinish(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)
	r.Update(specialKey(tea.KeyEnd))
	r.Update(keyPress('c'))
	r.Update(specialKey(tea.KeyEnter))
	r.Update(specialKey(tea.KeyEnter))
	if !r.confirmFinish {
		t.Error("Enter on the last confirmed question should offer to finish")
	}
}

func TestQuit_AbandonsAndReturnsHome(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)
	if !r.HandlesBack() {
		t.Fatal("runner must handle Esc itself")
	}

	r.Update(specialKey(tea.KeyEscape))
	if !r.confirmQuit {
		t.Fatal("Esc should ask for confirmation")
	}
	_, cmd := r.Update(keyPress('y'))
	msgs := collect(cmd)
	if _, ok := findMsg[router.PopToRootMsg](msgs); !ok {
		t.Errorf("expected PopToRootMsg, got %v", msgs)
	}
	if got := f.events.actions(); len(got) != 1 || got[0] != store.SessionActionAbandon {
		t.Errorf("events = %v, want [abandon]", got)
	}
	if len(f.log.LoadAll(context.Background())) != 0 {
		t.Error("an abandoned test must not be saved")
	}
}

func TestSpeech_Toggle(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)

	if _, cmd := r.Update(keyPress('s')); cmd != nil {
		t.Fatal("no listening script on the first question")
	}

	r.Update(specialKey(tea.KeyEnd))
	_, cmd := r.Update(keyPress('s'))
	if cmd == nil || !r.speaking {
		t.Fatal("expected playback to start")
	}
	done := cmd().(speechDoneMsg)
	if len(f.speaker.spoken) != 1 || f.speaker.spoken[0] != "It is eight o'clock." {
		t.Errorf("spoken = %v", f.speaker.spoken)
	}
	r.Update(done)
	if r.speaking {
		t.Error("playback should end on speechDoneMsg")
	}

	r.Update(keyPress('s'))
	r.Update(keyPress('s'))
	if r.speaking || f.speaker.cancelled == 0 {
		t.Error("second press should stop playback")
	}
}

func TestStaleSpeechDoneIgnored(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)
	r.Update(specialKey(tea.KeyEnd))
	_, first := r.Update(keyPress('s'))
	r.Update(keyPress('s'))
	r.Update(keyPress('s'))

	r.Update(first())
	if !r.speaking {
		t.Error("a stale completion must not stop the current playback")
	}
}

func TestView_Renders(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)
	if r.View(100, 30) == "" {
		t.Error("empty view")
	}
	r.Update(keyPress('f'))
	if r.View(100, 30) == "" {
		t.Error("empty dialog view")
	}
}

func TestClose_StopsSpeech(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeTraining)
	r.Close()
	if f.speaker.cancelled != 0 {
		t.Error("Close without playback should not cancel")
	}

	r.Update(specialKey(tea.KeyEnd))
	r.Update(keyPress('s'))
	before := f.speaker.cancelled
	r.Close()
	if r.speaking || f.speaker.cancelled != before+1 {
		t.Errorf("speaking %v, cancelled %d; want playback stopped", r.speaking, f.speaker.cancelled-before)
	}
}

func TestJumpToQuestion(t *testing.T) {
	f := newFixture()
	r := newRunner(t, f, quiz.ModeExam)

	// With three questions a single digit is enough.
	r.Update(keyPress('g'))
	if !r.jumping {
		t.Fatal("g should start a jump")
	}
	r.Update(keyPress('3'))
	if r.jumping || r.Session().Current() != 2 {
		t.Errorf("jumping = %v, current = %d; want a jump to index 2", r.jumping, r.Session().Current())
	}

	r.Update(keyPress('g'))
	r.Update(keyPress('9'))
	if r.Session().Current() != 2 || r.notice == "" {
		t.Errorf("out of range: current = %d, notice = %q", r.Session().Current(), r.notice)
	}

	r.Update(keyPress('g'))
	r.Update(specialKey(tea.KeyEscape))
	if r.jumping || r.confirmQuit {
		t.Errorf("Esc should cancel only the jump: jumping = %v, confirmQuit = %v", r.jumping, r.confirmQuit)
	}

	r.Update(keyPress('g'))
	r.Update(keyPress('x'))
	r.Update(keyPress('1'))
	if r.Session().Current() != 0 {
		t.Errorf("current = %d, want 0; letters are ignored while jumping", r.Session().Current())
	}
	if r.Session().Answer(0).Index() != -1 {
		t.Error("jumping must not answer the question")
	}
}
