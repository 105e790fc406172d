// Package session runs one test from its first question to completion.
//
// A Session is not safe for concurrent use. The TUI drives it from the
// Bubble Tea update loop, which already serializes key presses and timer
// ticks.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/speech"
)

// DefaultExamDuration is the countdown for an exam-mode session.
const DefaultExamDuration = 90 * time.Minute

// WarningThreshold is the remaining time below which the countdown is highlighted.
const WarningThreshold = 5 * time.Minute

// ErrNoQuestions is returned when a session is built from an empty list.
var ErrNoQuestions = errors.New("session: no questions")

// Clock returns the current time.
type Clock func() time.Time

// Session holds the state of a running test.
type Session struct {
	mode      quiz.Mode
	questions []quiz.Question
	answers   []quiz.Answer
	confirmed []bool
	current   int

	remaining time.Duration
	startedAt time.Time

	// Frozen by Finish.
	completed  bool
	finishedAt time.Time
	elapsed    time.Duration
	correct    int

	clock        Clock
	examDuration time.Duration
	speaker      speech.Speaker
}

// Option configures a Session.
type Option func(*Session)

// WithClock sets the wall clock. Defaults to time.Now.
func WithClock(c Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithExamDuration overrides the exam countdown.
func WithExamDuration(d time.Duration) Option {
	return func(s *Session) { s.examDuration = d }
}

// WithSpeaker sets the speaker cancelled on navigation and finish.
func WithSpeaker(sp speech.Speaker) Option {
	return func(s *Session) { s.speaker = sp }
}

// New starts a session over questions. The list is copied and fixed for
// the lifetime of the session.
func New(questions []quiz.Question, mode quiz.Mode, opts ...Option) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}
	if mode != quiz.ModeTraining && mode != quiz.ModeExam {
		return nil, fmt.Errorf("session: unknown mode %q", mode)
	}
	for i, q := range questions {
		if err := q.Validate(); err != nil {
			return nil, fmt.Errorf("session: question %d: %w", i+1, err)
		}
	}

	s := &Session{
		mode:         mode,
		questions:    make([]quiz.Question, len(questions)),
		answers:      make([]quiz.Answer, len(questions)),
		confirmed:    make([]bool, len(questions)),
		clock:        time.Now,
		examDuration: DefaultExamDuration,
		speaker:      speech.Nop{},
	}
	for _, opt := range opts {
		opt(s)
	}
	for i, q := range questions {
		s.questions[i] = q.Clone()
		s.answers[i] = quiz.UnansweredFor(q)
	}
	if mode == quiz.ModeExam {
		s.remaining = s.examDuration
	}
	s.startedAt = s.clock()
	return s, nil
}

// SelectOption records option as the answer to the single-choice question
// at index. It reports whether the answer changed state.
func (s *Session) SelectOption(index, option int) bool {
	if !s.editable(index) {
		return false
	}
	q := s.questions[index]
	if q.Kind != quiz.KindSingleChoice || option < 0 || option >= len(q.Choice.Options) {
		return false
	}
	s.answers[index] = quiz.ChoiceAnswer(option)
	return true
}

// SelectCell records col as the answer to row of the matrix question at
// index. A never-started answer is first expanded to one blank per row.
func (s *Session) SelectCell(index, row, col int) bool {
	if !s.editable(index) {
		return false
	}
	q := s.questions[index]
	if q.Kind != quiz.KindMatrix {
		return false
	}
	rows := len(q.Matrix.Rows)
	if row < 0 || row >= rows || col < 0 || col >= len(q.Matrix.Columns) {
		return false
	}
	s.answers[index] = s.answers[index].WithCell(rows, row, col)
	return true
}

// ClearAnswer resets the answer at index to unanswered.
func (s *Session) ClearAnswer(index int) bool {
	if !s.editable(index) {
		return false
	}
	s.answers[index] = quiz.UnansweredFor(s.questions[index])
	return true
}

// Confirm locks the answer at index and reveals feedback. Training only;
// unanswered questions cannot be confirmed.
func (s *Session) Confirm(index int) bool {
	if s.mode != quiz.ModeTraining || !s.editable(index) {
		return false
	}
	if quiz.IsSkipped(s.answers[index]) {
		return false
	}
	s.confirmed[index] = true
	return true
}

func (s *Session) editable(index int) bool {
	if s.completed || index < 0 || index >= len(s.questions) {
		return false
	}
	return !(s.mode == quiz.ModeTraining && s.confirmed[index])
}

// Navigate moves to question to, clamped to the valid range.
func (s *Session) Navigate(to int) {
	if to < 0 {
		to = 0
	}
	if to > len(s.questions)-1 {
		to = len(s.questions) - 1
	}
	if to != s.current {
		s.speaker.Cancel()
	}
	s.current = to
}

// Next moves to the following question, if any.
func (s *Session) Next() { s.Navigate(s.current + 1) }

// Prev moves to the previous question, if any.
func (s *Session) Prev() { s.Navigate(s.current - 1) }

// Tick advances the exam countdown by one second. It reports true on the
// tick that finishes the session.
func (s *Session) Tick() bool {
	if s.mode != quiz.ModeExam || s.completed {
		return false
	}
	s.remaining -= time.Second
	if s.remaining <= 0 {
		s.remaining = 0
		return s.Finish()
	}
	return false
}

// Finish completes the session. Only the first call has an effect and
// returns true; later calls return false.
func (s *Session) Finish() bool {
	if s.completed {
		return false
	}
	s.completed = true
	s.finishedAt = s.clock()
	s.elapsed = s.finishedAt.Sub(s.startedAt)
	if s.elapsed < 0 {
		s.elapsed = 0
	}
	s.correct = quiz.CountCorrect(s.questions, s.answers)
	s.speaker.Cancel()
	return true
}

func (s *Session) Mode() quiz.Mode { return s.mode }
func (s *Session) Len() int { return len(s.questions) }
func (s *Session) Current() int { return s.current }
func (s *Session) Completed() bool { return s.completed }

// Questions returns a copy of the question list.
func (s *Session) Questions() []quiz.Question {
	out := make([]quiz.Question, len(s.questions))
	for i, q := range s.questions {
		out[i] = q.Clone()
	}
	return out
}

// CurrentQuestion returns the question under the cursor.
func (s *Session) CurrentQuestion() quiz.Question { return s.questions[s.current] }

// Question returns the question at index.
func (s *Session) Question(index int) quiz.Question { return s.questions[index] }

// Answer returns the answer at index.
func (s *Session) Answer(index int) quiz.Answer { return s.answers[index].Clone() }

// Answers returns a copy of every answer.
func (s *Session) Answers() []quiz.Answer {
	out := make([]quiz.Answer, len(s.answers))
	for i, a := range s.answers {
		out[i] = a.Clone()
	}
	return out
}

// Confirmed reports whether the answer at index is locked. Always false in exam mode.
func (s *Session) Confirmed(index int) bool {
	if index < 0 || index >= len(s.confirmed) {
		return false
	}
	return s.confirmed[index]
}

// TimeRemaining is the exam countdown. Zero in training mode.
func (s *Session) TimeRemaining() time.Duration { return s.remaining }

// TimeWarning reports whether a running exam is in its last minutes.
func (s *Session) TimeWarning() bool {
	return s.mode == quiz.ModeExam && !s.completed && s.remaining < WarningThreshold
}

func (s *Session) StartedAt() time.Time { return s.startedAt }

// FinishedAt is the completion time, zero while running.
func (s *Session) FinishedAt() time.Time { return s.finishedAt }

// Elapsed is the wall-clock time since start, frozen at completion.
func (s *Session) Elapsed() time.Duration {
	if s.completed {
		return s.elapsed
	}
	d := s.clock().Sub(s.startedAt)
	if d < 0 {
		return 0
	}
	return d
}

// CorrectCount is the number of correct answers, known once completed.
func (s *Session) CorrectCount() int { return s.correct }

// AnsweredCount counts confirmed answers in training mode and non-blank
// answers in exam mode.
func (s *Session) AnsweredCount() int {
	n := 0
	for i, a := range s.answers {
		if s.mode == quiz.ModeTraining {
			if s.confirmed[i] {
				n++
			}
		} else if !quiz.IsSkipped(a) {
			n++
		}
	}
	return n
}

// CurrentCorrectCount is the live score shown while running. Exams reveal
// nothing until completion.
func (s *Session) CurrentCorrectCount() int {
	if s.mode == quiz.ModeExam {
		if s.completed {
			return s.correct
		}
		return 0
	}
	n := 0
	for i, q := range s.questions {
		if s.confirmed[i] && quiz.Evaluate(q, s.answers[i]) {
			n++
		}
	}
	return n
}

// Feedback reports whether the question at index may show its solution.
func (s *Session) Feedback(index int) bool {
	if s.completed {
		return true
	}
	return s.mode == quiz.ModeTraining && s.Confirmed(index)
}
