package session

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

// ErrNotCompleted is returned when aggregating a session still running.
var ErrNotCompleted = errors.New("session: not completed")

type aggregateConfig struct {
	newID func() string
}

// AggregateOption configures Aggregate.
type AggregateOption func(*aggregateConfig)

// WithIDFunc overrides record id generation.
func WithIDFunc(f func() string) AggregateOption {
	return func(c *aggregateConfig) { c.newID = f }
}

// Aggregate turns a completed session into a history record. Every answer
// is evaluated again; the training confirmations play no part.
func Aggregate(s *Session, cfg quiz.Config, opts ...AggregateOption) (history.Record, error) {
	if !s.Completed() {
		return history.Record{}, ErrNotCompleted
	}
	ac := aggregateConfig{newID: uuid.NewString}
	for _, opt := range opts {
		opt(&ac)
	}

	questions := s.Questions()
	answers := s.Answers()
	correct := quiz.CountCorrect(questions, answers)

	cfg.Mode = s.Mode()
	if cfg.QuestionCount <= 0 {
		cfg.QuestionCount = len(questions)
	}

	return history.Record{
		ID:             ac.newID(),
		CreatedAt:      s.FinishedAt(),
		Config:         cfg,
		TotalQuestions: len(questions),
		CorrectCount:   correct,
		ScorePercent:   quiz.ScorePercent(correct, len(questions)),
		ElapsedSeconds: int(s.Elapsed() / time.Second),
		Questions:      questions,
		Answers:        answers,
	}, nil
}
