package questiongen

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

var (
	// ErrNoProvider is returned when questions must be generated but no
	// LLM provider is configured.
	ErrNoProvider = errors.New("no LLM provider configured")

	// ErrEmptyText is returned by FromText for blank input.
	ErrEmptyText = errors.New("text is empty")
)

// GenerationError reports that no question list could be produced. No
// session should be created; the user may retry.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return "question generation failed: " + e.Reason
	}
	return fmt.Sprintf("question generation failed: %s: %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Source yields the ordered, non-empty question list for a session.
type Source interface {
	ForConfig(ctx context.Context, cfg quiz.Config) ([]quiz.Question, error)
	FromText(ctx context.Context, text string, cfg quiz.Config) ([]quiz.Question, quiz.Config, error)
}

// Bank is the curated question store consulted before generation.
type Bank interface {
	Lookup(subject quiz.Subject, grade quiz.Grade) []quiz.Question
}

// Service implements Source over a curated bank and an optional generator.
type Service struct {
	bank   Bank
	gen    Generator
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service. gen may be nil, in which case only bank
// questions are served.
func NewService(bank Bank, gen Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{bank: bank, gen: gen, logger: logger, now: time.Now}
}

// HasGenerator reports whether an LLM is available.
func (s *Service) HasGenerator() bool { return s.gen != nil }

// ForConfig returns cfg.QuestionCount questions for a standard test. Bank
// questions come first in bank order; the remainder is generated. When
// generation fails the bank questions alone are returned, if any.
func (s *Service) ForConfig(ctx context.Context, cfg quiz.Config) ([]quiz.Question, error) {
	if err := cfg.Validate(); err != nil {
		return nil, &GenerationError{Reason: "invalid configuration", Err: err}
	}

	var static []quiz.Question
	if s.bank != nil {
		static = s.bank.Lookup(cfg.Subject, cfg.Grade)
	}
	if len(static) >= cfg.QuestionCount {
		return static[:cfg.QuestionCount], nil
	}

	needed := cfg.QuestionCount - len(static)
	generated, err := s.generateTest(ctx, cfg, needed, static)
	if err != nil {
		if len(static) > 0 {
			s.logger.Warn("question generation failed, serving bank questions only",
				"subject", cfg.Subject,
				"grade", cfg.Grade,
				"bank", len(static),
				"requested", cfg.QuestionCount,
				"error", err,
			)
			return static, nil
		}
		return nil, &GenerationError{Reason: fmt.Sprintf("%s, %s", cfg.Subject, cfg.Grade), Err: err}
	}

	s.logger.Info("questions ready",
		"subject", cfg.Subject,
		"grade", cfg.Grade,
		"bank", len(static),
		"generated", len(generated),
	)
	return append(static, s.uniqueIDs(static, generated)...), nil
}

func (s *Service) generateTest(ctx context.Context, cfg quiz.Config, needed int, static []quiz.Question) ([]quiz.Question, error) {
	if s.gen == nil {
		return nil, ErrNoProvider
	}
	prior := make([]string, len(static))
	for i, q := range static {
		prior[i] = q.Text
	}
	return s.gen.GenerateTest(ctx, cfg, needed, prior)
}

// FromText generates cfg.QuestionCount questions about text. The returned
// config is cfg forced to training mode.
func (s *Service) FromText(ctx context.Context, text string, cfg quiz.Config) ([]quiz.Question, quiz.Config, error) {
	cfg.Mode = quiz.ModeTraining
	if strings.TrimSpace(text) == "" {
		return nil, cfg, &GenerationError{Reason: "custom text", Err: ErrEmptyText}
	}
	if err := cfg.Validate(); err != nil {
		return nil, cfg, &GenerationError{Reason: "invalid configuration", Err: err}
	}
	if s.gen == nil {
		return nil, cfg, &GenerationError{Reason: "custom text", Err: ErrNoProvider}
	}

	qs, err := s.gen.GenerateFromText(ctx, text, cfg, cfg.QuestionCount)
	if err != nil {
		return nil, cfg, &GenerationError{Reason: "custom text", Err: err}
	}
	s.logger.Info("questions generated from text",
		"subject", cfg.Subject,
		"grade", cfg.Grade,
		"chars", len(text),
		"questions", len(qs),
	)
	return qs, cfg, nil
}

// uniqueIDs renames generated questions whose id is already taken.
func (s *Service) uniqueIDs(static, generated []quiz.Question) []quiz.Question {
	taken := make(map[string]bool, len(static)+len(generated))
	for _, q := range static {
		taken[q.ID] = true
	}
	stamp := s.now().UnixMilli()
	for i := range generated {
		if taken[generated[i].ID] {
			generated[i].ID = fmt.Sprintf("q-%d-%d", i, stamp)
		}
		taken[generated[i].ID] = true
	}
	return generated
}
