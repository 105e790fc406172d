package questiongen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/llm"
	"github.com/VitoPalumboPodcast/Invalsi/internal/questionbank"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

type fakeBank []quiz.Question

func (b fakeBank) Lookup(quiz.Subject, quiz.Grade) []quiz.Question {
	out := make([]quiz.Question, len(b))
	for i, q := range b {
		out[i] = q.Clone()
	}
	return out
}

func bankQuestions(ids ...string) fakeBank {
	var b fakeBank
	for _, id := range ids {
		q := quiz.NewSingleChoice(id, "Domanda "+id, []string{"a", "b", "c", "d"}, 0)
		q.Topic = "Numeri"
		q.Explanation = "."
		b = append(b, q)
	}
	return b
}

func newTestService(bank Bank, p llm.Provider) *Service {
	var gen Generator
	if p != nil {
		gen = newTestGenerator(p)
	}
	s := NewService(bank, gen, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return time.UnixMilli(42) }
	return s
}

func withCount(n int) quiz.Config {
	cfg := testConfig()
	cfg.QuestionCount = n
	return cfg
}

func TestForConfig_BankSuffices(t *testing.T) {
	mock := llm.NewMockProvider()
	s := newTestService(bankQuestions("s1", "s2", "s3"), mock)

	qs, err := s.ForConfig(context.Background(), withCount(2))
	if err != nil {
		t.Fatalf("ForConfig: %v", err)
	}
	if len(qs) != 2 || qs[0].ID != "s1" || qs[1].ID != "s2" {
		t.Errorf("got %v", ids(qs))
	}
	if mock.CallCount() != 0 {
		t.Error("provider should not be called when the bank suffices")
	}
}

func TestForConfig_TopsUpFromLLM(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: batch(t, choiceJSON("s1", "Nuova?"), choiceJSON("g2", "Altra?")),
	})
	s := newTestService(bankQuestions("s1"), mock)

	qs, err := s.ForConfig(context.Background(), withCount(3))
	if err != nil {
		t.Fatalf("ForConfig: %v", err)
	}
	got := ids(qs)
	want := []string{"s1", "q-0-42", "g2"}
	if len(got) != len(want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ids = %v, want %v", got, want)
			break
		}
	}
}

func TestForConfig_FallsBackToBank(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrRateLimit{Err: errors.New("429")}})
	s := newTestService(bankQuestions("s1", "s2"), mock)

	qs, err := s.ForConfig(context.Background(), withCount(10))
	if err != nil {
		t.Fatalf("ForConfig: %v", err)
	}
	if len(qs) != 2 {
		t.Errorf("got %d questions, want the 2 bank questions", len(qs))
	}
}

func TestForConfig_NoQuestions(t *testing.T) {
	t.Run("provider fails", func(t *testing.T) {
		mock := llm.NewMockProvider(llm.MockResponse{Err: &llm.ErrProviderUnavailable{}})
		_, err := newTestService(nil, mock).ForConfig(context.Background(), withCount(5))
		var gerr *GenerationError
		if !errors.As(err, &gerr) {
			t.Fatalf("err = %v, want *GenerationError", err)
		}
		var unavailable *llm.ErrProviderUnavailable
		if !errors.As(err, &unavailable) {
			t.Errorf("cause lost: %v", err)
		}
	})

	t.Run("no provider", func(t *testing.T) {
		_, err := newTestService(fakeBank{}, nil).ForConfig(context.Background(), withCount(5))
		if !errors.Is(err, ErrNoProvider) {
			t.Fatalf("err = %v, want ErrNoProvider", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		_, err := newTestService(nil, nil).ForConfig(context.Background(), quiz.Config{})
		var gerr *GenerationError
		if !errors.As(err, &gerr) {
			t.Fatalf("err = %v, want *GenerationError", err)
		}
	})
}

func TestForConfig_EmbeddedBank(t *testing.T) {
	bank, err := questionbank.Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	s := newTestService(bank, nil)
	cfg := quiz.Config{Subject: quiz.SubjectItaliano, Grade: quiz.GradeSecondaSuperiore, QuestionCount: 3, Mode: quiz.ModeTraining}
	qs, err := s.ForConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("ForConfig: %v", err)
	}
	if len(qs) != 3 {
		t.Errorf("got %d questions", len(qs))
	}
}

func TestFromText(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: batch(t, choiceJSON("", "Chi beve?"))})
	s := newTestService(nil, mock)

	qs, cfg, err := s.FromText(context.Background(), "Il lupo beve.", withCount(3))
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	if cfg.Mode != quiz.ModeTraining {
		t.Errorf("Mode = %q, want training", cfg.Mode)
	}
	if len(qs) != 1 || qs[0].ContextText != "Il lupo beve." {
		t.Errorf("got %+v", qs)
	}
}

func TestFromText_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
		prov llm.Provider
		want error
	}{
		{"empty", "", llm.NewMockProvider(), ErrEmptyText},
		{"whitespace", " \n\t", llm.NewMockProvider(), ErrEmptyText},
		{"no provider", "testo", nil, ErrNoProvider},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := newTestService(nil, tt.prov).FromText(context.Background(), tt.text, withCount(3))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func ids(qs []quiz.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}
