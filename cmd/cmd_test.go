package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/llm"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
	"github.com/VitoPalumboPodcast/Invalsi/internal/session"
)

func TestParseOption(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"a", 0, false},
		{"D", 3, false},
		{"b)", 1, false},
		{"2", 1, false},
		{" 4 ", 3, false},
		{"e", 0, true},
		{"5", 0, true},
		{"0", 0, true},
		{"ab", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseOption(tt.input, 4)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseOption(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseOption(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCells(t *testing.T) {
	cols := []string{"Vero", "Falso"}

	got, err := parseCells("V f, vero;2", cols, 4)
	if err != nil {
		t.Fatalf("parseCells: %v", err)
	}
	want := []int{0, 1, 0, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("parseCells = %v, want %v", got, want)
		}
	}

	if _, err := parseCells("V F", cols, 3); !errors.Is(err, errBadAnswer) {
		t.Errorf("wrong token count: err = %v", err)
	}
	if _, err := parseCells("V X", cols, 2); !errors.Is(err, errBadAnswer) {
		t.Errorf("unknown column: err = %v", err)
	}
	if _, err := parseCells("S", []string{"Sì", "Sempre"}, 1); !errors.Is(err, errBadAnswer) {
		t.Errorf("ambiguous initial: err = %v", err)
	}
}

func testQuestions() []quiz.Question {
	return []quiz.Question{
		quiz.NewSingleChoice("c1", "Quanto fa 2+2?", []string{"3", "4", "5", "6"}, 1),
		quiz.NewMatrix("m1", "Vero o falso?", []string{"2 è pari", "9 è primo"}, []string{"V", "F"}, []int{0, 1}),
		quiz.NewSingleChoice("c2", "Capitale d'Italia?", []string{"Roma", "Milano", "Napoli", "Torino"}, 0),
	}
}

func TestAnswerLoop(t *testing.T) {
	s, err := session.New(testQuestions(), quiz.ModeTraining)
	if err != nil {
		t.Fatalf("session.New: %v", err)
	}

	in := strings.NewReader("z\nb\nV F\n\n")
	var out bytes.Buffer
	if err := answerLoop(s, in, &out); err != nil {
		t.Fatalf("answerLoop: %v", err)
	}
	s.Finish()

	if got := s.CorrectCount(); got != 2 {
		t.Errorf("CorrectCount = %d, want 2", got)
	}
	if !s.Confirmed(0) || !s.Confirmed(1) || s.Confirmed(2) {
		t.Errorf("confirmations = %v %v %v", s.Confirmed(0), s.Confirmed(1), s.Confirmed(2))
	}
	text := out.String()
	if !strings.Contains(text, "try again") || !strings.Contains(text, "(skipped)") {
		t.Errorf("unexpected transcript:\n%s", text)
	}
}

func TestAnswerLoop_InputClosed(t *testing.T) {
	s, _ := session.New(testQuestions(), quiz.ModeTraining)
	var out bytes.Buffer
	if err := answerLoop(s, strings.NewReader("a\n"), &out); err != nil {
		t.Fatalf("answerLoop: %v", err)
	}
	if !strings.Contains(out.String(), "(input closed)") {
		t.Errorf("missing closed notice:\n%s", out.String())
	}
}

func TestWriteQuestion_Reveal(t *testing.T) {
	qs := testQuestions()
	a := quiz.CellsAnswer(1, 1)
	var out bytes.Buffer
	writeQuestion(&out, 2, 3, qs[1], &a, true)

	text := out.String()
	for _, want := range []string{"2/3", "[V | F]", "1. 2 è pari   > F  ✓ V", "2. 9 è primo   > F  ✓ F"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestFindRecord(t *testing.T) {
	records := []history.Record{{ID: "abc123"}, {ID: "abd456"}, {ID: "ab"}}

	tests := []struct {
		id      string
		want    string
		wantErr bool
	}{
		{"ab", "ab", false},
		{"abc", "abc123", false},
		{"abd4", "abd456", false},
		{"a", "", true},
		{"zzz", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := findRecord(records, tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("findRecord(%q) error = %v", tt.id, err)
			}
			if got.ID != tt.want {
				t.Errorf("findRecord(%q) = %q, want %q", tt.id, got.ID, tt.want)
			}
		})
	}
}

func clearLLMEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY",
		"INVALSI_LLM_PROVIDER", "INVALSI_GEMINI_API_KEY", "INVALSI_GEMINI_MODEL", "INVALSI_OPENAI_API_KEY",
		"INVALSI_OPENAI_MODEL", "INVALSI_OPENAI_BASE_URL", "INVALSI_ANTHROPIC_API_KEY", "INVALSI_ANTHROPIC_MODEL",
		"INVALSI_OPENROUTER_API_KEY", "INVALSI_OPENROUTER_MODEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLLMConfig(t *testing.T) {
	t.Run("nothing configured", func(t *testing.T) {
		clearLLMEnv(t)
		if _, ok := llmConfig(viper.New()); ok {
			t.Fatal("expected no provider")
		}
	})

	t.Run("explicit provider from config", func(t *testing.T) {
		clearLLMEnv(t)
		v := viper.New()
		v.Set("llm-provider", "Anthropic")
		v.Set("anthropic-api-key", "sk-ant")
		v.Set("llm-model", "claude-sonnet")
		v.Set("llm-timeout", 2*time.Minute)

		cfg, ok := llmConfig(v)
		if !ok {
			t.Fatal("expected a provider")
		}
		if cfg.Provider != llm.ProviderAnthropic || cfg.Anthropic.APIKey != "sk-ant" || cfg.Anthropic.Model != "claude-sonnet" {
			t.Errorf("cfg = %+v", cfg)
		}
		if cfg.Timeout != 2*time.Minute {
			t.Errorf("Timeout = %v", cfg.Timeout)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("discovered vendor key", func(t *testing.T) {
		clearLLMEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-open")
		cfg, ok := llmConfig(viper.New())
		if !ok || cfg.Provider != llm.ProviderOpenAI || cfg.OpenAI.APIKey != "sk-open" {
			t.Errorf("llmConfig = %+v, %v", cfg, ok)
		}
	})
}

func TestLoadBank_ExtraDir(t *testing.T) {
	v := viper.New()
	v.Set("bank-dir", t.TempDir())
	bank, err := loadBank(v)
	if err != nil {
		t.Fatalf("loadBank: %v", err)
	}
	if len(bank.Files()) == 0 {
		t.Error("embedded bank files missing")
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("DEBUG").String() != "DEBUG" || parseLevel("nonsense").String() != "INFO" {
		t.Error("unexpected level mapping")
	}
}
