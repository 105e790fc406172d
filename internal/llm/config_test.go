package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/store"
)

func clearKeyEnv(t *testing.T) {
	t.Helper()
	for _, d := range discoveryKeys {
		t.Setenv(d.env, "")
	}
	for _, b := range envBindings {
		t.Setenv(b.name, "")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "sk"}}, false},
		{"openrouter without key", Config{Provider: ProviderOpenRouter}, true},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	clearKeyEnv(t)
	t.Setenv("INVALSI_LLM_PROVIDER", "OpenAI")
	t.Setenv("INVALSI_OPENAI_API_KEY", "sk-env")
	t.Setenv("INVALSI_OPENAI_MODEL", "gpt-4.1-mini")

	cfg := ConfigFromEnv()
	if cfg.Provider != ProviderOpenAI {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.APIKey() != "sk-env" || cfg.OpenAI.Model != "gpt-4.1-mini" {
		t.Errorf("OpenAI = %+v", cfg.OpenAI)
	}
	if cfg.Gemini.Model != "gemini-pro" {
		t.Errorf("untouched defaults lost: %+v", cfg.Gemini)
	}
}

func TestDiscoverConfig(t *testing.T) {
	t.Run("nothing set", func(t *testing.T) {
		clearKeyEnv(t)
		if _, ok := DiscoverConfig(); ok {
			t.Fatal("expected no config")
		}
	})

	t.Run("legacy API_KEY selects gemini", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("API_KEY", "legacy")
		cfg, ok := DiscoverConfig()
		if !ok || cfg.Provider != ProviderGemini || cfg.Gemini.APIKey != "legacy" {
			t.Fatalf("DiscoverConfig() = %+v, %v", cfg, ok)
		}
	})

	t.Run("gemini wins over anthropic", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "a")
		t.Setenv("GEMINI_API_KEY", "g")
		cfg, _ := DiscoverConfig()
		if cfg.Provider != ProviderGemini {
			t.Fatalf("Provider = %q, want gemini", cfg.Provider)
		}
	})

	t.Run("anthropic alone", func(t *testing.T) {
		clearKeyEnv(t)
		t.Setenv("ANTHROPIC_API_KEY", "a")
		cfg, _ := DiscoverConfig()
		if cfg.Provider != ProviderAnthropic || cfg.Anthropic.APIKey != "a" {
			t.Fatalf("DiscoverConfig() = %+v", cfg)
		}
	})
}

func TestSetModel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = ProviderAnthropic
	cfg.SetModel("")
	if cfg.Anthropic.Model != "claude-haiku" {
		t.Errorf("empty model should be ignored, got %q", cfg.Anthropic.Model)
	}
	cfg.SetModel("claude-sonnet")
	if cfg.Anthropic.Model != "claude-sonnet" {
		t.Errorf("Model = %q", cfg.Anthropic.Model)
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: ProviderMock}, nil, nil)
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Errorf("ModelID = %q", p.ModelID())
	}
}

func TestNewProvider_MissingKey(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: ProviderGemini}, nil, nil); err == nil {
		t.Fatal("expected validation error")
	}
}

type recordingRepo struct {
	store.EventRepo
	events []store.LLMRequestEventData
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.events = append(r.events, data)
	return nil
}

func TestWithLogging_RecordsEvents(t *testing.T) {
	repo := &recordingRepo{}
	mock := NewMockProvider(
		MockResponse{Content: []byte(`{"ok":true}`), Usage: Usage{InputTokens: 3, OutputTokens: 4}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("slow down")}},
	)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := WithLogging(mock, repo, logger)
	ctx := WithPurpose(context.Background(), "question-gen")

	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error on second call")
	}

	if len(repo.events) != 2 {
		t.Fatalf("recorded %d events, want 2", len(repo.events))
	}
	ok, failed := repo.events[0], repo.events[1]
	if !ok.Success || ok.Purpose != "question-gen" || ok.InputTokens != 3 || ok.ResponseBody != `{"ok":true}` {
		t.Errorf("success event = %+v", ok)
	}
	if ok.RequestBody != "[system]\nsys\n\n[user]\nhi\n\n" {
		t.Errorf("RequestBody = %q", ok.RequestBody)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("failure event = %+v", failed)
	}
}

type slowProvider struct{}

func (slowProvider) Generate(ctx context.Context, _ Request) (*Response, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}
func (slowProvider) ModelID() string { return "slow" }

func TestWithTimeout(t *testing.T) {
	p := WithTimeout(slowProvider{}, 20*time.Millisecond)
	_, err := p.Generate(context.Background(), Request{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
	if WithTimeout(slowProvider{}, 0) != (slowProvider{}) {
		t.Error("zero timeout should return the provider unchanged")
	}
}
