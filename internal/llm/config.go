package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Provider names accepted by Config.Provider.
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Providers lists the selectable providers in discovery order.
var Providers = []string{ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter}

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout bounds a single generation including retries.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-pro"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.5-flash"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults. Generating a full
// 30-question exam takes a while, hence the generous timeout.
func DefaultConfig() Config {
	return Config{
		Provider:   ProviderGemini,
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-pro"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 90 * time.Second,
	}
}

// envBinding maps an INVALSI_* variable onto a Config field.
type envBinding struct {
	name string
	set  func(*Config, string)
}

var envBindings = []envBinding{
	{"INVALSI_LLM_PROVIDER", func(c *Config, v string) { c.Provider = strings.ToLower(v) }},
	{"INVALSI_GEMINI_API_KEY", func(c *Config, v string) { c.Gemini.APIKey = v }},
	{"INVALSI_GEMINI_MODEL", func(c *Config, v string) { c.Gemini.Model = v }},
	{"INVALSI_OPENAI_API_KEY", func(c *Config, v string) { c.OpenAI.APIKey = v }},
	{"INVALSI_OPENAI_MODEL", func(c *Config, v string) { c.OpenAI.Model = v }},
	{"INVALSI_OPENAI_BASE_URL", func(c *Config, v string) { c.OpenAI.BaseURL = v }},
	{"INVALSI_ANTHROPIC_API_KEY", func(c *Config, v string) { c.Anthropic.APIKey = v }},
	{"INVALSI_ANTHROPIC_MODEL", func(c *Config, v string) { c.Anthropic.Model = v }},
	{"INVALSI_OPENROUTER_API_KEY", func(c *Config, v string) { c.OpenRouter.APIKey = v }},
	{"INVALSI_OPENROUTER_MODEL", func(c *Config, v string) { c.OpenRouter.Model = v }},
}

// ConfigFromEnv builds a Config from INVALSI_* environment variables,
// falling back to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	for _, b := range envBindings {
		if v := os.Getenv(b.name); v != "" {
			b.set(&cfg, v)
		}
	}
	return cfg
}

// discoveryKeys are the vendor variables probed by DiscoverConfig, in
// priority order. API_KEY is the variable earlier releases read.
var discoveryKeys = []struct {
	env      string
	provider string
}{
	{"GEMINI_API_KEY", ProviderGemini},
	{"GOOGLE_API_KEY", ProviderGemini},
	{"API_KEY", ProviderGemini},
	{"OPENAI_API_KEY", ProviderOpenAI},
	{"ANTHROPIC_API_KEY", ProviderAnthropic},
	{"OPENROUTER_API_KEY", ProviderOpenRouter},
}

// DiscoverConfig probes standard API key variables and returns a Config
// for the first provider whose key is found.
func DiscoverConfig() (Config, bool) {
	for _, d := range discoveryKeys {
		k := os.Getenv(d.env)
		if k == "" {
			continue
		}
		cfg := DefaultConfig()
		cfg.Provider = d.provider
		cfg.SetAPIKey(k)
		return cfg, true
	}
	return Config{}, false
}

// APIKey returns the key of the selected provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case ProviderGemini:
		return c.Gemini.APIKey
	case ProviderOpenAI:
		return c.OpenAI.APIKey
	case ProviderAnthropic:
		return c.Anthropic.APIKey
	case ProviderOpenRouter:
		return c.OpenRouter.APIKey
	}
	return ""
}

// SetAPIKey sets the key of the selected provider.
func (c *Config) SetAPIKey(key string) {
	switch c.Provider {
	case ProviderGemini:
		c.Gemini.APIKey = key
	case ProviderOpenAI:
		c.OpenAI.APIKey = key
	case ProviderAnthropic:
		c.Anthropic.APIKey = key
	case ProviderOpenRouter:
		c.OpenRouter.APIKey = key
	}
}

// SetModel sets the model of the selected provider. Empty is ignored.
func (c *Config) SetModel(model string) {
	if model == "" {
		return
	}
	switch c.Provider {
	case ProviderGemini:
		c.Gemini.Model = model
	case ProviderOpenAI:
		c.OpenAI.Model = model
	case ProviderAnthropic:
		c.Anthropic.Model = model
	case ProviderOpenRouter:
		c.OpenRouter.Model = model
	}
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case ProviderGemini, ProviderOpenAI, ProviderAnthropic, ProviderOpenRouter:
		if c.APIKey() == "" {
			return fmt.Errorf("INVALSI_%s_API_KEY is required for the %s provider",
				strings.ToUpper(c.Provider), c.Provider)
		}
		return nil
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
}
