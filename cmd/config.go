package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/llm"
	"github.com/VitoPalumboPodcast/Invalsi/internal/questionbank"
	"github.com/VitoPalumboPodcast/Invalsi/internal/questiongen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/store"
)

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("INVALSI")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("invalsi")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/invalsi")
	v.AddConfigPath("/etc/invalsi")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Debug("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupLogging installs the default logger writing to w.
func setupLogging(v *viper.Viper, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(v.GetString("log-level"))}
	var h slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		h = slog.NewJSONHandler(w, opts)
	default:
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

// setupFileLogging logs to --log-file, since the terminal belongs to the
// UI. The returned func closes the file.
func setupFileLogging(v *viper.Viper) (*slog.Logger, func(), error) {
	path := v.GetString("log-file")
	if path == "" {
		dir, err := store.DataDir()
		if err != nil {
			return nil, nil, err
		}
		path = filepath.Join(dir, "invalsi.log")
	}
	if err := store.EnsureDir(path); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	return setupLogging(v, f), func() { _ = f.Close() }, nil
}

// resolveDBPath returns --db / INVALSI_DB / config file, else the default XDG path.
func resolveDBPath(v *viper.Viper) (string, error) {
	if p := v.GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func openStore(v *viper.Viper) (*store.Store, error) {
	dbPath, err := resolveDBPath(v)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return st, nil
}

func openHistory(v *viper.Viper) (*store.Store, *history.Log, error) {
	st, err := openStore(v)
	if err != nil {
		return nil, nil, err
	}
	return st, history.NewLog(st.KVRepo(), history.WithLogger(slog.Default())), nil
}

// providerKeys maps config keys onto llm.Config fields.
var providerKeys = []struct {
	key string
	set func(*llm.Config, string)
}{
	{"gemini-api-key", func(c *llm.Config, v string) { c.Gemini.APIKey = v }},
	{"gemini-model", func(c *llm.Config, v string) { c.Gemini.Model = v }},
	{"openai-api-key", func(c *llm.Config, v string) { c.OpenAI.APIKey = v }},
	{"openai-model", func(c *llm.Config, v string) { c.OpenAI.Model = v }},
	{"openai-base-url", func(c *llm.Config, v string) { c.OpenAI.BaseURL = v }},
	{"anthropic-api-key", func(c *llm.Config, v string) { c.Anthropic.APIKey = v }},
	{"anthropic-model", func(c *llm.Config, v string) { c.Anthropic.Model = v }},
	{"openrouter-api-key", func(c *llm.Config, v string) { c.OpenRouter.APIKey = v }},
	{"openrouter-model", func(c *llm.Config, v string) { c.OpenRouter.Model = v }},
}

// llmConfig assembles the provider configuration. Without an explicit
// provider the standard vendor key variables are probed.
func llmConfig(v *viper.Viper) (llm.Config, bool) {
	var cfg llm.Config
	provider := strings.ToLower(v.GetString("llm-provider"))
	if provider == "" {
		found, ok := llm.DiscoverConfig()
		if !ok {
			return llm.Config{}, false
		}
		cfg = found
	} else {
		cfg = llm.ConfigFromEnv()
		cfg.Provider = provider
		for _, k := range providerKeys {
			if s := v.GetString(k.key); s != "" {
				k.set(&cfg, s)
			}
		}
	}
	cfg.SetModel(v.GetString("llm-model"))
	if d := v.GetDuration("llm-timeout"); d > 0 {
		cfg.Timeout = d
	}
	return cfg, true
}

// loadBank returns the embedded bank merged with --bank-dir, if set.
func loadBank(v *viper.Viper) (*questionbank.Bank, error) {
	bank, err := questionbank.Default()
	if err != nil {
		return nil, fmt.Errorf("load question bank: %w", err)
	}
	dir := v.GetString("bank-dir")
	if dir == "" {
		return bank, nil
	}
	extra, err := questionbank.Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", dir, err)
	}
	return bank.Merge(extra)
}

// newSource builds the question source. The LLM is optional: without it
// only bank questions are served.
func newSource(cmd *cobra.Command, v *viper.Viper, events store.EventRepo, logger *slog.Logger) (*questiongen.Service, error) {
	bank, err := loadBank(v)
	if err != nil {
		return nil, err
	}

	var gen questiongen.Generator
	if cfg, ok := llmConfig(v); ok {
		provider, err := llm.NewProvider(cmd.Context(), cfg, events, logger)
		if err != nil {
			logger.Warn("LLM provider unavailable, using the question bank only", "provider", cfg.Provider, "error", err)
		} else {
			logger.Info("LLM provider ready", "provider", cfg.Provider, "model", provider.ModelID())
			gen = questiongen.New(provider, questiongen.DefaultConfig())
		}
	} else {
		logger.Info("no LLM provider configured, using the question bank only")
	}
	return questiongen.NewService(bank, gen, logger), nil
}
