// Package i18n translates user-facing strings. Italian is the default
// language; English is available with --lang en.
package i18n

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// DefaultLanguage is used when no language is configured.
const DefaultLanguage = "it"

//go:embed locales/*.json
var localeFS embed.FS

type ctxKey struct{}

var (
	mu      sync.RWMutex
	bundle  *i18n.Bundle
	current *Translator
	lang    = DefaultLanguage
)

// Translator localizes messages for one language.
type Translator struct {
	loc *i18n.Localizer
}

// Init loads the translation bundle and makes lang the process language.
func Init(tag string) error {
	if tag == "" {
		tag = DefaultLanguage
	}
	parsed, err := language.Parse(tag)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", tag, err)
	}

	b := i18n.NewBundle(language.Italian)
	b.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		if _, err := b.ParseMessageFileBytes(data, e.Name()); err != nil {
			return fmt.Errorf("parse locale file %s: %w", e.Name(), err)
		}
		slog.Debug("loaded locale file", "file", e.Name())
	}

	mu.Lock()
	defer mu.Unlock()
	bundle = b
	lang = parsed.String()
	current = &Translator{loc: i18n.NewLocalizer(b, lang)}
	return nil
}

// Language returns the tag passed to the last successful Init.
func Language() string {
	mu.RLock()
	defer mu.RUnlock()
	return lang
}

// NewTranslator creates a translator for the given language preferences,
// e.g. the values of an Accept-Language header.
func NewTranslator(langs ...string) *Translator {
	mu.RLock()
	defer mu.RUnlock()
	if bundle == nil {
		return &Translator{}
	}
	return &Translator{loc: i18n.NewLocalizer(bundle, langs...)}
}

// WithTranslator stores a translator in the context.
func WithTranslator(ctx context.Context, t *Translator) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromContext returns the context's translator, or the process one.
func FromContext(ctx context.Context) *Translator {
	if t, ok := ctx.Value(ctxKey{}).(*Translator); ok {
		return t
	}
	return defaultTranslator()
}

func defaultTranslator() *Translator {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return &Translator{}
	}
	return current
}

// T translates a message by ID. Unknown IDs are returned unchanged.
func (t *Translator) T(msgID string) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: msgID})
}

// Td translates a message by ID with template data.
func (t *Translator) Td(msgID string, data map[string]any) string {
	return t.localize(&i18n.LocalizeConfig{MessageID: msgID, TemplateData: data})
}

// Tp translates a pluralized message by ID. The count is available to
// the template as .Count.
func (t *Translator) Tp(msgID string, count int) string {
	return t.localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (t *Translator) localize(cfg *i18n.LocalizeConfig) string {
	if t == nil || t.loc == nil {
		return cfg.MessageID
	}
	s, err := t.loc.Localize(cfg)
	if err != nil {
		slog.Warn("missing translation", "id", cfg.MessageID, "error", err)
		return cfg.MessageID
	}
	return s
}

// T translates a message by ID in the process language.
func T(msgID string) string { return defaultTranslator().T(msgID) }

// Td translates a message by ID with template data in the process language.
func Td(msgID string, data map[string]any) string { return defaultTranslator().Td(msgID, data) }

// Tp translates a pluralized message in the process language.
func Tp(msgID string, count int) string { return defaultTranslator().Tp(msgID, count) }
