package screen

import (
	"log/slog"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/history"
	"github.com/VitoPalumboPodcast/Invalsi/internal/questiongen"
	"github.com/VitoPalumboPodcast/Invalsi/internal/speech"
	"github.com/VitoPalumboPodcast/Invalsi/internal/store"
)

// Deps carries the services shared by every screen.
type Deps struct {
	Source       questiongen.Source
	History      *history.Log
	Events       store.EventRepo // optional
	Speaker      speech.Speaker
	Logger       *slog.Logger
	ExamDuration time.Duration

	// CanGenerate reports whether an LLM provider is configured. Tests
	// built from text need one.
	CanGenerate bool
}

// WithDefaults fills unset optional fields.
func (d Deps) WithDefaults() Deps {
	if d.Speaker == nil {
		d.Speaker = speech.Nop{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return d
}
