// Package questiongen produces the question list for a session: curated
// bank questions first, topped up by an LLM when the bank runs short, or a
// fresh set generated from text supplied by the user.
package questiongen

import (
	"context"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

// Generator produces questions with an LLM.
type Generator interface {
	// GenerateTest returns up to count new questions for cfg. prior holds
	// the texts of questions already in the test.
	GenerateTest(ctx context.Context, cfg quiz.Config, count int, prior []string) ([]quiz.Question, error)

	// GenerateFromText returns up to count questions answerable from text
	// alone.
	GenerateFromText(ctx context.Context, text string, cfg quiz.Config, count int) ([]quiz.Question, error)
}
