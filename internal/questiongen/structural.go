package questiongen

import (
	"strings"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

const (
	maxTextLen        = 1200
	maxExplanationLen = 2000
)

// StructuralValidator checks that required fields are present and that
// the question's shape matches its type.
type StructuralValidator struct{}

func (v *StructuralValidator) Name() string { return "structural" }

func (v *StructuralValidator) Validate(q *quiz.Question) *ValidationError {
	fail := func(msg string) *ValidationError {
		return &ValidationError{Validator: v.Name(), Message: msg}
	}
	if strings.TrimSpace(q.Text) == "" {
		return fail("text is empty")
	}
	if len(q.Text) > maxTextLen {
		return fail("text is too long")
	}
	if strings.TrimSpace(q.Explanation) == "" {
		return fail("explanation is empty")
	}
	if len(q.Explanation) > maxExplanationLen {
		return fail("explanation is too long")
	}
	if strings.TrimSpace(q.Topic) == "" {
		return fail("topic is empty")
	}
	if q.Kind == quiz.KindSingleChoice && q.Choice != nil {
		seen := make(map[string]bool)
		for _, o := range q.Choice.Options {
			o = strings.TrimSpace(o)
			if o == "" {
				return fail("option is empty")
			}
			if seen[o] {
				return fail("options repeat " + o)
			}
			seen[o] = true
		}
	}
	if q.Kind == quiz.KindMatrix && q.Matrix != nil {
		for _, r := range q.Matrix.Rows {
			if strings.TrimSpace(r) == "" {
				return fail("matrix row is empty")
			}
		}
	}
	if err := q.Validate(); err != nil {
		return fail(err.Error())
	}
	return nil
}
