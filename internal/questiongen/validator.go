package questiongen

import (
	"fmt"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

// Validator checks a generated question before it reaches a session.
// Implementations should be stateless and safe for concurrent use.
type Validator interface {
	// Name returns a short identifier used in error messages, e.g.
	// "structural".
	Name() string

	// Validate returns nil if q passes.
	Validate(q *quiz.Question) *ValidationError
}

// ValidationError describes why a question failed validation.
type ValidationError struct {
	Validator string // Name of the validator that failed
	Question  int    // Position of the question in the batch
	Message   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validator %q: question %d: %s", e.Validator, e.Question+1, e.Message)
}
