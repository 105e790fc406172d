package questiongen

// Config controls the behavior of the LLMGenerator.
type Config struct {
	// Validators run in order on every generated question; the first
	// failure rejects the whole batch.
	Validators []Validator

	// MaxTokens is the token budget for one batch of questions.
	MaxTokens int

	// ExamTemperature is used when topping up a standard test.
	ExamTemperature float64

	// TextTemperature is used when generating from user-supplied text.
	TextTemperature float64

	// MaxPriorQuestions caps how many existing question texts are listed
	// in the prompt as "do not repeat".
	MaxPriorQuestions int
}

// DefaultConfig returns a Config with the standard validator chain and
// recommended defaults.
func DefaultConfig() Config {
	return Config{
		Validators: []Validator{
			&StructuralValidator{},
		},
		MaxTokens:         16384,
		ExamTemperature:   0.3,
		TextTemperature:   0.4,
		MaxPriorQuestions: 30,
	}
}
