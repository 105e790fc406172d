package quiz

// Outcome is the review classification of an answered question.
type Outcome int

const (
	OutcomeIncorrect Outcome = iota
	OutcomeCorrect
	OutcomeSkipped
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCorrect:
		return "correct"
	case OutcomeSkipped:
		return "skipped"
	default:
		return "incorrect"
	}
}

// Evaluate reports whether a answers q correctly. Matrix questions get no
// partial credit: every row must match and a blank row fails the item.
// An answer whose shape does not match the question is never correct.
func Evaluate(q Question, a Answer) bool {
	switch q.Kind {
	case KindSingleChoice:
		if q.Choice == nil || a.kind != KindSingleChoice || a.index == NoChoice {
			return false
		}
		return a.index == q.Choice.CorrectIndex
	case KindMatrix:
		if q.Matrix == nil || a.kind != KindMatrix || a.cells == nil {
			return false
		}
		want := q.Matrix.CorrectColumns
		if len(want) == 0 || len(a.cells) != len(want) {
			return false
		}
		for i, col := range want {
			if a.cells[i] == NoChoice || a.cells[i] != col {
				return false
			}
		}
		return true
	}
	return false
}

// IsSkipped reports whether the answer was left entirely blank. A matrix
// answer with some rows filled is not skipped, even though it scores as
// incorrect.
func IsSkipped(a Answer) bool {
	switch a.kind {
	case KindMatrix:
		for _, c := range a.cells {
			if c != NoChoice {
				return false
			}
		}
		return true
	case KindSingleChoice:
		return a.index == NoChoice
	}
	return true
}

// Classify returns the review outcome for q and a.
func Classify(q Question, a Answer) Outcome {
	if Evaluate(q, a) {
		return OutcomeCorrect
	}
	if IsSkipped(a) {
		return OutcomeSkipped
	}
	return OutcomeIncorrect
}

// CountCorrect evaluates every question against the answer at the same
// position. Missing answers count as blank.
func CountCorrect(questions []Question, answers []Answer) int {
	n := 0
	for i, q := range questions {
		if i < len(answers) && Evaluate(q, answers[i]) {
			n++
		}
	}
	return n
}

// ScorePercent rounds 100*correct/total half-up. It returns 0 when total
// is not positive.
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*correct + total) / (2 * total)
}
