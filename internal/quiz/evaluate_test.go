package quiz

import "testing"

func choiceQuestion(correct int) Question {
	return NewSingleChoice("q1", "Quanto fa 2 + 2?", []string{"3", "4", "5", "6"}, correct)
}

func matrixQuestion(correct ...int) Question {
	rows := make([]string, len(correct))
	for i := range rows {
		rows[i] = "riga"
	}
	return NewMatrix("m1", "Classifica", rows, []string{"Vero", "Falso"}, correct)
}

func TestEvaluate_SingleChoice(t *testing.T) {
	q := choiceQuestion(1)
	tests := []struct {
		name   string
		answer Answer
		want   bool
	}{
		{"correct", ChoiceAnswer(1), true},
		{"wrong", ChoiceAnswer(2), false},
		{"unanswered", Unanswered(KindSingleChoice), false},
		{"matrix shape", CellsAnswer(1), false},
		{"zero value", Answer{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(q, tt.answer); got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestEvaluate_UnansweredNeverMatchesSentinel(t *testing.T) {
	q := choiceQuestion(0)
	q.Choice.CorrectIndex = NoChoice
	if Evaluate(q, Unanswered(KindSingleChoice)) {
		t.Error("blank answer must never evaluate true")
	}
}

func TestEvaluate_Matrix(t *testing.T) {
	q := matrixQuestion(0, 1)
	tests := []struct {
		name   string
		answer Answer
		want   bool
	}{
		{"all rows match", CellsAnswer(0, 1), true},
		{"one row wrong", CellsAnswer(0, 0), false},
		{"one row blank", CellsAnswer(0, NoChoice), false},
		{"never started", Unanswered(KindMatrix), false},
		{"empty array", CellsAnswer(), false},
		{"too short", CellsAnswer(0), false},
		{"too long", CellsAnswer(0, 1, 1), false},
		{"scalar shape", ChoiceAnswer(0), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(q, tt.answer); got != tt.want {
				t.Errorf("Evaluate(%v) = %v, want %v", tt.answer, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		q      Question
		answer Answer
		want   Outcome
	}{
		{"choice correct", choiceQuestion(2), ChoiceAnswer(2), OutcomeCorrect},
		{"choice wrong", choiceQuestion(2), ChoiceAnswer(0), OutcomeIncorrect},
		{"choice blank", choiceQuestion(2), Unanswered(KindSingleChoice), OutcomeSkipped},
		{"matrix partial is incorrect not skipped", matrixQuestion(0, 1), CellsAnswer(0, NoChoice), OutcomeIncorrect},
		{"matrix empty array is skipped", matrixQuestion(0, 1), CellsAnswer(), OutcomeSkipped},
		{"matrix all blank is skipped", matrixQuestion(0, 1), CellsAnswer(NoChoice, NoChoice), OutcomeSkipped},
		{"matrix never started is skipped", matrixQuestion(0, 1), Unanswered(KindMatrix), OutcomeSkipped},
		{"matrix correct", matrixQuestion(0, 1), CellsAnswer(0, 1), OutcomeCorrect},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.q, tt.answer); got != tt.want {
				t.Errorf("Classify = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCountCorrectAndScore(t *testing.T) {
	questions := []Question{choiceQuestion(1), choiceQuestion(2), choiceQuestion(0)}
	answers := []Answer{ChoiceAnswer(1), ChoiceAnswer(2), ChoiceAnswer(3)}

	correct := CountCorrect(questions, answers)
	if correct != 2 {
		t.Fatalf("CountCorrect = %d, want 2", correct)
	}
	if got := ScorePercent(correct, len(questions)); got != 67 {
		t.Errorf("ScorePercent = %d, want 67", got)
	}
}

func TestScorePercent(t *testing.T) {
	tests := []struct {
		correct, total, want int
	}{
		{0, 1, 0},
		{1, 1, 100},
		{1, 2, 50},
		{1, 3, 33},
		{2, 3, 67},
		{1, 8, 13}, // 12.5 rounds up
		{3, 8, 38}, // 37.5 rounds up
		{5, 7, 71},
		{29, 30, 97},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := ScorePercent(tt.correct, tt.total); got != tt.want {
			t.Errorf("ScorePercent(%d, %d) = %d, want %d", tt.correct, tt.total, got, tt.want)
		}
	}
}
