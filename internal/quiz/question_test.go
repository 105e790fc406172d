package quiz

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       Question
		wantErr bool
	}{
		{"valid choice", choiceQuestion(3), false},
		{"valid matrix", matrixQuestion(1, 0, 1), false},
		{"missing id", Question{Kind: KindSingleChoice, Choice: &ChoiceSpec{Options: []string{"a", "b", "c", "d"}}}, true},
		{"three options", NewSingleChoice("x", "t", []string{"a", "b", "c"}, 0), true},
		{"index out of range", NewSingleChoice("x", "t", []string{"a", "b", "c", "d"}, 4), true},
		{"matrix row mismatch", NewMatrix("x", "t", []string{"r1", "r2"}, []string{"c1"}, []int{0}), true},
		{"matrix column out of range", NewMatrix("x", "t", []string{"r1"}, []string{"c1"}, []int{1}), true},
		{"both shapes", func() Question {
			q := choiceQuestion(0)
			q.Matrix = &MatrixSpec{}
			return q
		}(), true},
		{"unknown kind", Question{ID: "x", Kind: "essay"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidQuestion) {
					t.Errorf("Validate() = %v, want ErrInvalidQuestion", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestQuestionJSON_LegacyDefaultsToSingleChoice(t *testing.T) {
	raw := `{"id":"mat-1","text":"Quanto vale x?","options":["1","2","3","4"],"correctAnswerIndex":2,"explanation":"perché","topic":"Algebra"}`

	var q Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Kind != KindSingleChoice {
		t.Errorf("Kind = %q, want %q", q.Kind, KindSingleChoice)
	}
	if q.Choice == nil || q.Choice.CorrectIndex != 2 {
		t.Fatalf("Choice = %+v, want correct index 2", q.Choice)
	}
	if err := q.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
}

func TestQuestionJSON_Matrix(t *testing.T) {
	raw := `{"id":"ita-7","type":"matrix","text":"Classifica le frasi","matrixRows":["a","b"],"matrixCols":["Serenità","Scompiglio"],"matrixCorrectAnswer":[0,1],"explanation":"","topic":"Lessico"}`

	var q Question
	if err := json.Unmarshal([]byte(raw), &q); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if q.Kind != KindMatrix || q.Choice != nil {
		t.Fatalf("decoded %+v, want matrix only", q)
	}
	if q.RowCount() != 2 {
		t.Errorf("RowCount() = %d, want 2", q.RowCount())
	}

	out, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(out, &fields); err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	if _, ok := fields["correctAnswerIndex"]; ok {
		t.Error("matrix question must not write correctAnswerIndex")
	}
	if fields["type"] != "matrix" {
		t.Errorf("type = %v, want matrix", fields["type"])
	}
}

func TestQuestionJSON_CorrectIndexZeroSurvives(t *testing.T) {
	q := choiceQuestion(0)
	out, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Question
	if err := json.Unmarshal(out, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Choice.CorrectIndex != 0 {
		t.Errorf("CorrectIndex = %d, want 0", back.Choice.CorrectIndex)
	}
}

func TestAnswerJSON(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantKind Kind
		wantIdx  int
		wantLen  int
	}{
		{"scalar", `2`, KindSingleChoice, 2, 0},
		{"blank scalar", `-1`, KindSingleChoice, NoChoice, 0},
		{"array", `[0,-1,1]`, KindMatrix, NoChoice, 3},
		{"empty array", `[]`, KindMatrix, NoChoice, 0},
		{"null", `null`, KindSingleChoice, NoChoice, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Answer
			if err := json.Unmarshal([]byte(tt.raw), &a); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if a.Kind() != tt.wantKind {
				t.Errorf("Kind() = %q, want %q", a.Kind(), tt.wantKind)
			}
			if a.Index() != tt.wantIdx {
				t.Errorf("Index() = %d, want %d", a.Index(), tt.wantIdx)
			}
			if len(a.Cells()) != tt.wantLen {
				t.Errorf("len(Cells()) = %d, want %d", len(a.Cells()), tt.wantLen)
			}
		})
	}
}

func TestAnswerConform_LegacyBlankMatrix(t *testing.T) {
	var a Answer
	if err := json.Unmarshal([]byte(`-1`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	a = a.Conform(matrixQuestion(0, 1))
	if a.Kind() != KindMatrix {
		t.Fatalf("Kind() = %q, want matrix", a.Kind())
	}
	if !IsSkipped(a) {
		t.Error("legacy blank matrix answer should be skipped")
	}

	out, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "-1" {
		t.Errorf("marshal = %s, want -1", out)
	}
}

func TestAnswerWithCell(t *testing.T) {
	a := Unanswered(KindMatrix).WithCell(3, 1, 0)
	want := []int{NoChoice, 0, NoChoice}
	got := a.Cells()
	if len(got) != len(want) {
		t.Fatalf("Cells() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Cells()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	b := a.WithCell(3, 2, 1)
	if a.Cell(2) != NoChoice {
		t.Error("WithCell must not mutate the receiver")
	}
	if b.Cell(2) != 1 {
		t.Errorf("Cell(2) = %d, want 1", b.Cell(2))
	}
}

func TestParseConfigValues(t *testing.T) {
	if g, err := ParseGrade("10"); err != nil || g != GradeSecondaSuperiore {
		t.Errorf("ParseGrade(10) = %q, %v", g, err)
	}
	if s, err := ParseSubject("matematica"); err != nil || s != SubjectMatematica {
		t.Errorf("ParseSubject(matematica) = %q, %v", s, err)
	}
	if m, err := ParseMode("exam"); err != nil || m != ModeExam {
		t.Errorf("ParseMode(exam) = %q, %v", m, err)
	}
	if _, err := ParseMode("quiz"); err == nil {
		t.Error("ParseMode(quiz) should fail")
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
}
