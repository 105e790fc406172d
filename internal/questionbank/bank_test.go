package questionbank

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

func TestDefault_LoadsAndValidates(t *testing.T) {
	b, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(b.Files()) != 4 {
		t.Errorf("files = %d, want 4", len(b.Files()))
	}
	for _, f := range b.Files() {
		for _, q := range f.Questions {
			if err := q.Validate(); err != nil {
				t.Errorf("%s: %v", f.Name, err)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	b, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	tests := []struct {
		name    string
		subject quiz.Subject
		grade   quiz.Grade
		wantMin int
		wantMax int
	}{
		{"matematica grade 10", quiz.SubjectMatematica, quiz.GradeSecondaSuperiore, 10, 10},
		{"matematica grade 8 has none", quiz.SubjectMatematica, quiz.GradeTerzaMedia, 0, 0},
		{"italiano grade 13 has none", quiz.SubjectItaliano, quiz.GradeQuintaSuperiore, 0, 0},
		{"diritto any grade", quiz.SubjectDiritto, quiz.GradeTerzaMedia, 1, 100},
		{"diritto grade 13", quiz.SubjectDiritto, quiz.GradeQuintaSuperiore, 1, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := len(b.Lookup(tt.subject, tt.grade))
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("Lookup() returned %d questions, want %d..%d", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestLookup_ReturnsCopies(t *testing.T) {
	b, _ := Default()
	first := b.Lookup(quiz.SubjectMatematica, quiz.GradeSecondaSuperiore)
	first[0].Choice.Options[0] = "changed"
	again := b.Lookup(quiz.SubjectMatematica, quiz.GradeSecondaSuperiore)
	if again[0].Choice.Options[0] == "changed" {
		t.Error("Lookup must not expose bank storage")
	}
}

func TestLookup_KeepsPassagesTogether(t *testing.T) {
	b, _ := Default()
	qs := b.Lookup(quiz.SubjectItaliano, quiz.GradeSecondaSuperiore)
	if len(qs) < 3 {
		t.Fatalf("expected at least 3 italiano questions, got %d", len(qs))
	}
	ctx := qs[0].ContextText
	if ctx == "" || qs[1].ContextText != ctx || qs[2].ContextText != ctx {
		t.Error("questions on the same passage should be adjacent")
	}
}

func TestSummary(t *testing.T) {
	b, _ := Default()
	var mat *Entry
	for _, e := range b.Summary() {
		if e.Count == 0 {
			t.Errorf("empty entry %+v", e)
		}
		if e.Subject == quiz.SubjectMatematica {
			e := e
			mat = &e
		}
	}
	if mat == nil || mat.Grade != quiz.GradeSecondaSuperiore || mat.Matrix != 2 {
		t.Errorf("matematica entry = %+v", mat)
	}
}

const extraFile = `{
  "subject": "Matematica",
  "grades": ["Terza Media (Grado 8)"],
  "questions": [
    {"id": "ext-1", "text": "2 + 2?", "options": ["3", "4", "5", "6"], "correctAnswerIndex": 1, "explanation": "", "topic": "Aritmetica"}
  ]
}`

func TestLoadAndMerge(t *testing.T) {
	extra, err := Load(fstest.MapFS{"extra.json": {Data: []byte(extraFile)}})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def, _ := Default()
	merged, err := def.Merge(extra)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	qs := merged.Lookup(quiz.SubjectMatematica, quiz.GradeTerzaMedia)
	if len(qs) != 1 || qs[0].ID != "ext-1" {
		t.Errorf("merged lookup = %+v", qs)
	}

	if _, err := merged.Merge(extra); !errors.Is(err, ErrInvalidBank) {
		t.Errorf("merging duplicate ids: err = %v, want ErrInvalidBank", err)
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{`},
		{"unknown subject", `{"subject":"Latino","grades":[],"questions":[{"id":"a","text":"t","options":["1","2","3","4"],"correctAnswerIndex":0,"explanation":"","topic":""}]}`},
		{"no questions", `{"subject":"Diritto","grades":[],"questions":[]}`},
		{"three options", `{"subject":"Diritto","grades":[],"questions":[{"id":"a","text":"t","options":["1","2","3"],"correctAnswerIndex":0,"explanation":"","topic":""}]}`},
		{"matrix missing key", `{"subject":"Diritto","grades":[],"questions":[{"id":"a","type":"matrix","text":"t","matrixRows":["r"],"matrixCols":["V","F"],"explanation":"","topic":""}]}`},
		{"matrix row count mismatch", `{"subject":"Diritto","grades":[],"questions":[{"id":"a","type":"matrix","text":"t","matrixRows":["r1","r2"],"matrixCols":["V","F"],"matrixCorrectAnswer":[0],"explanation":"","topic":""}]}`},
		{"unknown field", `{"subject":"Diritto","grades":[],"questions":[{"id":"a","text":"t","options":["1","2","3","4"],"correctAnswerIndex":0,"explanation":"","topic":"","bonus":1}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, ErrInvalidBank) {
				t.Errorf("Parse() error = %v, want ErrInvalidBank", err)
			}
		})
	}
}

func TestLoad_DuplicateIDs(t *testing.T) {
	fsys := fstest.MapFS{
		"a.json": {Data: []byte(extraFile)},
		"b.json": {Data: []byte(extraFile)},
	}
	if _, err := Load(fsys); !errors.Is(err, ErrInvalidBank) {
		t.Errorf("Load() error = %v, want ErrInvalidBank", err)
	}
}
