package questiongen

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/VitoPalumboPodcast/Invalsi/internal/llm"
	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

func choiceJSON(id, text string) map[string]any {
	return map[string]any{
		"id":                  id,
		"type":                "multiple_choice",
		"topic":               "Numeri",
		"contextText":         "",
		"audioScript":         "",
		"text":                text,
		"options":             []string{"1", "2", "3", "4"},
		"correctAnswerIndex":  2,
		"matrixRows":          []string{},
		"matrixCols":          []string{},
		"matrixCorrectAnswer": []int{},
		"explanation":         "Si conta.",
	}
}

func matrixJSON(id string) map[string]any {
	return map[string]any{
		"id":                  id,
		"type":                "matrix",
		"topic":               "Relazioni e funzioni",
		"contextText":         "",
		"audioScript":         "",
		"text":                "Vero o falso?",
		"options":             []string{},
		"correctAnswerIndex":  0,
		"matrixRows":          []string{"2 è pari", "3 è pari"},
		"matrixCols":          []string{"Vero", "Falso"},
		"matrixCorrectAnswer": []int{0, 1},
		"explanation":         "2 è divisibile per 2, 3 no.",
	}
}

func batch(t *testing.T, qs ...map[string]any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(map[string]any{"questions": qs})
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func testConfig() quiz.Config {
	return quiz.Config{
		Subject:       quiz.SubjectMatematica,
		Grade:         quiz.GradeTerzaMedia,
		QuestionCount: 2,
		Mode:          quiz.ModeExam,
	}
}

func newTestGenerator(p llm.Provider) *LLMGenerator {
	g := New(p, DefaultConfig())
	g.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return g
}

func TestGenerateTest(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: batch(t, choiceJSON("", "Quanto fa 1+2?"), matrixJSON("m1")),
	})
	g := newTestGenerator(mock)

	qs, err := g.GenerateTest(context.Background(), testConfig(), 2, []string{"Quanto fa 2+2?"})
	if err != nil {
		t.Fatalf("GenerateTest: %v", err)
	}
	if len(qs) != 2 {
		t.Fatalf("got %d questions, want 2", len(qs))
	}
	if qs[0].ID != "q-0-1700000000000" {
		t.Errorf("missing id filled as %q", qs[0].ID)
	}
	if qs[0].Kind != quiz.KindSingleChoice || qs[0].Choice.CorrectIndex != 2 || qs[0].Matrix != nil {
		t.Errorf("choice question = %+v", qs[0])
	}
	if qs[1].ID != "m1" || qs[1].Kind != quiz.KindMatrix || qs[1].Choice != nil {
		t.Errorf("matrix question = %+v", qs[1])
	}

	req := mock.Calls[0]
	if req.Temperature != 0.3 {
		t.Errorf("Temperature = %v, want 0.3", req.Temperature)
	}
	if req.Schema != QuestionsSchema {
		t.Error("request should carry QuestionsSchema")
	}
	msg := req.Messages[0].Content
	if !strings.Contains(msg, "Quanto fa 2+2?") || !strings.Contains(msg, "Numero di domande da generare: 2") {
		t.Errorf("user message missing prior questions or count:\n%s", msg)
	}
}

func TestGenerateTest_TrimsToCount(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: batch(t, choiceJSON("a", "Uno?"), choiceJSON("b", "Due?"), choiceJSON("c", "Tre?")),
	})
	qs, err := newTestGenerator(mock).GenerateTest(context.Background(), testConfig(), 2, nil)
	if err != nil {
		t.Fatalf("GenerateTest: %v", err)
	}
	if len(qs) != 2 || qs[1].ID != "b" {
		t.Errorf("got %+v", qs)
	}
}

func TestGenerateTest_Errors(t *testing.T) {
	bad := choiceJSON("x", "Senza spiegazione?")
	bad["explanation"] = ""

	tests := []struct {
		name    string
		resp    llm.MockResponse
		wantErr func(error) bool
	}{
		{
			name: "provider failure",
			resp: llm.MockResponse{Err: &llm.ErrProviderUnavailable{}},
			wantErr: func(err error) bool {
				var e *llm.ErrProviderUnavailable
				return errors.As(err, &e)
			},
		},
		{
			name: "not json",
			resp: llm.MockResponse{Content: json.RawMessage(`"hello"`)},
			wantErr: func(err error) bool {
				var e *llm.ErrInvalidResponse
				return errors.As(err, &e)
			},
		},
		{
			name: "empty batch",
			resp: llm.MockResponse{Content: json.RawMessage(`{"questions":[]}`)},
			wantErr: func(err error) bool {
				return errors.Is(err, errEmptyBatch)
			},
		},
		{
			name: "validation failure",
			resp: llm.MockResponse{Content: batch(t, choiceJSON("ok", "Bene?"), bad)},
			wantErr: func(err error) bool {
				var e *ValidationError
				return errors.As(err, &e) && e.Question == 1 && e.Validator == "structural"
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGenerator(llm.NewMockProvider(tt.resp))
			qs, err := g.GenerateTest(context.Background(), testConfig(), 2, nil)
			if err == nil || !tt.wantErr(err) {
				t.Fatalf("err = %v", err)
			}
			if qs != nil {
				t.Errorf("questions returned with error: %+v", qs)
			}
		})
	}
}

func TestGenerateFromText(t *testing.T) {
	withContext := choiceJSON("model-id", "Di cosa parla il testo?")
	withContext["contextText"] = "riassunto inventato"
	mock := llm.NewMockProvider(llm.MockResponse{Content: batch(t, withContext, matrixJSON(""))})
	g := newTestGenerator(mock)

	text := "Il lupo e l'agnello bevevano allo stesso ruscello."
	qs, err := g.GenerateFromText(context.Background(), text, testConfig(), 5)
	if err != nil {
		t.Fatalf("GenerateFromText: %v", err)
	}
	for i, q := range qs {
		want := []string{"custom-0-1700000000000", "custom-1-1700000000000"}[i]
		if q.ID != want {
			t.Errorf("qs[%d].ID = %q, want %q", i, q.ID, want)
		}
		if q.ContextText != text {
			t.Errorf("qs[%d].ContextText = %q", i, q.ContextText)
		}
	}
	req := mock.Calls[0]
	if req.Temperature != 0.4 {
		t.Errorf("Temperature = %v, want 0.4", req.Temperature)
	}
	if !strings.Contains(req.Messages[0].Content, text) {
		t.Error("user message should include the text")
	}
}

func TestStructuralValidator(t *testing.T) {
	valid := func() quiz.Question {
		q := quiz.NewSingleChoice("a", "Domanda?", []string{"1", "2", "3", "4"}, 0)
		q.Topic = "Numeri"
		q.Explanation = "Perché sì."
		return q
	}
	tests := []struct {
		name   string
		mutate func(*quiz.Question)
		ok     bool
	}{
		{"valid", func(*quiz.Question) {}, true},
		{"blank text", func(q *quiz.Question) { q.Text = "  " }, false},
		{"no explanation", func(q *quiz.Question) { q.Explanation = "" }, false},
		{"no topic", func(q *quiz.Question) { q.Topic = "" }, false},
		{"three options", func(q *quiz.Question) { q.Choice.Options = q.Choice.Options[:3] }, false},
		{"repeated option", func(q *quiz.Question) { q.Choice.Options[1] = "1" }, false},
		{"index out of range", func(q *quiz.Question) { q.Choice.CorrectIndex = 4 }, false},
		{"too long", func(q *quiz.Question) { q.Text = strings.Repeat("x", maxTextLen+1) }, false},
	}
	v := &StructuralValidator{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := valid()
			tt.mutate(&q)
			err := v.Validate(&q)
			if (err == nil) != tt.ok {
				t.Errorf("Validate() = %v, ok %v", err, tt.ok)
			}
		})
	}
}

func TestBuildPrior(t *testing.T) {
	if got := buildPrior(nil, 5); got != "Nessuna" {
		t.Errorf("buildPrior(nil) = %q", got)
	}
	got := buildPrior([]string{"a", "b", "c"}, 2)
	if got != "1. b\n2. c" {
		t.Errorf("buildPrior = %q", got)
	}
}
