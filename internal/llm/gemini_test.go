package llm

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.5-flash"},
		{"gemini-pro", "gemini-3-pro-preview"},
		{"gemini-2.5-pro", "gemini-2.5-pro"}, // Pass-through
	}
	for _, tt := range tests {
		got := resolveModel(tt.input, geminiModels)
		if got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":  map[string]any{"type": "string"},
			"age":   map[string]any{"type": "integer"},
			"grade": map[string]any{"type": "string", "enum": []any{"A", "B", "C"}},
			"scores": map[string]any{
				"type":     "array",
				"items":    map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
				"minItems": 1,
				"maxItems": float64(30),
			},
		},
		"required": []any{"name", "age"},
	}

	schema := buildGeminiSchema(def)

	if schema.Type != "OBJECT" {
		t.Fatalf("expected OBJECT type, got %s", schema.Type)
	}
	if len(schema.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(schema.Properties))
	}
	if schema.Properties["name"].Type != "STRING" {
		t.Fatalf("expected STRING for name, got %s", schema.Properties["name"].Type)
	}
	if schema.Properties["age"].Type != "INTEGER" {
		t.Fatalf("expected INTEGER for age, got %s", schema.Properties["age"].Type)
	}
	if len(schema.Properties["grade"].Enum) != 3 {
		t.Fatalf("expected 3 enum values, got %d", len(schema.Properties["grade"].Enum))
	}
	if schema.Properties["scores"].Type != "ARRAY" {
		t.Fatalf("expected ARRAY for scores, got %s", schema.Properties["scores"].Type)
	}
	if schema.Properties["scores"].Items.Type != "INTEGER" {
		t.Fatalf("expected INTEGER for scores items, got %s", schema.Properties["scores"].Items.Type)
	}
	scores := schema.Properties["scores"]
	if scores.MinItems == nil || *scores.MinItems != 1 || scores.MaxItems == nil || *scores.MaxItems != 30 {
		t.Fatalf("expected item bounds 1..30, got %v..%v", scores.MinItems, scores.MaxItems)
	}
	if scores.Items.Maximum == nil || *scores.Items.Maximum != 3 {
		t.Fatalf("expected items maximum 3, got %v", scores.Items.Maximum)
	}
	if len(schema.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(schema.Required))
	}
	if got := strings.Join(schema.PropertyOrdering, ","); got != "name,age,grade,scores" {
		t.Errorf("PropertyOrdering = %s, want required fields first", got)
	}
}

func TestMapGeminiStopReason(t *testing.T) {
	tests := []struct {
		name   string
		result *genai.GenerateContentResponse
		want   string
	}{
		{"stop", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonStop}}}, "end"},
		{"max tokens", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonMaxTokens}}}, "max_tokens"},
		{"safety", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}}}, "blocked"},
		{"prompt blocked", &genai.GenerateContentResponse{PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: "SAFETY"}}, "blocked"},
		{"no candidates", &genai.GenerateContentResponse{}, "end"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapGeminiStopReason(tt.result); got != tt.want {
				t.Errorf("mapGeminiStopReason() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapGeminiError(t *testing.T) {
	var rl *ErrRateLimit
	if err := mapGeminiError(fmt.Errorf("call: %w", genai.APIError{Code: 429})); !errors.As(err, &rl) {
		t.Errorf("429: got %T, want ErrRateLimit", err)
	}
	var auth *ErrAuthentication
	if err := mapGeminiError(genai.APIError{Code: 403}); !errors.As(err, &auth) {
		t.Errorf("403: got %T, want ErrAuthentication", err)
	}
	var unavailable *ErrProviderUnavailable
	if err := mapGeminiError(errors.New("dial tcp: timeout")); !errors.As(err, &unavailable) {
		t.Errorf("network: got %T, want ErrProviderUnavailable", err)
	}
}
