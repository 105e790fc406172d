package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func answerSchema() *Schema {
	return &Schema{
		Name:        "test-answer",
		Description: "One single-choice answer",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text":               map[string]any{"type": "string"},
				"correctAnswerIndex": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
				"type":               map[string]any{"type": "string", "enum": []any{"multiple_choice", "matrix"}},
			},
			"required": []any{"text", "correctAnswerIndex"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"text":"Quanto fa 2+2?","correctAnswerIndex":1,"type":"multiple_choice"}`, false},
		{"optional omitted", `{"text":"t","correctAnswerIndex":0}`, false},
		{"missing required", `{"text":"t"}`, true},
		{"wrong type", `{"text":"t","correctAnswerIndex":"uno"}`, true},
		{"out of range", `{"text":"t","correctAnswerIndex":4}`, true},
		{"bad enum", `{"text":"t","correctAnswerIndex":0,"type":"open"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(answerSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			var inv *ErrInvalidResponse
			if err != nil && !errors.As(err, &inv) {
				t.Fatalf("error type = %T, want *ErrInvalidResponse", err)
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`"free text"`)); err != nil {
		t.Fatalf("nil schema should accept anything, got %v", err)
	}
}

func TestStructuredContent_StripsFence(t *testing.T) {
	text := "```json\n{\"text\":\"t\",\"correctAnswerIndex\":2}\n```"
	got, err := structuredContent(answerSchema(), text, "end")
	if err != nil {
		t.Fatalf("structuredContent: %v", err)
	}
	if string(got) != `{"text":"t","correctAnswerIndex":2}` {
		t.Errorf("content = %s", got)
	}
}

func TestStructuredContent_Truncated(t *testing.T) {
	_, err := structuredContent(answerSchema(), `{"text":"Leggi il bra`, "max_tokens")
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("err = %v, want ErrMaxTokensExceeded", err)
	}
	if IsTransient(err) {
		t.Error("truncation should not be retried")
	}
}

func TestStructuredContent_NoSchemaKeepsText(t *testing.T) {
	got, err := structuredContent(nil, "ciao", "end")
	if err != nil || string(got) != "ciao" {
		t.Errorf("structuredContent() = %q, %v", got, err)
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct{ in, want string }{
		{`{"a":1}`, `{"a":1}`},
		{"  {\"a\":1}\n", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"```json\n{\"a\":1}```", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFence(tt.in); got != tt.want {
			t.Errorf("stripCodeFence(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limit", &ErrRateLimit{Err: errors.New("429")}, true},
		{"unavailable", &ErrProviderUnavailable{}, true},
		{"invalid response", &ErrInvalidResponse{Err: errors.New("bad")}, true},
		{"auth", &ErrAuthentication{Err: errors.New("401")}, false},
		{"status 403", statusError(403, errors.New("forbidden")), false},
		{"status 503", statusError(503, errors.New("down")), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient() = %v, want %v", got, tt.want)
			}
		})
	}
}
