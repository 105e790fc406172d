package llm

import (
	"context"
	"log/slog"
	"testing"
)

func TestPurpose(t *testing.T) {
	if got := PurposeFrom(context.Background()); got != "unknown" {
		t.Errorf("PurposeFrom(empty) = %q, want unknown", got)
	}
	ctx := WithPurpose(context.Background(), "question-gen")
	ctx = WithPurpose(ctx, "custom-text")
	if got := PurposeFrom(ctx); got != "custom-text" {
		t.Errorf("PurposeFrom = %q, want the latest purpose", got)
	}
}

func TestLogAttrs(t *testing.T) {
	base := WithLogAttrs(context.Background(), slog.String("subject", "Matematica"))
	ctx := WithPurpose(base, "question-gen")
	child := WithLogAttrs(ctx, slog.Int("count", 10))

	if got := logAttrsFrom(child); len(got) != 2 || got[0].Key != "subject" || got[1].Key != "count" {
		t.Errorf("attrs = %v", got)
	}
	if got := logAttrsFrom(base); len(got) != 1 {
		t.Errorf("parent attrs changed: %v", got)
	}
	if PurposeFrom(child) != "question-gen" {
		t.Error("WithLogAttrs dropped the purpose")
	}
}

func TestPrompt(t *testing.T) {
	req := Prompt("sys", "genera", nil)
	if req.System != "sys" || len(req.Messages) != 1 || req.Messages[0].Role != RoleUser || req.Messages[0].Content != "genera" {
		t.Errorf("Prompt() = %+v", req)
	}
}
