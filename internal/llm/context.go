package llm

import (
	"context"
	"log/slog"
)

type callKey struct{}

// call describes why a request is made. It travels in the context so the
// logging decorator can label events without widening Request.
type call struct {
	purpose string
	attrs   []slog.Attr
}

func callFrom(ctx context.Context) call {
	c, _ := ctx.Value(callKey{}).(call)
	return c
}

// WithPurpose labels requests made with ctx, e.g. "question-gen".
func WithPurpose(ctx context.Context, purpose string) context.Context {
	c := callFrom(ctx)
	c.purpose = purpose
	return context.WithValue(ctx, callKey{}, c)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if p := callFrom(ctx).purpose; p != "" {
		return p
	}
	return "unknown"
}

// WithLogAttrs adds attributes to the log lines of requests made with ctx.
func WithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	c := callFrom(ctx)
	c.attrs = append(append([]slog.Attr(nil), c.attrs...), attrs...)
	return context.WithValue(ctx, callKey{}, c)
}

func logAttrsFrom(ctx context.Context) []slog.Attr {
	return callFrom(ctx).attrs
}
