package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMockProvider_Queue(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"questions":[1]}`), Usage: Usage{InputTokens: 10, OutputTokens: 5}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "sys"})
	if err != nil {
		t.Fatalf("first Generate: %v", err)
	}
	if string(resp.Content) != `{"questions":[1]}` || resp.Usage.InputTokens != 10 || resp.StopReason != "end" {
		t.Errorf("first response = %+v", resp)
	}

	var rl *ErrRateLimit
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &rl) {
		t.Errorf("second Generate err = %v, want ErrRateLimit", err)
	}

	var unavailable *ErrProviderUnavailable
	if _, err := mock.Generate(context.Background(), Request{}); !errors.As(err, &unavailable) {
		t.Errorf("empty queue err = %v, want ErrProviderUnavailable", err)
	}

	if mock.CallCount() != 3 || mock.Calls[0].System != "sys" {
		t.Errorf("calls = %d, first system %q", mock.CallCount(), mock.Calls[0].System)
	}
	if mock.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", mock.Pending())
	}
}

func TestMockProvider_Fallback(t *testing.T) {
	mock := NewMockProvider()
	mock.Fallback = func(req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`"` + req.Messages[0].Content + `"`)}
	}
	mock.AddResponse(MockResponse{Content: json.RawMessage(`"queued"`)})

	for _, want := range []string{`"queued"`, `"echo"`} {
		resp, err := mock.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "echo"}}})
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if string(resp.Content) != want {
			t.Errorf("content = %s, want %s", resp.Content, want)
		}
	}
}

func TestMockProvider_CancelledContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.Pending() != 1 {
		t.Error("a cancelled call should not consume a response")
	}
}

func TestProviderName(t *testing.T) {
	if got := providerName(NewMockProvider()); got != "mock" {
		t.Errorf("providerName(mock) = %q", got)
	}
	if got := providerName(slowProvider{}); got != "slow" {
		t.Errorf("providerName without Name() = %q, want the model id", got)
	}
}
