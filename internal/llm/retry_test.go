package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fastRetry() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     5 * time.Millisecond,
		Multiplier:  2,
	}
}

var okBatch = MockResponse{Content: json.RawMessage(`{"questions":[]}`)}

func TestRetry_Attempts(t *testing.T) {
	down := MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("502")}}
	invalid := MockResponse{Err: &ErrInvalidResponse{Err: errors.New("missing options")}}

	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   bool
		wantCalls int
	}{
		{"first attempt", []MockResponse{okBatch}, false, 1},
		{"transient then ok", []MockResponse{down, okBatch}, false, 2},
		{"gives up after max attempts", []MockResponse{down, down, down, okBatch}, true, 3},
		{"invalid batch retried once", []MockResponse{invalid, okBatch}, false, 2},
		{"invalid batch twice", []MockResponse{invalid, invalid, okBatch}, true, 2},
		{"truncation not retried", []MockResponse{{Err: &ErrMaxTokensExceeded{}}, okBatch}, true, 1},
		{"bad key not retried", []MockResponse{{Err: &ErrAuthentication{Err: errors.New("401")}}, okBatch}, true, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			_, err := WithRetry(mock, fastRetry()).Generate(context.Background(), Request{})
			if (err != nil) != tt.wantErr {
				t.Fatalf("Generate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if mock.CallCount() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", mock.CallCount(), tt.wantCalls)
			}
		})
	}
}

func TestRetry_HonoursRetryAfter(t *testing.T) {
	r := &RetryProvider{config: fastRetry()}
	got := r.backoff(0, &ErrRateLimit{RetryAfter: 2 * time.Second})
	if got != 2*time.Second {
		t.Errorf("backoff = %v, want the provider's RetryAfter", got)
	}
}

func TestRetry_BackoffCapped(t *testing.T) {
	r := &RetryProvider{config: fastRetry()}
	for attempt := range 10 {
		if got := r.backoff(attempt, errors.New("x")); got > 6*time.Millisecond {
			t.Fatalf("attempt %d: backoff %v exceeds MaxWait plus jitter", attempt, got)
		}
	}
}

func TestRetry_StopsOnCancel(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: time.Hour, Err: errors.New("429")}},
		okBatch,
	)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := WithRetry(mock, fastRetry()).Generate(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if mock.CallCount() != 1 {
		t.Errorf("calls = %d, want 1", mock.CallCount())
	}
}

func TestRetry_WaitsBetweenAttempts(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 3 * time.Second, Err: errors.New("429")}},
		MockResponse{Err: &ErrProviderUnavailable{}},
		okBatch,
	)
	var waits []time.Duration
	r := WithRetry(mock, fastRetry()).(*RetryProvider)
	r.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	if _, err := r.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(waits) != 2 || waits[0] != 3*time.Second || waits[1] > 6*time.Millisecond {
		t.Errorf("waits = %v, want RetryAfter then a short backoff", waits)
	}
}
