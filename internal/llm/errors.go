package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit reports an HTTP 429 from the provider. RetryAfter is zero
// when the provider did not say how long to wait.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry in %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the model answered with something that is not
// JSON or does not match the requested schema. Content keeps the raw text
// so it can be recorded.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid model response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers network failures, 5xx answers and an
// exhausted mock queue.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "model provider unavailable"
	}
	return fmt.Sprintf("model provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrAuthentication reports a rejected or missing API key (401/403).
type ErrAuthentication struct {
	Err error
}

func (e *ErrAuthentication) Error() string {
	return fmt.Sprintf("model provider rejected the API key: %v", e.Err)
}

func (e *ErrAuthentication) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded means the answer was cut off at MaxTokens. A
// truncated question batch is never valid JSON, so it is not retried.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "model response truncated at the token limit"
}

// IsTransient reports whether err is worth another attempt: rate limits,
// unavailable providers and unclassified transport errors. Cancellation,
// bad keys and truncation are permanent.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var (
		auth   *ErrAuthentication
		maxTok *ErrMaxTokensExceeded
	)
	if errors.As(err, &auth) || errors.As(err, &maxTok) {
		return false
	}
	return true
}

// statusError maps an HTTP status code from a provider SDK to the typed
// errors above.
func statusError(status int, err error) error {
	switch {
	case status == 429:
		return &ErrRateLimit{Err: err}
	case status == 401 || status == 403:
		return &ErrAuthentication{Err: err}
	default:
		return &ErrProviderUnavailable{Err: err}
	}
}
