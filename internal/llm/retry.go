package llm

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"
)

// RetryProvider retries transient failures with capped exponential backoff
// and ±20% jitter. A malformed question batch is retried once.
type RetryProvider struct {
	inner  Provider
	config RetryConfig
	logger *slog.Logger
	sleep  func(context.Context, time.Duration) error
}

// WithRetry wraps p. Retries are logged at debug level on slog.Default().
func WithRetry(p Provider, cfg RetryConfig) Provider {
	return &RetryProvider{inner: p, config: cfg, logger: slog.Default(), sleep: sleepContext}
}

func (r *RetryProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	attempts := max(1, r.config.MaxAttempts)
	invalidRetried := false

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		var resp *Response
		if resp, err = r.inner.Generate(ctx, req); err == nil {
			return resp, nil
		}
		if attempt == attempts-1 || !r.shouldRetry(err, &invalidRetried) {
			break
		}

		wait := r.backoff(attempt, err)
		r.logger.DebugContext(ctx, "retrying llm request",
			"purpose", PurposeFrom(ctx), "attempt", attempt+1, "wait", wait, "error", err)
		if serr := r.sleep(ctx, wait); serr != nil {
			return nil, serr
		}
	}
	return nil, err
}

func (r *RetryProvider) ModelID() string {
	return r.inner.ModelID()
}

// shouldRetry allows one extra attempt for a malformed question batch and
// any number (up to MaxAttempts) for transient transport failures.
func (r *RetryProvider) shouldRetry(err error, invalidRetried *bool) bool {
	if !IsTransient(err) {
		return false
	}
	var invResp *ErrInvalidResponse
	if errors.As(err, &invResp) {
		if *invalidRetried {
			return false
		}
		*invalidRetried = true
	}
	return true
}

// backoff is the wait before attempt+1. A provider-supplied RetryAfter
// wins over the computed delay.
func (r *RetryProvider) backoff(attempt int, err error) time.Duration {
	var rl *ErrRateLimit
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	wait := float64(r.config.InitialWait) * math.Pow(r.config.Multiplier, float64(attempt))
	wait = math.Min(wait, float64(r.config.MaxWait))
	wait += wait * 0.2 * (2*rand.Float64() - 1)
	return time.Duration(math.Max(wait, 0))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
