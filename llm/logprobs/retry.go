package logprobs

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

// DefaultMaxAttempts bounds the retry budget for transient empty responses.
const DefaultMaxAttempts = 5

// DefaultRetryUnit is the base backoff unit. Attempt i (zero-indexed) sleeps
// 10*(i+1) units before the next try: 10, 20, 30, ...
const DefaultRetryUnit = time.Second

// QueryFunc is one composed backend call plus normalization.
type QueryFunc func(ctx context.Context) (shared.LogProbMap, error)

// Retrier executes a query with resilience to transient empty-response
// failures. Every other failure kind propagates immediately without retry.
type Retrier struct {
	MaxAttempts int
	Unit        time.Duration
	// Sleep blocks between attempts; injectable for tests. If nil, a
	// context-aware timer sleep is used.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger zerolog.Logger
}

// NewRetrier creates a retrier with the default budget and backoff unit.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		MaxAttempts: DefaultMaxAttempts,
		Unit:        DefaultRetryUnit,
		Logger:      logger,
	}
}

// Do runs fn until it succeeds, a non-retryable error occurs, or the budget
// is exhausted. Exhaustion surfaces as an explicit retries_exhausted error,
// never an absent value.
func (r *Retrier) Do(ctx context.Context, fn QueryFunc) (shared.LogProbMap, error) {
	maxAttempts := r.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, nil
		}
		if !shared.HasCode(err, shared.ErrCodeEmptyResponse) {
			return nil, err
		}

		// No point sleeping after the final attempt.
		if attempt == maxAttempts-1 {
			break
		}
		delay := time.Duration(10*(attempt+1)) * r.unit()
		r.Logger.Warn().
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("backend returned an empty response; backing off")
		if err := r.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}

	return nil, &shared.ProviderError{
		Code:    shared.ErrCodeRetriesExhausted,
		Message: fmt.Sprintf("no usable response after %d attempts", maxAttempts),
	}
}

func (r *Retrier) unit() time.Duration {
	if r.Unit <= 0 {
		return DefaultRetryUnit
	}
	return r.Unit
}

func (r *Retrier) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
