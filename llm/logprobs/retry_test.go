package logprobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

func emptyResponseErr() error {
	return &shared.ProviderError{
		Code:    shared.ErrCodeEmptyResponse,
		Message: "zero choices",
	}
}

// recordingRetrier returns a retrier whose sleeps are recorded instead of
// blocking.
func recordingRetrier(slept *[]time.Duration) *Retrier {
	r := NewRetrier(zerolog.Nop())
	r.Unit = time.Millisecond
	r.Sleep = func(_ context.Context, d time.Duration) error {
		*slept = append(*slept, d)
		return nil
	}
	return r
}

func TestRetrierSucceedsAfterTransientEmptyResponses(t *testing.T) {
	var slept []time.Duration
	r := recordingRetrier(&slept)

	want := shared.LogProbMap{7: -0.5}
	calls := 0
	out, err := r.Do(context.Background(), func(ctx context.Context) (shared.LogProbMap, error) {
		calls++
		if calls <= 2 {
			return nil, emptyResponseErr()
		}
		return want, nil
	})

	require.NoError(t, err)
	assert.Equal(t, want, out)
	assert.Equal(t, 3, calls)
	// Linear backoff: 10 units, then 20 units.
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, slept)
}

func TestRetrierExhaustsBudget(t *testing.T) {
	var slept []time.Duration
	r := recordingRetrier(&slept)

	calls := 0
	out, err := r.Do(context.Background(), func(ctx context.Context) (shared.LogProbMap, error) {
		calls++
		return nil, emptyResponseErr()
	})

	assert.Nil(t, out)
	require.Error(t, err)
	assert.True(t, shared.HasCode(err, shared.ErrCodeRetriesExhausted))
	assert.Equal(t, DefaultMaxAttempts, calls)
	// No sleep after the final attempt.
	assert.Len(t, slept, DefaultMaxAttempts-1)
}

func TestRetrierPropagatesOtherErrors(t *testing.T) {
	var slept []time.Duration
	r := recordingRetrier(&slept)

	authErr := errors.New("401 unauthorized")
	calls := 0
	_, err := r.Do(context.Background(), func(ctx context.Context) (shared.LogProbMap, error) {
		calls++
		return nil, authErr
	})

	assert.ErrorIs(t, err, authErr)
	assert.Equal(t, 1, calls)
	assert.Empty(t, slept)
}

func TestRetrierStopsOnCancelledContext(t *testing.T) {
	r := NewRetrier(zerolog.Nop())
	r.Unit = time.Hour // a real sleep would hang the test

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Do(ctx, func(ctx context.Context) (shared.LogProbMap, error) {
		return nil, emptyResponseErr()
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRetrierDefaultsZeroBudget(t *testing.T) {
	var slept []time.Duration
	r := recordingRetrier(&slept)
	r.MaxAttempts = 0

	calls := 0
	_, err := r.Do(context.Background(), func(ctx context.Context) (shared.LogProbMap, error) {
		calls++
		return nil, emptyResponseErr()
	})

	assert.True(t, shared.HasCode(err, shared.ErrCodeRetriesExhausted))
	assert.Equal(t, DefaultMaxAttempts, calls)
}
