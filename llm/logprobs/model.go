package logprobs

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/your-org/openlogprobs/llm/providers/shared"
	"github.com/your-org/openlogprobs/llm/tokenizer"
)

// Model is the public facade over a completion backend and a token codec.
// It holds only read-only configuration; every query is independent and no
// state persists across calls.
type Model struct {
	backend shared.CompletionBackend
	codec   tokenizer.Codec
	retrier *Retrier
}

// Config assembles a Model.
type Config struct {
	Backend shared.CompletionBackend
	Codec   tokenizer.Codec
	// MaxRetries bounds empty-response retries for topk queries.
	// Zero means DefaultMaxAttempts.
	MaxRetries int
	Logger     zerolog.Logger
}

// New creates a Model facade.
func New(cfg Config) (*Model, error) {
	if cfg.Backend == nil {
		return nil, &shared.ProviderError{
			Code:    shared.ErrCodeConfig,
			Message: "backend cannot be nil",
		}
	}
	if cfg.Codec == nil {
		return nil, &shared.ProviderError{
			Code:    shared.ErrCodeConfig,
			Message: "codec cannot be nil",
		}
	}
	retrier := NewRetrier(cfg.Logger)
	if cfg.MaxRetries > 0 {
		retrier.MaxAttempts = cfg.MaxRetries
	}
	return &Model{
		backend: cfg.Backend,
		codec:   cfg.Codec,
		retrier: retrier,
	}, nil
}

// VocabSize returns the vocabulary size of the model's encoding.
func (m *Model) VocabSize() int { return m.codec.VocabSize() }

// Argmax issues one deterministic request (temperature 0, one output token)
// and returns the first token id obtained by re-encoding the decoded output
// text. If the decoded text re-tokenizes into multiple tokens, only the
// first is returned, which may differ from the token the provider sampled.
// Argmax bypasses the retry layer; an empty response surfaces directly.
func (m *Model) Argmax(ctx context.Context, prefix string, bias shared.LogitBias) (shared.TokenID, error) {
	res, err := m.backend.Query(ctx, &shared.QueryRequest{
		Kind:   shared.QueryArgmax,
		Prefix: prefix,
		Bias:   bias,
	})
	if err != nil {
		return 0, err
	}
	ids := m.codec.Encode(res.Text)
	if len(ids) == 0 {
		return 0, &shared.ProviderError{
			Code:    shared.ErrCodeEmptyResponse,
			Message: "completion text re-encoded to zero tokens",
		}
	}
	return ids[0], nil
}

// TopK issues one sampling-temperature request for the provider's maximum
// number of alternative tokens and returns the normalized logprob map.
// Transient empty responses are retried with linear backoff.
func (m *Model) TopK(ctx context.Context, prefix string, bias shared.LogitBias) (shared.LogProbMap, error) {
	return m.retrier.Do(ctx, func(ctx context.Context) (shared.LogProbMap, error) {
		res, err := m.backend.Query(ctx, &shared.QueryRequest{
			Kind:   shared.QueryTopK,
			Prefix: prefix,
			Bias:   bias,
		})
		if err != nil {
			return nil, err
		}
		return Normalize(m.codec, res.TopLogProbs), nil
	})
}

// MedianTopK runs the same topk query k times sequentially and reduces the
// results by per-key median over the intersection of key sets, suppressing
// provider-side sampling noise. MedianTopK(ctx, 1, ...) is equivalent to
// TopK.
func (m *Model) MedianTopK(ctx context.Context, k int, prefix string, bias shared.LogitBias) (shared.LogProbMap, error) {
	if k < 1 {
		return nil, &shared.ProviderError{
			Code:    shared.ErrCodeConfig,
			Message: fmt.Sprintf("repeat count must be positive, got %d", k),
		}
	}
	results := make([]shared.LogProbMap, 0, k)
	for i := 0; i < k; i++ {
		r, err := m.TopK(ctx, prefix, bias)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return reduceMedian(results), nil
}

// MedianArgmax runs the same argmax query k times sequentially and returns
// the nearest-rank lower median of the observed token ids, which is always
// one of the observed ids even for an even k.
func (m *Model) MedianArgmax(ctx context.Context, k int, prefix string, bias shared.LogitBias) (shared.TokenID, error) {
	if k < 1 {
		return 0, &shared.ProviderError{
			Code:    shared.ErrCodeConfig,
			Message: fmt.Sprintf("repeat count must be positive, got %d", k),
		}
	}
	ids := make([]shared.TokenID, 0, k)
	for i := 0; i < k; i++ {
		id, err := m.Argmax(ctx, prefix, bias)
		if err != nil {
			return 0, err
		}
		ids = append(ids, id)
	}
	return medianTokenID(ids), nil
}
