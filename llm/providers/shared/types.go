package shared

import (
	"context"
	"time"
)

// TokenID identifies a vocabulary entry. Valid values are in [0, vocab_size).
type TokenID int

// LogProbMap maps token ids to natural-log probabilities (always <= 0).
// Keys are the subset of the vocabulary the provider chose to reveal,
// bounded by the provider's top-k limit.
type LogProbMap map[TokenID]float64

// LogitBias maps token ids to additive score adjustments. A nil map means
// "no bias applied", not a bias of zero. Callers pass a fresh map per call;
// there is no shared default instance.
type LogitBias map[TokenID]float64

// ModelFamily selects which of the two OpenAI response shapes a model uses.
// The family is assigned once at construction via ClassifyModel; an
// unrecognized model id never reaches the backend.
type ModelFamily int

const (
	// FamilyCompletion covers legacy completion-style models whose responses
	// carry a text->logprob object per output position.
	FamilyCompletion ModelFamily = iota
	// FamilyChat covers chat-style models whose responses carry a sequence of
	// (token, logprob) pairs nested under the chosen output position.
	FamilyChat
)

func (f ModelFamily) String() string {
	switch f {
	case FamilyCompletion:
		return "completion"
	case FamilyChat:
		return "chat"
	default:
		return "unknown"
	}
}

// TopLogProbs is the fixed number of alternative tokens requested per query,
// the maximum the provider supports.
const TopLogProbs = 5

// QueryKind distinguishes the two request profiles the backend issues.
type QueryKind int

const (
	// QueryArgmax requests one deterministic output token (temperature 0).
	QueryArgmax QueryKind = iota
	// QueryTopK requests the provider's top alternatives with logprobs at
	// sampling temperature.
	QueryTopK
)

func (k QueryKind) String() string {
	if k == QueryArgmax {
		return "argmax"
	}
	return "topk"
}

// QueryRequest is a single next-token query against the backend.
type QueryRequest struct {
	Kind   QueryKind
	Prefix string
	// Bias is optional; nil means the request carries no logit_bias field.
	Bias LogitBias
}

// TokenLogProb is one (surface text, logprob) entry extracted from a raw
// provider response, before re-encoding through the token codec.
type TokenLogProb struct {
	Text    string
	LogProb float64
}

// QueryResult is the backend's normalized view of one response.
type QueryResult struct {
	// Text is the sampled completion text of the first choice.
	Text string
	// TopLogProbs carries the revealed alternatives for the first output
	// position. Empty for argmax queries.
	TopLogProbs []TokenLogProb
}

// CompletionBackend issues one completion request per call and extracts the
// raw response into a QueryResult. A response with zero choices surfaces as
// ErrCodeEmptyResponse so the retry layer can recognize it.
type CompletionBackend interface {
	Query(ctx context.Context, req *QueryRequest) (*QueryResult, error)
	Model() string
	Family() ModelFamily
}

// ErrorCode defines normalized error codes for backend failures.
type ErrorCode string

const (
	// ErrCodeEmptyResponse means the provider returned zero choices, e.g.
	// due to content filtering. The only retryable condition.
	ErrCodeEmptyResponse ErrorCode = "empty_response"
	// ErrCodeRetriesExhausted means the retry budget ran out without a
	// successful response.
	ErrCodeRetriesExhausted ErrorCode = "retries_exhausted"
	// ErrCodeUnsupportedModel means the model id belongs to neither known
	// response-shape family.
	ErrCodeUnsupportedModel ErrorCode = "unsupported_model"
	// ErrCodeConfig means missing credentials or malformed inputs at
	// construction or call time.
	ErrCodeConfig  ErrorCode = "config"
	ErrCodeUnknown ErrorCode = "unknown"
)

// ProviderError is a normalized error from the backend or the query pipeline.
type ProviderError struct {
	Code    ErrorCode
	Message string
	// Optional: original HTTP status and provider payload.
	HTTPStatus int
	Raw        any
}

func (e *ProviderError) Error() string { return e.Message }

// ClientOptions defines HTTP client configuration for the backend transport.
type ClientOptions struct {
	BaseURL      string
	APIKey       string
	OrgID        string
	Timeout      time.Duration
	MaxIdleConns int
	IdleConnTTL  time.Duration
	// RequestsPerSecond gates outbound calls; zero disables rate limiting.
	RequestsPerSecond float64
	Burst             int
}
