// Package openai implements the completion backend against the OpenAI API,
// covering both the legacy completion endpoint and the chat endpoint.
package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/your-org/openlogprobs/llm/providers/shared"
	"github.com/your-org/openlogprobs/llm/providers/transport"
)

// Config holds OpenAI backend configuration.
type Config struct {
	APIKey  string
	BaseURL string
	OrgID   string
	// Model determines the response-shape family and decoding defaults.
	Model string
	// System is the system prompt used for chat-family requests.
	System string
	// RequestsPerSecond gates outbound calls; zero disables rate limiting.
	RequestsPerSecond float64
	Burst             int
}

// DefaultSystemPrompt is used for chat-family requests when no system prompt
// is configured.
const DefaultSystemPrompt = "You are a helpful assistant."

// Provider implements shared.CompletionBackend for the OpenAI API.
type Provider struct {
	client  *openai.Client
	model   string
	family  shared.ModelFamily
	system  string
	limiter *transport.Limiter
}

// NewProvider creates an OpenAI backend. The model is classified into its
// response-shape family here; unknown identifiers fail before any network
// call is possible.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, &shared.ProviderError{
			Code:    shared.ErrCodeConfig,
			Message: "missing OpenAI API key",
		}
	}
	family, err := shared.ClassifyModel(cfg.Model)
	if err != nil {
		return nil, err
	}

	openaiConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		openaiConfig.BaseURL = cfg.BaseURL
	}
	if cfg.OrgID != "" {
		openaiConfig.OrgID = cfg.OrgID
	}
	openaiConfig.HTTPClient = transport.NewHTTPClient(shared.ClientOptions{
		BaseURL: cfg.BaseURL,
		APIKey:  cfg.APIKey,
		OrgID:   cfg.OrgID,
	})

	system := cfg.System
	if system == "" {
		system = DefaultSystemPrompt
	}

	p := &Provider{
		client: openai.NewClientWithConfig(openaiConfig),
		model:  cfg.Model,
		family: family,
		system: system,
	}
	if cfg.RequestsPerSecond > 0 {
		p.limiter = transport.NewLimiter(cfg.RequestsPerSecond, cfg.Burst)
	}
	return p, nil
}

// Model returns the configured model identifier.
func (p *Provider) Model() string { return p.model }

// Family returns the response-shape family assigned at construction.
func (p *Provider) Family() shared.ModelFamily { return p.family }

// Query issues one completion request and extracts the raw response.
func (p *Provider) Query(ctx context.Context, req *shared.QueryRequest) (*shared.QueryResult, error) {
	if err := shared.ValidateQueryRequest(req); err != nil {
		return nil, err
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	switch p.family {
	case shared.FamilyCompletion:
		return p.queryCompletion(ctx, req)
	case shared.FamilyChat:
		return p.queryChat(ctx, req)
	default:
		return nil, &shared.ProviderError{
			Code:    shared.ErrCodeUnsupportedModel,
			Message: fmt.Sprintf("unclassified model %q", p.model),
		}
	}
}

func (p *Provider) queryCompletion(ctx context.Context, req *shared.QueryRequest) (*shared.QueryResult, error) {
	resp, err := p.client.CreateCompletion(ctx, ToCompletionRequest(p.model, req))
	if err != nil {
		return nil, shared.NormalizeError(err)
	}
	return FromCompletionResponse(resp, req.Kind)
}

func (p *Provider) queryChat(ctx context.Context, req *shared.QueryRequest) (*shared.QueryResult, error) {
	resp, err := p.client.CreateChatCompletion(ctx, ToChatRequest(p.model, p.system, req))
	if err != nil {
		return nil, shared.NormalizeError(err)
	}
	return FromChatResponse(resp, req.Kind)
}
