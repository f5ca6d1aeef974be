// Package test provides in-memory fakes for the completion backend and the
// token codec.
package test

import (
	"context"
	"sync"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

// step is one scripted backend outcome.
type step struct {
	result *shared.QueryResult
	err    error
}

// FakeBackend implements shared.CompletionBackend for testing. Outcomes can
// be scripted sequentially (consumed in order) or keyed by prefix; the
// sequential script takes precedence.
type FakeBackend struct {
	mu          sync.Mutex
	model       string
	family      shared.ModelFamily
	script      []step
	responses   map[string]*shared.QueryResult
	errors      map[string]error
	callCount   int
	lastRequest *shared.QueryRequest
}

// NewFakeBackend creates a fake backend reporting the given model and family.
func NewFakeBackend(model string, family shared.ModelFamily) *FakeBackend {
	return &FakeBackend{
		model:     model,
		family:    family,
		responses: make(map[string]*shared.QueryResult),
		errors:    make(map[string]error),
	}
}

// EnqueueResult appends a successful outcome to the sequential script.
func (fb *FakeBackend) EnqueueResult(res *shared.QueryResult) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.script = append(fb.script, step{result: res})
}

// EnqueueError appends a failure outcome to the sequential script.
func (fb *FakeBackend) EnqueueError(err error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.script = append(fb.script, step{err: err})
}

// AddResponse adds a canned response for a specific prefix.
func (fb *FakeBackend) AddResponse(prefix string, res *shared.QueryResult) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.responses[prefix] = res
}

// AddError adds a canned error for a specific prefix.
func (fb *FakeBackend) AddError(prefix string, err error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.errors[prefix] = err
}

// CallCount returns the number of queries issued against the backend.
func (fb *FakeBackend) CallCount() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.callCount
}

// LastRequest returns the most recent query request.
func (fb *FakeBackend) LastRequest() *shared.QueryRequest {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return fb.lastRequest
}

// Model returns the configured model identifier.
func (fb *FakeBackend) Model() string { return fb.model }

// Family returns the configured response-shape family.
func (fb *FakeBackend) Family() shared.ModelFamily { return fb.family }

// Query pops the next scripted outcome, or falls back to the prefix-keyed
// responses.
func (fb *FakeBackend) Query(_ context.Context, req *shared.QueryRequest) (*shared.QueryResult, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.callCount++
	fb.lastRequest = req

	if len(fb.script) > 0 {
		next := fb.script[0]
		fb.script = fb.script[1:]
		return next.result, next.err
	}
	if err, ok := fb.errors[req.Prefix]; ok {
		return nil, err
	}
	if res, ok := fb.responses[req.Prefix]; ok {
		return res, nil
	}
	return nil, &shared.ProviderError{
		Code:    shared.ErrCodeEmptyResponse,
		Message: "no scripted outcome for prefix",
	}
}
