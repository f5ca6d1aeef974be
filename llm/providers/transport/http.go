package transport

import (
	"crypto/tls"
	"net/http"
	"time"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

// NewHTTPClient builds a tuned *http.Client for backend requests. The openai
// client library composes requests and auth headers itself, so this layer only
// owns connection pooling, TLS floor, and the overall request timeout.
func NewHTTPClient(opts shared.ClientOptions) *http.Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxIdleConns == 0 {
		opts.MaxIdleConns = 10
	}
	if opts.IdleConnTTL == 0 {
		opts.IdleConnTTL = 90 * time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        opts.MaxIdleConns,
		MaxIdleConnsPerHost: opts.MaxIdleConns,
		IdleConnTimeout:     opts.IdleConnTTL,
		TLSClientConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	return &http.Client{
		Transport: transport,
		Timeout:   opts.Timeout,
	}
}
