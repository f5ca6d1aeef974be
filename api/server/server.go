package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/your-org/openlogprobs/api/handlers"
	"github.com/your-org/openlogprobs/llm/logprobs"
	"github.com/your-org/openlogprobs/llm/providers/shared"
)

// Config holds server configuration
type Config struct {
	Address string
}

var defaultConfig = &Config{
	Address: ":8080",
}

// Server exposes the logprob query endpoints over HTTP.
type Server struct {
	handler http.Handler
	addr    string
	logger  zerolog.Logger
}

// NewServer creates a new server instance around the model facade.
func NewServer(config *Config, model *logprobs.Model, backend shared.CompletionBackend, logger zerolog.Logger) (*Server, error) {
	if config == nil {
		config = defaultConfig
	}
	if model == nil {
		return nil, fmt.Errorf("model cannot be nil")
	}
	if backend == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}

	s := &Server{
		addr:   config.Address,
		logger: logger,
	}
	s.handler = s.buildHandler(model, backend)
	return s, nil
}

// Handler returns the fully wired HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) buildHandler(model *logprobs.Model, backend shared.CompletionBackend) http.Handler {
	logprobsHandler := handlers.NewLogProbsHandler(model, backend.Model(), backend.Family())

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/logprobs/topk", logprobsHandler.TopK)
	mux.HandleFunc("/v1/logprobs/argmax", logprobsHandler.Argmax)
	mux.HandleFunc("/v1/vocab", logprobsHandler.Vocab)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status": "healthy"}`))
	})

	// CORS middleware
	corsHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	}

	// Request logging middleware
	loggingHandler := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)
			s.logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", sr.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}

	return corsHandler(loggingHandler(MetricsMiddleware(mux)))
}

// Start serves HTTP and blocks until a shutdown signal or server error.
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.handler,
	}

	serverErr := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.addr).Msg("starting logprob server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		s.logger.Error().Err(err).Msg("server failed")
		return err
	case sig := <-quit:
		s.logger.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	// Give outstanding requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info().Msg("server exited")
	return nil
}
