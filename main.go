package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/your-org/openlogprobs/api/server"
	"github.com/your-org/openlogprobs/config"
	"github.com/your-org/openlogprobs/llm/logprobs"
	"github.com/your-org/openlogprobs/llm/providers/openai"
	"github.com/your-org/openlogprobs/llm/providers/shared"
	"github.com/your-org/openlogprobs/llm/tokenizer"
)

var (
	flagConfig  string
	flagModel   string
	flagSystem  string
	flagRetries int
	flagRPS     float64
	flagBurst   int
	flagBaseURL string
	flagAddr    string
	flagSamples int
	flagBias    []string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "openlogprobs",
		Short:         "Query a model's next-token distribution through the OpenAI API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "path to a config file (.toml/.yaml/.json)")
	pf.StringVar(&flagModel, "model", "", "model identifier (e.g. gpt-3.5-turbo-instruct, gpt-4)")
	pf.StringVar(&flagSystem, "system", "", "system prompt for chat-family models")
	pf.IntVar(&flagRetries, "retries", 0, "retry budget for transient empty responses")
	pf.Float64Var(&flagRPS, "rps", 0, "outbound requests per second (0 disables rate limiting)")
	pf.IntVar(&flagBurst, "burst", 0, "rate limiter burst capacity")
	pf.StringVar(&flagBaseURL, "base-url", "", "override the OpenAI API base URL")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the logprob query HTTP API",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "listen address (default :8080)")

	topkCmd := &cobra.Command{
		Use:   "topk <prefix>",
		Short: "Print the top-k next-token logprobs for a prefix",
		Args:  cobra.ExactArgs(1),
		RunE:  runTopK,
	}
	argmaxCmd := &cobra.Command{
		Use:   "argmax <prefix>",
		Short: "Print the most likely next token id for a prefix",
		Args:  cobra.ExactArgs(1),
		RunE:  runArgmax,
	}
	for _, c := range []*cobra.Command{topkCmd, argmaxCmd} {
		c.Flags().IntVarP(&flagSamples, "samples", "k", 1, "median-aggregate over this many repeated queries")
		c.Flags().StringArrayVar(&flagBias, "bias", nil, "logit bias entries as token=weight (repeatable)")
	}

	root.AddCommand(serveCmd, topkCmd, argmaxCmd)
	return root
}

func newLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// loadConfig merges file config (if any) under the command-line flags.
func loadConfig() (config.Config, error) {
	var cfg config.Config
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagSystem != "" {
		cfg.System = flagSystem
	}
	if flagRetries > 0 {
		cfg.MaxRetries = flagRetries
	}
	if flagRPS > 0 {
		cfg.RequestsPerSecond = flagRPS
	}
	if flagBurst > 0 {
		cfg.Burst = flagBurst
	}
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-3.5-turbo-instruct"
	}
	if flagAddr != "" {
		cfg.Addr = flagAddr
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	return cfg, nil
}

// buildModel wires codec, backend, and facade from configuration. A missing
// API key is a fatal startup error.
func buildModel(cfg config.Config, logger zerolog.Logger) (*logprobs.Model, *openai.Provider, error) {
	// Best effort; a missing .env file is fine.
	_ = godotenv.Load()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, nil, &shared.ProviderError{
			Code:    shared.ErrCodeConfig,
			Message: "OPENAI_API_KEY environment variable not set",
		}
	}

	codec, err := tokenizer.NewCodec(cfg.Model)
	if err != nil {
		return nil, nil, err
	}

	backend, err := openai.NewProvider(openai.Config{
		APIKey:            apiKey,
		BaseURL:           cfg.BaseURL,
		OrgID:             cfg.OrgID,
		Model:             cfg.Model,
		System:            cfg.System,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Burst:             cfg.Burst,
	})
	if err != nil {
		return nil, nil, err
	}

	model, err := logprobs.New(logprobs.Config{
		Backend:    backend,
		Codec:      codec,
		MaxRetries: cfg.MaxRetries,
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, err
	}
	return model, backend, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, backend, err := buildModel(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := server.NewServer(&server.Config{Address: cfg.Addr}, model, backend, logger)
	if err != nil {
		return err
	}
	return srv.Start()
}

func runTopK(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, _, err := buildModel(cfg, logger)
	if err != nil {
		return err
	}
	bias, err := parseBiasFlags(flagBias)
	if err != nil {
		return err
	}

	var result shared.LogProbMap
	if flagSamples > 1 {
		result, err = model.MedianTopK(context.Background(), flagSamples, args[0], bias)
	} else {
		result, err = model.TopK(context.Background(), args[0], bias)
	}
	if err != nil {
		return err
	}

	out := make(map[string]float64, len(result))
	for id, lp := range result {
		out[strconv.Itoa(int(id))] = lp
	}
	return printJSON(out)
}

func runArgmax(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	model, _, err := buildModel(cfg, logger)
	if err != nil {
		return err
	}
	bias, err := parseBiasFlags(flagBias)
	if err != nil {
		return err
	}

	var token shared.TokenID
	if flagSamples > 1 {
		token, err = model.MedianArgmax(context.Background(), flagSamples, args[0], bias)
	} else {
		token, err = model.Argmax(context.Background(), args[0], bias)
	}
	if err != nil {
		return err
	}
	return printJSON(map[string]int{"token": int(token)})
}

// parseBiasFlags converts repeated token=weight entries into the domain map.
// No entries means no bias applied.
func parseBiasFlags(entries []string) (shared.LogitBias, error) {
	if len(entries) == 0 {
		return nil, nil
	}
	bias := make(shared.LogitBias, len(entries))
	for _, e := range entries {
		key, val, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid bias entry %q, want token=weight", e)
		}
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("invalid bias token id %q", key)
		}
		w, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bias weight %q", val)
		}
		bias[shared.TokenID(id)] = w
	}
	return bias, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
