package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/your-org/openlogprobs/api"
	"github.com/your-org/openlogprobs/llm/logprobs"
	"github.com/your-org/openlogprobs/llm/providers/shared"
)

var queriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "openlogprobs",
		Subsystem: "query",
		Name:      "requests_total",
		Help:      "Logprob queries by kind and outcome",
	},
	[]string{"kind", "outcome"},
)

func init() {
	prometheus.MustRegister(queriesTotal)
}

// LogProbsHandler serves next-token distribution queries over the model
// facade.
type LogProbsHandler struct {
	Model   *logprobs.Model
	ModelID string
	Family  shared.ModelFamily
}

// NewLogProbsHandler creates a handler backed by the model facade.
func NewLogProbsHandler(model *logprobs.Model, modelID string, family shared.ModelFamily) *LogProbsHandler {
	return &LogProbsHandler{Model: model, ModelID: modelID, Family: family}
}

//	curl -X POST http://localhost:8080/v1/logprobs/topk \
//	  -H "Content-Type: application/json" \
//	  -d '{"prefix": "The capital of France is", "samples": 3}'
func (h *LogProbsHandler) TopK(w http.ResponseWriter, r *http.Request) {
	req, bias, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}

	k := samples(req)
	var (
		result shared.LogProbMap
		err    error
	)
	if k > 1 {
		result, err = h.Model.MedianTopK(r.Context(), k, req.Prefix, bias)
	} else {
		result, err = h.Model.TopK(r.Context(), req.Prefix, bias)
	}
	if err != nil {
		queriesTotal.WithLabelValues("topk", outcome(err)).Inc()
		h.writeProviderError(w, err)
		return
	}
	queriesTotal.WithLabelValues("topk", "ok").Inc()

	out := api.TopKResponse{
		Model:    h.ModelID,
		Family:   h.Family.String(),
		Samples:  k,
		LogProbs: make(map[string]float64, len(result)),
	}
	for id, lp := range result {
		out.LogProbs[strconv.Itoa(int(id))] = lp
	}
	writeJSON(w, http.StatusOK, out)
}

//	curl -X POST http://localhost:8080/v1/logprobs/argmax \
//	  -H "Content-Type: application/json" \
//	  -d '{"prefix": "The capital of France is"}'
func (h *LogProbsHandler) Argmax(w http.ResponseWriter, r *http.Request) {
	req, bias, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}

	k := samples(req)
	var (
		token shared.TokenID
		err   error
	)
	if k > 1 {
		token, err = h.Model.MedianArgmax(r.Context(), k, req.Prefix, bias)
	} else {
		token, err = h.Model.Argmax(r.Context(), req.Prefix, bias)
	}
	if err != nil {
		queriesTotal.WithLabelValues("argmax", outcome(err)).Inc()
		h.writeProviderError(w, err)
		return
	}
	queriesTotal.WithLabelValues("argmax", "ok").Inc()

	writeJSON(w, http.StatusOK, api.ArgmaxResponse{
		Model:   h.ModelID,
		Family:  h.Family.String(),
		Samples: k,
		Token:   int(token),
	})
}

// Vocab reports the vocabulary size of the active encoding.
func (h *LogProbsHandler) Vocab(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed", "Use GET method")
		return
	}
	writeJSON(w, http.StatusOK, api.VocabResponse{
		Model:     h.ModelID,
		VocabSize: h.Model.VocabSize(),
	})
}

// decodeQuery parses and validates the shared request body of the query
// endpoints.
func (h *LogProbsHandler) decodeQuery(w http.ResponseWriter, r *http.Request) (*api.QueryRequest, shared.LogitBias, bool) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed", "Use POST method")
		return nil, nil, false
	}

	var req api.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON request", err.Error())
		return nil, nil, false
	}
	if req.Prefix == "" {
		writeJSONError(w, http.StatusBadRequest, "Invalid request", "prefix cannot be empty")
		return nil, nil, false
	}
	if req.Samples < 0 {
		writeJSONError(w, http.StatusBadRequest, "Invalid request", "samples cannot be negative")
		return nil, nil, false
	}

	bias, err := parseBias(req.LogitBias)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid logit bias", err.Error())
		return nil, nil, false
	}
	return &req, bias, true
}

// parseBias converts string-keyed bias entries into the domain map. A nil
// input stays nil so "no bias" is preserved end to end.
func parseBias(raw map[string]float64) (shared.LogitBias, error) {
	if raw == nil {
		return nil, nil
	}
	bias := make(shared.LogitBias, len(raw))
	for key, v := range raw {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 {
			return nil, &shared.ProviderError{
				Code:    shared.ErrCodeConfig,
				Message: "logit bias keys must be non-negative token ids: " + key,
			}
		}
		bias[shared.TokenID(id)] = v
	}
	return bias, nil
}

func samples(req *api.QueryRequest) int {
	if req.Samples < 1 {
		return 1
	}
	return req.Samples
}

func outcome(err error) string {
	return string(shared.NormalizeError(err).Code)
}

// writeProviderError maps the normalized error taxonomy onto HTTP statuses.
func (h *LogProbsHandler) writeProviderError(w http.ResponseWriter, err error) {
	pe := shared.NormalizeError(err)
	status := http.StatusInternalServerError
	switch pe.Code {
	case shared.ErrCodeConfig, shared.ErrCodeUnsupportedModel:
		status = http.StatusBadRequest
	case shared.ErrCodeEmptyResponse, shared.ErrCodeRetriesExhausted:
		status = http.StatusBadGateway
	}
	writeJSONError(w, status, pe.Message, string(pe.Code))
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, message string, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errorResp := api.ErrorResponse{
		Error: message,
		Code:  http.StatusText(status),
		Details: map[string]any{
			"details": details,
		},
	}
	_ = json.NewEncoder(w).Encode(errorResp)
}
