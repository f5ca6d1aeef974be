package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/openlogprobs/api"
	"github.com/your-org/openlogprobs/api/server"
	"github.com/your-org/openlogprobs/llm/logprobs"
	"github.com/your-org/openlogprobs/llm/providers/shared"
	providertest "github.com/your-org/openlogprobs/llm/providers/test"
)

func newTestServer(t *testing.T) (*httptest.Server, *providertest.FakeBackend) {
	t.Helper()

	backend := providertest.NewFakeBackend("gpt-3.5-turbo-instruct", shared.FamilyCompletion)
	backend.AddResponse("once upon a", &shared.QueryResult{
		Text: " time",
		TopLogProbs: []shared.TokenLogProb{
			{Text: " time", LogProb: -0.01},
			{Text: " midnight", LogProb: -4.2},
		},
	})
	codec := providertest.NewFakeCodec(100277).Map(" time", 640).Map(" midnight", 641)

	model, err := logprobs.New(logprobs.Config{
		Backend:    backend,
		Codec:      codec,
		MaxRetries: 1,
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)

	srv, err := server.NewServer(nil, model, backend, zerolog.Nop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, backend
}

func TestHealthEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status": "healthy"}`, string(body))
}

func TestTopKRoute(t *testing.T) {
	ts, backend := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/logprobs/topk", "application/json",
		strings.NewReader(`{"prefix": "once upon a"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out api.TopKResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "gpt-3.5-turbo-instruct", out.Model)
	assert.Equal(t, map[string]float64{"640": -0.01, "641": -4.2}, out.LogProbs)
	assert.Equal(t, 1, backend.CallCount())
}

func TestArgmaxRoute(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/v1/logprobs/argmax", "application/json",
		strings.NewReader(`{"prefix": "once upon a"}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out api.ArgmaxResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 640, out.Token)
}

func TestVocabRoute(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/vocab")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out api.VocabResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 100277, out.VocabSize)
}

func TestMetricsRoute(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts, backend := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/v1/logprobs/topk", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Zero(t, backend.CallCount())
}

func TestNewServerRejectsNilDependencies(t *testing.T) {
	backend := providertest.NewFakeBackend("gpt-4", shared.FamilyChat)
	model, err := logprobs.New(logprobs.Config{
		Backend: backend,
		Codec:   providertest.NewFakeCodec(10),
		Logger:  zerolog.Nop(),
	})
	require.NoError(t, err)

	_, err = server.NewServer(nil, nil, backend, zerolog.Nop())
	assert.Error(t, err)

	_, err = server.NewServer(nil, model, nil, zerolog.Nop())
	assert.Error(t, err)
}
