package openai

import (
	"math"
	"strconv"

	"github.com/sashabaranov/go-openai"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

// toWireBias converts the domain bias map to the wire format. The API takes
// token ids as strings and biases as integers, so fractional biases round to
// the nearest integer here.
func toWireBias(bias shared.LogitBias) map[string]int {
	if bias == nil {
		return nil
	}
	wire := make(map[string]int, len(bias))
	for id, v := range bias {
		wire[strconv.Itoa(int(id))] = int(math.Round(v))
	}
	return wire
}

// zeroTemperature stands in for an explicit temperature of 0. The request
// structs serialize with omitempty, so a literal zero would be dropped and
// the provider would fall back to its default of 1; the smallest nonzero
// float is the client library's convention for "really zero".
const zeroTemperature = math.SmallestNonzeroFloat32

// ToCompletionRequest builds a legacy completion request for one next-token
// query.
func ToCompletionRequest(model string, req *shared.QueryRequest) openai.CompletionRequest {
	r := openai.CompletionRequest{
		Model:     model,
		Prompt:    req.Prefix,
		MaxTokens: 1,
		N:         1,
	}
	switch req.Kind {
	case shared.QueryTopK:
		r.Temperature = 1
		r.LogProbs = shared.TopLogProbs
	default:
		r.Temperature = zeroTemperature
	}
	if req.Bias != nil {
		r.LogitBias = toWireBias(req.Bias)
	}
	return r
}

// ToChatRequest builds a chat completion request for one next-token query.
func ToChatRequest(model, system string, req *shared.QueryRequest) openai.ChatCompletionRequest {
	r := openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: req.Prefix},
		},
		MaxTokens: 1,
		N:         1,
	}
	switch req.Kind {
	case shared.QueryTopK:
		r.Temperature = 1
		r.LogProbs = true
		r.TopLogProbs = shared.TopLogProbs
	default:
		r.Temperature = zeroTemperature
	}
	if req.Bias != nil {
		r.LogitBias = toWireBias(req.Bias)
	}
	return r
}

// FromCompletionResponse extracts the legacy completion shape: a single
// object mapping decoded text fragments to log-probabilities under the first
// output position. A response with zero choices, or a top-k response with no
// logprob block, surfaces as an empty-response error so the retry layer can
// recognize it.
func FromCompletionResponse(resp openai.CompletionResponse, kind shared.QueryKind) (*shared.QueryResult, error) {
	if len(resp.Choices) == 0 {
		return nil, emptyResponse("completion response contained zero choices")
	}
	choice := resp.Choices[0]
	out := &shared.QueryResult{Text: choice.Text}
	if kind != shared.QueryTopK {
		return out, nil
	}

	if len(choice.LogProbs.TopLogprobs) == 0 {
		return nil, emptyResponse("completion response carried no top logprobs")
	}
	top := choice.LogProbs.TopLogprobs[0]
	out.TopLogProbs = make([]shared.TokenLogProb, 0, len(top))
	for text, lp := range top {
		out.TopLogProbs = append(out.TopLogProbs, shared.TokenLogProb{
			Text:    text,
			LogProb: float64(lp),
		})
	}
	return out, nil
}

// FromChatResponse extracts the chat shape: a sequence of (token, logprob)
// pairs nested under the first output position.
func FromChatResponse(resp openai.ChatCompletionResponse, kind shared.QueryKind) (*shared.QueryResult, error) {
	if len(resp.Choices) == 0 {
		return nil, emptyResponse("chat response contained zero choices")
	}
	choice := resp.Choices[0]
	out := &shared.QueryResult{Text: choice.Message.Content}
	if kind != shared.QueryTopK {
		return out, nil
	}

	if choice.LogProbs == nil || len(choice.LogProbs.Content) == 0 {
		return nil, emptyResponse("chat response carried no logprob content")
	}
	raw := choice.LogProbs.Content[0].TopLogProbs
	if len(raw) == 0 {
		return nil, emptyResponse("chat response carried no top logprobs")
	}
	out.TopLogProbs = make([]shared.TokenLogProb, 0, len(raw))
	for _, lp := range raw {
		out.TopLogProbs = append(out.TopLogProbs, shared.TokenLogProb{
			Text:    lp.Token,
			LogProb: lp.LogProb,
		})
	}
	return out, nil
}

func emptyResponse(msg string) *shared.ProviderError {
	return &shared.ProviderError{
		Code:    shared.ErrCodeEmptyResponse,
		Message: msg,
	}
}
