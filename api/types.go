package api

// QueryRequest is the body of the logprob query endpoints. Logit bias keys
// are token ids in string form; a missing map means no bias is applied.
type QueryRequest struct {
	Prefix    string             `json:"prefix"`
	LogitBias map[string]float64 `json:"logit_bias,omitempty"`
	// Samples requests median aggregation over this many repeated queries.
	// Zero or one means a single query.
	Samples int `json:"samples,omitempty"`
}

// TopKResponse carries the normalized token->logprob map. Keys are token ids
// in string form, since JSON object keys cannot be integers.
type TopKResponse struct {
	Model    string             `json:"model"`
	Family   string             `json:"family"`
	Samples  int                `json:"samples"`
	LogProbs map[string]float64 `json:"logprobs"`
}

// ArgmaxResponse carries the most likely next token id.
type ArgmaxResponse struct {
	Model   string `json:"model"`
	Family  string `json:"family"`
	Samples int    `json:"samples"`
	Token   int    `json:"token"`
}

// VocabResponse reports the vocabulary size of the active encoding.
type VocabResponse struct {
	Model     string `json:"model"`
	VocabSize int    `json:"vocab_size"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}
