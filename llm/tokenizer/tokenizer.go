// Package tokenizer provides the token codec used to map between token ids
// and surface text, backed by tiktoken for production-accurate encodings.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

// Codec maps between token ids and surface text and reports the vocabulary
// size of its encoding.
type Codec interface {
	// Encode tokenizes text into ids. May return more than one id for a
	// single provider top-k entry; callers decide how to handle that.
	Encode(text string) []shared.TokenID
	// Decode reassembles surface text from ids.
	Decode(ids []shared.TokenID) string
	// VocabSize returns the number of entries in the vocabulary.
	VocabSize() int
}

// vocabSizes records n_vocab per tiktoken encoding, matching tiktoken's
// published values (mergeable ranks plus special tokens).
var vocabSizes = map[string]int{
	"r50k_base":   50257,
	"p50k_base":   50281,
	"cl100k_base": 100277,
	"o200k_base":  200019,
}

// encodingForModel resolves a model identifier to its tiktoken encoding name.
func encodingForModel(model string) (string, error) {
	switch model {
	case "gpt-3.5-turbo-instruct", "babbage-002", "davinci-002":
		return "cl100k_base", nil
	}
	switch {
	case strings.HasPrefix(model, "gpt-4o"):
		return "o200k_base", nil
	case strings.HasPrefix(model, "gpt-4"), strings.HasPrefix(model, "gpt-3"):
		return "cl100k_base", nil
	}
	return "", &shared.ProviderError{
		Code:    shared.ErrCodeUnsupportedModel,
		Message: fmt.Sprintf("no known encoding for model %q", model),
	}
}

// TiktokenCodec implements Codec on top of a tiktoken BPE encoding.
type TiktokenCodec struct {
	enc       *tiktoken.Tiktoken
	name      string
	vocabSize int
}

// NewCodec builds the codec for the given model identifier.
func NewCodec(model string) (*TiktokenCodec, error) {
	name, err := encodingForModel(model)
	if err != nil {
		return nil, err
	}
	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load encoding %s: %w", name, err)
	}
	size, ok := vocabSizes[name]
	if !ok {
		return nil, fmt.Errorf("no vocabulary size recorded for encoding %s", name)
	}
	return &TiktokenCodec{enc: enc, name: name, vocabSize: size}, nil
}

// Name returns the tiktoken encoding name, e.g. "cl100k_base".
func (c *TiktokenCodec) Name() string { return c.name }

// Encode tokenizes text with no special-token handling.
func (c *TiktokenCodec) Encode(text string) []shared.TokenID {
	raw := c.enc.Encode(text, nil, nil)
	ids := make([]shared.TokenID, len(raw))
	for i, t := range raw {
		ids[i] = shared.TokenID(t)
	}
	return ids
}

// Decode reassembles surface text from token ids.
func (c *TiktokenCodec) Decode(ids []shared.TokenID) string {
	raw := make([]int, len(ids))
	for i, id := range ids {
		raw[i] = int(id)
	}
	return c.enc.Decode(raw)
}

// VocabSize returns n_vocab for the codec's encoding.
func (c *TiktokenCodec) VocabSize() int { return c.vocabSize }
