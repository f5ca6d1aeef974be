// Package logprobs exposes next-token distribution queries over a completion
// backend: argmax, topk, and their median-aggregated variants.
package logprobs

import (
	"github.com/your-org/openlogprobs/llm/providers/shared"
	"github.com/your-org/openlogprobs/llm/tokenizer"
)

// Normalize converts the backend's (token text, logprob) pairs into the
// canonical token-indexed map. Each surface text is re-encoded through the
// codec and keyed by its first token id: provider top-k entries are expected
// to be single tokens, so anything past the first id is discarded. Entries
// whose text encodes to zero tokens are dropped. A key collision keeps the
// last value seen; provider output is already deduplicated by token identity
// within one response.
func Normalize(codec tokenizer.Codec, pairs []shared.TokenLogProb) shared.LogProbMap {
	out := make(shared.LogProbMap, len(pairs))
	for _, p := range pairs {
		ids := codec.Encode(p.Text)
		if len(ids) == 0 {
			continue
		}
		out[ids[0]] = p.LogProb
	}
	return out
}
