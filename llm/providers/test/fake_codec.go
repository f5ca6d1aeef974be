package test

import (
	"strings"
	"sync"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

// FakeCodec implements tokenizer.Codec with a fixed text-to-ids table.
// Unknown text encodes to one synthetic id per byte so Encode never fails.
type FakeCodec struct {
	mu    sync.RWMutex
	table map[string][]shared.TokenID
	texts map[shared.TokenID]string
	vocab int
}

// NewFakeCodec creates a codec with the given vocabulary size.
func NewFakeCodec(vocab int) *FakeCodec {
	return &FakeCodec{
		table: make(map[string][]shared.TokenID),
		texts: make(map[shared.TokenID]string),
		vocab: vocab,
	}
}

// Map registers a text fragment with its token ids.
func (fc *FakeCodec) Map(text string, ids ...shared.TokenID) *FakeCodec {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.table[text] = ids
	if len(ids) == 1 {
		fc.texts[ids[0]] = text
	}
	return fc
}

// Encode returns the registered ids for text, or one id per byte otherwise.
func (fc *FakeCodec) Encode(text string) []shared.TokenID {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	if ids, ok := fc.table[text]; ok {
		return ids
	}
	ids := make([]shared.TokenID, 0, len(text))
	for _, b := range []byte(text) {
		ids = append(ids, shared.TokenID(b))
	}
	return ids
}

// Decode joins the registered texts for ids; unknown ids decode to nothing.
func (fc *FakeCodec) Decode(ids []shared.TokenID) string {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	var sb strings.Builder
	for _, id := range ids {
		sb.WriteString(fc.texts[id])
	}
	return sb.String()
}

// VocabSize returns the configured vocabulary size.
func (fc *FakeCodec) VocabSize() int { return fc.vocab }
