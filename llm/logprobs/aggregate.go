package logprobs

import (
	"sort"

	"github.com/your-org/openlogprobs/llm/providers/shared"
)

// medianFloat returns the median of vals, averaging the two middle values
// for an even count. vals is sorted in place.
func medianFloat(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// medianTokenID returns the nearest-rank lower median of ids, so the result
// is always one of the observed token ids even for an even count. ids is
// sorted in place.
func medianTokenID(ids []shared.TokenID) shared.TokenID {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids[(len(ids)-1)/2]
}

// reduceMedian combines k topk results into one map by taking the per-key
// median over the intersection of all key sets. Keys missing from any result
// are dropped: provider-side sampling can reveal a drifting top-k slice, and
// a median over a partial sample would not be comparable across keys.
func reduceMedian(results []shared.LogProbMap) shared.LogProbMap {
	if len(results) == 0 {
		return shared.LogProbMap{}
	}

	out := make(shared.LogProbMap, len(results[0]))
	vals := make([]float64, 0, len(results))
	for id, first := range results[0] {
		vals = vals[:0]
		vals = append(vals, first)
		present := true
		for _, r := range results[1:] {
			v, ok := r[id]
			if !ok {
				present = false
				break
			}
			vals = append(vals, v)
		}
		if present {
			out[id] = medianFloat(vals)
		}
	}
	return out
}
