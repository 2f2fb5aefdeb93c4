package metric

import "sort"

// thresholder turns continuous scores into binary predictions.
type thresholder interface {
	binarize(scores []float64) []bool
}

// fixedCutoff predicts anomalous where score >= cutoff.
type fixedCutoff struct {
	cutoff float64
}

func (t fixedCutoff) binarize(scores []float64) []bool {
	out := make([]bool, len(scores))
	for i, s := range scores {
		out[i] = s >= t.cutoff
	}
	return out
}

// contamination predicts the top fraction of points by score as
// anomalous. Ties are broken by original index, lower index first, so
// the selection is deterministic across reruns.
type contamination struct {
	fraction float64
}

func (t contamination) binarize(scores []float64) []bool {
	out := make([]bool, len(scores))
	k := int(t.fraction * float64(len(scores)))
	if k == 0 {
		return out
	}
	order := rankIndices(scores)
	for _, idx := range order[:k] {
		out[idx] = true
	}
	return out
}

// rankIndices returns indices ordered by score descending, ties broken
// by lower original index first.
func rankIndices(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	return order
}
