package metric

import "fmt"

// pointwiseMetric computes precision, recall, or f1 at a threshold,
// index by index.
type pointwiseMetric struct {
	kind      string
	threshold thresholder
}

func (m pointwiseMetric) Compute(scores []float64, labels []int) (float64, error) {
	if len(scores) != len(labels) {
		return 0, fmt.Errorf("scores length %d does not match labels length %d", len(scores), len(labels))
	}
	predicted := m.threshold.binarize(scores)

	var tp, fp, fn int
	for i, p := range predicted {
		switch {
		case p && labels[i] == 1:
			tp++
		case p && labels[i] == 0:
			fp++
		case !p && labels[i] == 1:
			fn++
		}
	}

	switch m.kind {
	case "precision":
		if tp+fp == 0 {
			return 0, fmt.Errorf("%w: no points predicted anomalous", ErrUndefined)
		}
		return float64(tp) / float64(tp+fp), nil
	case "recall":
		if tp+fn == 0 {
			return 0, fmt.Errorf("%w: no anomalies in ground truth", ErrUndefined)
		}
		return float64(tp) / float64(tp+fn), nil
	default: // f1
		if tp+fn == 0 {
			return 0, fmt.Errorf("%w: no anomalies in ground truth", ErrUndefined)
		}
		recall := float64(tp) / float64(tp+fn)
		precision := 0.0
		if tp+fp > 0 {
			precision = float64(tp) / float64(tp+fp)
		}
		if precision+recall == 0 {
			return 0, nil
		}
		return 2 * precision * recall / (precision + recall), nil
	}
}
