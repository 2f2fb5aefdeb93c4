package detector

import (
	"context"
	"math"
	"sort"
)

// iqrDetector scores each timestep by its distance beyond the Tukey
// fences [q1 - k*iqr, q3 + k*iqr] fitted per attribute, scaled by the
// interquartile range. Points inside the fences score zero.
type iqrDetector struct {
	k float64

	q1     []float64
	q3     []float64
	fitted bool
}

func newIQRDetector(k float64) *iqrDetector {
	return &iqrDetector{k: k}
}

func (d *iqrDetector) Fit(ctx context.Context, series [][]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(series) == 0 {
		return &RuntimeError{AlgorithmID: "iqr", Op: "fit", Msg: "empty series"}
	}
	width := len(series[0])
	d.q1 = make([]float64, width)
	d.q3 = make([]float64, width)
	column := make([]float64, len(series))
	for a := 0; a < width; a++ {
		for i, row := range series {
			column[i] = row[a]
		}
		sort.Float64s(column)
		d.q1[a] = quantile(column, 0.25)
		d.q3[a] = quantile(column, 0.75)
	}
	d.fitted = true
	return nil
}

func (d *iqrDetector) Score(ctx context.Context, series [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.fitted {
		return nil, &RuntimeError{AlgorithmID: "iqr", Op: "score", Msg: "detector not fitted"}
	}
	scores := make([]float64, len(series))
	for i, row := range series {
		best := 0.0
		for a := 0; a < len(row) && a < len(d.q1); a++ {
			spread := d.q3[a] - d.q1[a]
			lower := d.q1[a] - d.k*spread
			upper := d.q3[a] + d.k*spread
			var dist float64
			switch {
			case row[a] < lower:
				dist = lower - row[a]
			case row[a] > upper:
				dist = row[a] - upper
			default:
				continue
			}
			if spread > 0 {
				dist /= spread
			}
			if dist > best {
				best = dist
			}
		}
		scores[i] = best
	}
	return scores, nil
}

// quantile interpolates linearly on an already sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
