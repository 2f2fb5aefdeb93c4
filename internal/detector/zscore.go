package detector

import (
	"context"
	"math"
)

// zscoreDetector scores each timestep by its standardized distance from
// the mean. With window 0 the mean and deviation come from the fitted
// series; with a positive window they come from the trailing window of
// the scored series itself. Multivariate rows score as the maximum over
// attributes.
type zscoreDetector struct {
	window int

	mean   []float64
	stddev []float64
	fitted bool
}

func newZScoreDetector(window int) *zscoreDetector {
	return &zscoreDetector{window: window}
}

func (d *zscoreDetector) Fit(ctx context.Context, series [][]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(series) == 0 {
		return &RuntimeError{AlgorithmID: "zscore", Op: "fit", Msg: "empty series"}
	}
	if d.window == 0 {
		d.mean, d.stddev = columnStats(series)
	}
	d.fitted = true
	return nil
}

func (d *zscoreDetector) Score(ctx context.Context, series [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.fitted {
		return nil, &RuntimeError{AlgorithmID: "zscore", Op: "score", Msg: "detector not fitted"}
	}
	if len(series) == 0 {
		return nil, &RuntimeError{AlgorithmID: "zscore", Op: "score", Msg: "empty series"}
	}

	scores := make([]float64, len(series))
	if d.window == 0 {
		for i, row := range series {
			scores[i] = maxAbsZ(row, d.mean, d.stddev)
		}
		return scores, nil
	}

	for i, row := range series {
		lo := i - d.window
		if lo < 0 {
			lo = 0
		}
		if lo == i {
			// First timestep has no trailing context.
			scores[i] = 0
			continue
		}
		mean, stddev := columnStats(series[lo:i])
		scores[i] = maxAbsZ(row, mean, stddev)
	}
	return scores, nil
}

func maxAbsZ(row, mean, stddev []float64) float64 {
	best := 0.0
	for a := 0; a < len(row) && a < len(mean); a++ {
		if stddev[a] == 0 {
			continue
		}
		z := math.Abs(row[a]-mean[a]) / stddev[a]
		if z > best {
			best = z
		}
	}
	return best
}

// columnStats computes per-attribute mean and population standard
// deviation.
func columnStats(series [][]float64) ([]float64, []float64) {
	width := len(series[0])
	mean := make([]float64, width)
	stddev := make([]float64, width)
	for _, row := range series {
		for a := 0; a < width && a < len(row); a++ {
			mean[a] += row[a]
		}
	}
	n := float64(len(series))
	for a := range mean {
		mean[a] /= n
	}
	for _, row := range series {
		for a := 0; a < width && a < len(row); a++ {
			diff := row[a] - mean[a]
			stddev[a] += diff * diff
		}
	}
	for a := range stddev {
		stddev[a] = math.Sqrt(stddev[a] / n)
	}
	return mean, stddev
}
