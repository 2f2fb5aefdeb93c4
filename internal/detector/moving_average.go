package detector

import (
	"context"
	"math"
)

// movingAverageDetector scores each timestep by its absolute residual
// from the trailing mean of the previous window timesteps, maximized
// over attributes. Fit only records that the detector is ready; all
// statistics come from the scored series.
type movingAverageDetector struct {
	window int
	fitted bool
}

func newMovingAverageDetector(window int) *movingAverageDetector {
	return &movingAverageDetector{window: window}
}

func (d *movingAverageDetector) Fit(ctx context.Context, series [][]float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(series) == 0 {
		return &RuntimeError{AlgorithmID: "moving_average", Op: "fit", Msg: "empty series"}
	}
	d.fitted = true
	return nil
}

func (d *movingAverageDetector) Score(ctx context.Context, series [][]float64) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !d.fitted {
		return nil, &RuntimeError{AlgorithmID: "moving_average", Op: "score", Msg: "detector not fitted"}
	}
	scores := make([]float64, len(series))
	for i, row := range series {
		lo := i - d.window
		if lo < 0 {
			lo = 0
		}
		if lo == i {
			scores[i] = 0
			continue
		}
		width := len(row)
		best := 0.0
		for a := 0; a < width; a++ {
			sum := 0.0
			for j := lo; j < i; j++ {
				sum += series[j][a]
			}
			residual := math.Abs(row[a] - sum/float64(i-lo))
			if residual > best {
				best = residual
			}
		}
		scores[i] = best
	}
	return scores, nil
}
