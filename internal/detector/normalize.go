package detector

// Normalize rescales raw anomaly scores to [0, 1] by min-max scaling.
// A constant score vector normalizes to all zeros so that a detector
// which cannot separate anything never looks confident.
func Normalize(scores []float64) []float64 {
	if len(scores) == 0 {
		return nil
	}
	min, max := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < min {
			min = s
		}
		if s > max {
			max = s
		}
	}
	out := make([]float64, len(scores))
	if min == max {
		return out
	}
	span := max - min
	for i, s := range scores {
		out[i] = (s - min) / span
	}
	return out
}
