package metric

import "fmt"

// aucROC is the area under the ROC curve computed over the
// deterministic ranking of points by score, ties broken by lower
// original index. Equivalent to the probability that a ranked anomalous
// point precedes a ranked normal point.
type aucROC struct{}

func (aucROC) Compute(scores []float64, labels []int) (float64, error) {
	if len(scores) != len(labels) {
		return 0, fmt.Errorf("scores length %d does not match labels length %d", len(scores), len(labels))
	}
	positives, negatives := countLabels(labels)
	if positives == 0 {
		return 0, fmt.Errorf("%w: no anomalies in ground truth", ErrUndefined)
	}
	if negatives == 0 {
		return 0, fmt.Errorf("%w: no normal points in ground truth", ErrUndefined)
	}

	// Walk the ranking from highest score down. Every positive is
	// credited with the negatives still below it.
	order := rankIndices(scores)
	negativesSeen := 0
	pairsWon := 0
	for _, idx := range order {
		if labels[idx] == 1 {
			pairsWon += negatives - negativesSeen
		} else {
			negativesSeen++
		}
	}
	return float64(pairsWon) / float64(positives*negatives), nil
}

// aucPR is average precision over the same deterministic ranking: the
// sum of precision at each anomalous rank weighted by the recall step.
type aucPR struct{}

func (aucPR) Compute(scores []float64, labels []int) (float64, error) {
	if len(scores) != len(labels) {
		return 0, fmt.Errorf("scores length %d does not match labels length %d", len(scores), len(labels))
	}
	positives, _ := countLabels(labels)
	if positives == 0 {
		return 0, fmt.Errorf("%w: no anomalies in ground truth", ErrUndefined)
	}

	order := rankIndices(scores)
	truePositives := 0
	sum := 0.0
	for rank, idx := range order {
		if labels[idx] != 1 {
			continue
		}
		truePositives++
		sum += float64(truePositives) / float64(rank+1)
	}
	return sum / float64(positives), nil
}

func countLabels(labels []int) (positives, negatives int) {
	for _, label := range labels {
		if label == 1 {
			positives++
		} else {
			negatives++
		}
	}
	return positives, negatives
}
