package metric

import "fmt"

// event is a maximal contiguous run of anomalous labels, inclusive on
// both ends.
type event struct {
	start int
	end   int
}

// collapseEvents folds 0/1 labels into their anomaly events.
func collapseEvents(labels []int) []event {
	var events []event
	start := -1
	for i, label := range labels {
		if label == 1 {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			events = append(events, event{start: start, end: i - 1})
			start = -1
		}
	}
	if start >= 0 {
		events = append(events, event{start: start, end: len(labels) - 1})
	}
	return events
}

// rangeMetric scores partial overlap between predicted anomalous points
// and ground-truth anomaly events. An event counts as detected when at
// least one predicted point falls inside its index range. Recall is
// per-event; precision stays point-wise so scattered false alarms still
// cost. The fbeta kind combines both with a configurable beta weight,
// beta > 1 favouring recall.
type rangeMetric struct {
	kind      string // "precision", "recall", "fbeta"
	beta      float64
	threshold thresholder
}

func (m rangeMetric) Compute(scores []float64, labels []int) (float64, error) {
	if len(scores) != len(labels) {
		return 0, fmt.Errorf("scores length %d does not match labels length %d", len(scores), len(labels))
	}
	events := collapseEvents(labels)
	predicted := m.threshold.binarize(scores)

	switch m.kind {
	case "precision":
		return m.precision(predicted, labels)
	case "recall":
		return m.recall(predicted, events)
	default:
		recall, err := m.recall(predicted, events)
		if err != nil {
			return 0, err
		}
		precision, precisionErr := m.precision(predicted, labels)
		if precisionErr != nil {
			// Nothing predicted: full miss on every event.
			return 0, nil
		}
		if precision == 0 && recall == 0 {
			return 0, nil
		}
		b2 := m.beta * m.beta
		return (1 + b2) * precision * recall / (b2*precision + recall), nil
	}
}

func (m rangeMetric) recall(predicted []bool, events []event) (float64, error) {
	if len(events) == 0 {
		return 0, fmt.Errorf("%w: no anomaly events in ground truth", ErrUndefined)
	}
	detected := 0
	for _, ev := range events {
		for i := ev.start; i <= ev.end; i++ {
			if predicted[i] {
				detected++
				break
			}
		}
	}
	return float64(detected) / float64(len(events)), nil
}

func (m rangeMetric) precision(predicted []bool, labels []int) (float64, error) {
	var tp, total int
	for i, p := range predicted {
		if !p {
			continue
		}
		total++
		if labels[i] == 1 {
			tp++
		}
	}
	if total == 0 {
		return 0, fmt.Errorf("%w: no points predicted anomalous", ErrUndefined)
	}
	return float64(tp) / float64(total), nil
}
