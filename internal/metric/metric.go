// Package metric scores predicted anomaly scores against ground-truth
// labels. Metrics are addressed by id strings of the form
// "name[@threshold]". Threshold-free rank metrics (auc_roc, auc_pr)
// take no threshold; thresholded metrics take either a fixed cutoff
// ("precision@0.5") or a contamination fraction
// ("precision@contamination=0.1") selecting the top-scoring fraction of
// points. A metric whose precondition does not hold on a dataset fails
// with ErrUndefined, which is reported as an undefined value and never
// as zero.
package metric

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUndefined marks a metric whose precondition does not hold for the
// given labels or predictions.
var ErrUndefined = errors.New("metric undefined")

// Metric is a pure scoring function over (scores, labels). Scores are
// expected in [0, 1]; labels are 0/1 aligned with scores.
type Metric interface {
	Compute(scores []float64, labels []int) (float64, error)
}

// Build parses a metric id into a Metric. The error reports a
// malformed id; it is a configuration problem, caught before any run
// starts.
func Build(id string) (Metric, error) {
	name := id
	var rawThreshold string
	if at := strings.IndexByte(id, '@'); at >= 0 {
		name = id[:at]
		rawThreshold = id[at+1:]
	}

	switch {
	case name == "auc_roc":
		if rawThreshold != "" {
			return nil, fmt.Errorf("metric %q: auc_roc takes no threshold", id)
		}
		return aucROC{}, nil
	case name == "auc_pr":
		if rawThreshold != "" {
			return nil, fmt.Errorf("metric %q: auc_pr takes no threshold", id)
		}
		return aucPR{}, nil
	case name == "precision" || name == "recall" || name == "f1":
		thr, err := parseThreshold(id, rawThreshold)
		if err != nil {
			return nil, err
		}
		return pointwiseMetric{kind: name, threshold: thr}, nil
	case name == "range_precision" || name == "range_recall":
		thr, err := parseThreshold(id, rawThreshold)
		if err != nil {
			return nil, err
		}
		beta := 0.0
		kind := strings.TrimPrefix(name, "range_")
		return rangeMetric{kind: kind, beta: beta, threshold: thr}, nil
	case strings.HasPrefix(name, "range_f"):
		beta, err := strconv.ParseFloat(name[len("range_f"):], 64)
		if err != nil || beta <= 0 {
			return nil, fmt.Errorf("metric %q: invalid beta %q", id, name[len("range_f"):])
		}
		thr, err := parseThreshold(id, rawThreshold)
		if err != nil {
			return nil, err
		}
		return rangeMetric{kind: "fbeta", beta: beta, threshold: thr}, nil
	default:
		return nil, fmt.Errorf("metric %q: unknown metric name %q", id, name)
	}
}

// Validate reports whether the metric id parses.
func Validate(id string) error {
	_, err := Build(id)
	return err
}

func parseThreshold(id, raw string) (thresholder, error) {
	if raw == "" {
		return nil, fmt.Errorf("metric %q: threshold is required", id)
	}
	if q, ok := strings.CutPrefix(raw, "contamination="); ok {
		frac, err := strconv.ParseFloat(q, 64)
		if err != nil || frac <= 0 || frac > 1 {
			return nil, fmt.Errorf("metric %q: contamination must be in (0, 1], got %q", id, q)
		}
		return contamination{fraction: frac}, nil
	}
	cutoff, err := strconv.ParseFloat(raw, 64)
	if err != nil || cutoff < 0 || cutoff > 1 {
		return nil, fmt.Errorf("metric %q: cutoff must be in [0, 1], got %q", id, raw)
	}
	return fixedCutoff{cutoff: cutoff}, nil
}
