package metric

import (
	"errors"
	"math"
	"testing"
)

// The canonical scenario used through the test suite: two anomaly
// events, indices 2-3 and index 6, with a detector that scores all
// anomalous points high.
var (
	scenarioLabels = []int{0, 0, 1, 1, 0, 0, 1, 0}
	scenarioScores = []float64{0.1, 0.2, 0.9, 0.8, 0.1, 0.3, 0.7, 0.2}
)

func compute(t *testing.T, id string, scores []float64, labels []int) float64 {
	t.Helper()
	m, err := Build(id)
	if err != nil {
		t.Fatalf("Build(%q): %v", id, err)
	}
	value, err := m.Compute(scores, labels)
	if err != nil {
		t.Fatalf("Compute(%q): %v", id, err)
	}
	return value
}

func computeErr(t *testing.T, id string, scores []float64, labels []int) error {
	t.Helper()
	m, err := Build(id)
	if err != nil {
		t.Fatalf("Build(%q): %v", id, err)
	}
	_, err = m.Compute(scores, labels)
	return err
}

func TestBuild_MalformedIDs(t *testing.T) {
	bad := []string{
		"",
		"nonsense",
		"auc_roc@0.5",
		"precision",
		"precision@1.5",
		"precision@contamination=0",
		"precision@contamination=2",
		"range_f0@0.5",
		"range_fx@0.5",
	}
	for _, id := range bad {
		if err := Validate(id); err == nil {
			t.Fatalf("Validate(%q) accepted malformed id", id)
		}
	}
}

func TestBuild_WellFormedIDs(t *testing.T) {
	good := []string{
		"auc_roc",
		"auc_pr",
		"precision@0.5",
		"recall@contamination=0.1",
		"f1@0.9",
		"range_precision@0.5",
		"range_recall@0.5",
		"range_f1@0.5",
		"range_f0.5@0.5",
	}
	for _, id := range good {
		if err := Validate(id); err != nil {
			t.Fatalf("Validate(%q): %v", id, err)
		}
	}
}

func TestAUCROC_Scenario(t *testing.T) {
	value := compute(t, "auc_roc", scenarioScores, scenarioLabels)
	if value <= 0.5 {
		t.Fatalf("auc_roc=%v, want strictly greater than 0.5", value)
	}
	// Every anomalous point outranks every normal point here.
	if value != 1 {
		t.Fatalf("auc_roc=%v, want 1", value)
	}
}

func TestAUCROC_InterleavedRanking(t *testing.T) {
	// Alternating labels with strictly decreasing scores: positives sit
	// at ranks 0, 2 with one and two negatives below them.
	labels := []int{1, 0, 1, 0}
	scores := []float64{0.9, 0.8, 0.7, 0.6}
	value := compute(t, "auc_roc", scores, labels)
	if value != 0.75 {
		t.Fatalf("auc_roc=%v, want 0.75", value)
	}
}

func TestAUCROC_TiesBrokenByIndex(t *testing.T) {
	// Identical scores everywhere: the ranking is index order, so the
	// positive at index 0 beats both negatives, the one at index 3
	// beats none.
	labels := []int{1, 0, 0, 1}
	scores := []float64{0.5, 0.5, 0.5, 0.5}
	first := compute(t, "auc_roc", scores, labels)
	for i := 0; i < 5; i++ {
		if again := compute(t, "auc_roc", scores, labels); again != first {
			t.Fatalf("auc_roc unstable across reruns: %v vs %v", first, again)
		}
	}
	if first != 0.5 {
		t.Fatalf("auc_roc=%v, want 0.5 for index-order ties", first)
	}
}

func TestAUCPR_Scenario(t *testing.T) {
	value := compute(t, "auc_pr", scenarioScores, scenarioLabels)
	if value != 1 {
		t.Fatalf("auc_pr=%v, want 1 for perfect ranking", value)
	}
}

func TestAUCPR_ImperfectRanking(t *testing.T) {
	labels := []int{0, 1}
	scores := []float64{0.9, 0.1}
	value := compute(t, "auc_pr", scores, labels)
	if value != 0.5 {
		t.Fatalf("auc_pr=%v, want 0.5", value)
	}
}

func TestPointwise_Scenario(t *testing.T) {
	if got := compute(t, "precision@0.5", scenarioScores, scenarioLabels); got != 1 {
		t.Fatalf("precision=%v, want 1", got)
	}
	if got := compute(t, "recall@0.5", scenarioScores, scenarioLabels); got != 1 {
		t.Fatalf("recall=%v, want 1", got)
	}
	if got := compute(t, "f1@0.5", scenarioScores, scenarioLabels); got != 1 {
		t.Fatalf("f1=%v, want 1", got)
	}
}

func TestPointwise_PartialDetection(t *testing.T) {
	labels := []int{1, 1, 0, 0}
	scores := []float64{0.9, 0.1, 0.8, 0.1}
	if got := compute(t, "precision@0.5", scores, labels); got != 0.5 {
		t.Fatalf("precision=%v, want 0.5", got)
	}
	if got := compute(t, "recall@0.5", scores, labels); got != 0.5 {
		t.Fatalf("recall=%v, want 0.5", got)
	}
	if got := compute(t, "f1@0.5", scores, labels); got != 0.5 {
		t.Fatalf("f1=%v, want 0.5", got)
	}
}

func TestContaminationThreshold(t *testing.T) {
	// Top quarter of 8 points = 2 points: indices 2 and 3.
	value := compute(t, "precision@contamination=0.25", scenarioScores, scenarioLabels)
	if value != 1 {
		t.Fatalf("precision=%v, want 1", value)
	}
	// Recall misses the event at index 6.
	recall := compute(t, "range_recall@contamination=0.25", scenarioScores, scenarioLabels)
	if recall != 0.5 {
		t.Fatalf("range recall=%v, want 0.5", recall)
	}
}

func TestUndefined_NoAnomalies(t *testing.T) {
	labels := []int{0, 0, 0, 0}
	scores := []float64{0.1, 0.9, 0.2, 0.3}
	for _, id := range []string{"auc_roc", "auc_pr", "recall@0.5", "f1@0.5", "range_recall@0.5", "range_f1@0.5"} {
		err := computeErr(t, id, scores, labels)
		if !errors.Is(err, ErrUndefined) {
			t.Fatalf("%s: err=%v, want ErrUndefined", id, err)
		}
	}
}

func TestUndefined_NothingPredicted(t *testing.T) {
	labels := []int{0, 1, 0, 1}
	scores := []float64{0.1, 0.2, 0.1, 0.3}
	for _, id := range []string{"precision@0.9", "range_precision@0.9"} {
		err := computeErr(t, id, scores, labels)
		if !errors.Is(err, ErrUndefined) {
			t.Fatalf("%s: err=%v, want ErrUndefined", id, err)
		}
	}
	// f1 and range f-scores stay defined: recall exists and is zero.
	if got := compute(t, "f1@0.9", scores, labels); got != 0 {
		t.Fatalf("f1=%v, want 0", got)
	}
	if got := compute(t, "range_f1@0.9", scores, labels); got != 0 {
		t.Fatalf("range_f1=%v, want 0", got)
	}
}

func TestCollapseEvents(t *testing.T) {
	cases := []struct {
		labels []int
		want   []event
	}{
		{[]int{0, 0, 1, 1, 0, 0, 1, 0}, []event{{2, 3}, {6, 6}}},
		{[]int{1, 1, 1}, []event{{0, 2}}},
		{[]int{0, 0, 0}, nil},
		{[]int{1, 0, 1}, []event{{0, 0}, {2, 2}}},
		{[]int{0, 1}, []event{{1, 1}}},
	}
	for _, tc := range cases {
		got := collapseEvents(tc.labels)
		if len(got) != len(tc.want) {
			t.Fatalf("labels=%v: events=%v, want %v", tc.labels, got, tc.want)
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Fatalf("labels=%v: events=%v, want %v", tc.labels, got, tc.want)
			}
		}
	}
}

func TestRangeRecall_Scenario(t *testing.T) {
	// Both events overlap at least one high-score point.
	value := compute(t, "range_recall@0.5", scenarioScores, scenarioLabels)
	if value != 1 {
		t.Fatalf("range recall=%v, want full recall", value)
	}
}

func TestRangeRecall_SinglePointPerEventSuffices(t *testing.T) {
	labels := []int{0, 1, 1, 1, 0}
	scores := []float64{0.1, 0.1, 0.9, 0.1, 0.1}
	if got := compute(t, "range_recall@0.5", scores, labels); got != 1 {
		t.Fatalf("range recall=%v, want 1 for partial overlap", got)
	}
	// Point-wise recall sees only one of three anomalous points.
	pointwise := compute(t, "recall@0.5", scores, labels)
	if math.Abs(pointwise-1.0/3.0) > 1e-12 {
		t.Fatalf("pointwise recall=%v, want 1/3", pointwise)
	}
}

func TestRangeFBeta_WeightsRecall(t *testing.T) {
	// One of two events detected, with a false alarm.
	labels := []int{1, 0, 0, 0, 1, 1}
	scores := []float64{0.9, 0.9, 0.1, 0.1, 0.2, 0.2}
	// precision = 1/2 (one of two predictions inside an event),
	// recall = 1/2 (one of two events hit).
	f1 := compute(t, "range_f1@0.5", scores, labels)
	if f1 != 0.5 {
		t.Fatalf("range_f1=%v, want 0.5", f1)
	}
	f2 := compute(t, "range_f2@0.5", scores, labels)
	if f2 != 0.5 {
		t.Fatalf("range_f2=%v, want 0.5 when precision equals recall", f2)
	}

	// Detecting both events with two extra false alarms: recall 1,
	// precision 1/2. Higher beta now pulls the score toward recall.
	labels = []int{1, 0, 0, 0, 1, 0}
	scores = []float64{0.9, 0.9, 0.9, 0.1, 0.8, 0.1}
	f05 := compute(t, "range_f0.5@0.5", scores, labels)
	f2 = compute(t, "range_f2@0.5", scores, labels)
	if !(f2 > f05) {
		t.Fatalf("range_f2=%v should exceed range_f0.5=%v when recall beats precision", f2, f05)
	}
}
