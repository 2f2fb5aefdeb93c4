package domain

import "testing"

func TestRunSpecHash_ParamOrderIndependent(t *testing.T) {
	a := RunSpec{
		DatasetID:   "d1",
		AlgorithmID: "zscore",
		Params:      map[string]float64{"window": 32, "stride": 4},
		MetricIDs:   []string{"auc_roc"},
	}
	b := RunSpec{
		DatasetID:   "d1",
		AlgorithmID: "zscore",
		Params:      map[string]float64{"stride": 4, "window": 32},
		MetricIDs:   []string{"auc_roc"},
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("hash differs for identical specs: %q vs %q", a.Hash(), b.Hash())
	}
}

func TestRunSpecHash_Distinguishes(t *testing.T) {
	base := RunSpec{
		DatasetID:   "d1",
		AlgorithmID: "zscore",
		Params:      map[string]float64{"window": 32},
		MetricIDs:   []string{"auc_roc"},
	}
	cases := []struct {
		name string
		spec RunSpec
	}{
		{"dataset", RunSpec{DatasetID: "d2", AlgorithmID: "zscore", Params: map[string]float64{"window": 32}, MetricIDs: []string{"auc_roc"}}},
		{"algorithm", RunSpec{DatasetID: "d1", AlgorithmID: "iqr", Params: map[string]float64{"window": 32}, MetricIDs: []string{"auc_roc"}}},
		{"param value", RunSpec{DatasetID: "d1", AlgorithmID: "zscore", Params: map[string]float64{"window": 64}, MetricIDs: []string{"auc_roc"}}},
		{"metrics", RunSpec{DatasetID: "d1", AlgorithmID: "zscore", Params: map[string]float64{"window": 32}, MetricIDs: []string{"auc_pr"}}},
	}
	for _, tc := range cases {
		if tc.spec.Hash() == base.Hash() {
			t.Fatalf("%s: hash collision with base spec", tc.name)
		}
	}
}

func TestRunSpecValidate(t *testing.T) {
	spec := RunSpec{DatasetID: "d1", AlgorithmID: "zscore", MetricIDs: []string{"auc_roc"}}
	if err := spec.Validate(); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	spec.MetricIDs = nil
	if err := spec.Validate(); err == nil {
		t.Fatal("spec without metrics accepted")
	}
	spec = RunSpec{AlgorithmID: "zscore", MetricIDs: []string{"auc_roc"}}
	if err := spec.Validate(); err == nil {
		t.Fatal("spec without dataset accepted")
	}
}
