package config

import (
	"errors"
	"testing"
)

const validDoc = `
datasets:
  - id: ecg-001
  - match: {domain: industrial}
algorithms:
  - id: zscore
    params:
      window: [0, 32, 64]
  - id: iqr
    params:
      k: 1.5
metrics: [auc_roc, auc_pr, "range_f1@0.5"]
parallelism: 4
`

func TestParse_Valid(t *testing.T) {
	cfg, err := Parse([]byte(validDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(cfg.Datasets) != 2 || cfg.Datasets[0].ID != "ecg-001" {
		t.Fatalf("datasets=%+v", cfg.Datasets)
	}
	if cfg.Datasets[1].Match["domain"] != "industrial" {
		t.Fatalf("match selector=%+v", cfg.Datasets[1])
	}
	window := cfg.Algorithms[0].Params["window"]
	if len(window.Values) != 3 || window.Values[1] != 32 {
		t.Fatalf("window grid=%+v", window)
	}
	k := cfg.Algorithms[1].Params["k"]
	if len(k.Values) != 1 || k.Values[0] != 1.5 {
		t.Fatalf("scalar grid=%+v", k)
	}
	if cfg.Parallelism != 4 {
		t.Fatalf("parallelism=%d, want 4", cfg.Parallelism)
	}
	if cfg.Resume {
		t.Fatal("resume should default to false")
	}
}

func TestParse_DefaultParallelism(t *testing.T) {
	doc := `
datasets: [{id: d1}]
algorithms: [{id: zscore}]
metrics: [auc_roc]
`
	cfg, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.Parallelism != 1 {
		t.Fatalf("parallelism=%d, want default 1", cfg.Parallelism)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"no datasets", `{algorithms: [{id: zscore}], metrics: [auc_roc]}`},
		{"no algorithms", `{datasets: [{id: d1}], metrics: [auc_roc]}`},
		{"no metrics", `{datasets: [{id: d1}], algorithms: [{id: zscore}]}`},
		{"selector both", `{datasets: [{id: d1, match: {a: b}}], algorithms: [{id: zscore}], metrics: [auc_roc]}`},
		{"selector neither", `{datasets: [{}], algorithms: [{id: zscore}], metrics: [auc_roc]}`},
		{"bad metric", `{datasets: [{id: d1}], algorithms: [{id: zscore}], metrics: [nonsense]}`},
		{"bad parallelism", `{datasets: [{id: d1}], algorithms: [{id: zscore}], metrics: [auc_roc], parallelism: -1}`},
		{"unknown field", `{datasets: [{id: d1}], algorithms: [{id: zscore}], metrics: [auc_roc], workers: 3}`},
		{"empty grid", `{datasets: [{id: d1}], algorithms: [{id: zscore, params: {window: []}}], metrics: [auc_roc]}`},
	}
	for _, tc := range cases {
		_, err := Parse([]byte(tc.doc))
		var validation *ValidationError
		if !errors.As(err, &validation) {
			t.Fatalf("%s: err=%v, want ValidationError", tc.name, err)
		}
	}
}
