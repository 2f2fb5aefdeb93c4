package domain

import (
	"testing"
	"time"
)

func record(dataset string, status RunStatus) RunRecord {
	rec := RunRecord{
		Spec: RunSpec{
			DatasetID:   dataset,
			AlgorithmID: "zscore",
			Params:      map[string]float64{"window": 8},
			MetricIDs:   []string{"auc_roc", "auc_pr"},
		},
		Status:   status,
		Duration: 5 * time.Millisecond,
	}
	if status == RunStatusFailed {
		rec.Error = "detector runtime error: boom"
	} else {
		rec.Metrics = []MetricResult{{MetricID: "auc_roc", Value: 0.9}, {MetricID: "auc_pr", Value: 0.8}}
	}
	return rec
}

func TestResultTable_PutOverwritesInPlace(t *testing.T) {
	table := NewResultTable()
	if err := table.Put(record("d1", RunStatusFailed)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := table.Put(record("d2", RunStatusSuccess)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := table.Put(record("d1", RunStatusSuccess)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("len=%d, want 2", table.Len())
	}
	records := table.Records()
	if records[0].Spec.DatasetID != "d1" || records[0].Status != RunStatusSuccess {
		t.Fatalf("overwritten record not in original position: %+v", records[0])
	}
}

func TestResultTable_FreezeRejectsWrites(t *testing.T) {
	table := NewResultTable()
	if err := table.Put(record("d1", RunStatusSuccess)); err != nil {
		t.Fatalf("put: %v", err)
	}
	table.Freeze()
	if err := table.Put(record("d2", RunStatusSuccess)); err != ErrTableFrozen {
		t.Fatalf("frozen table accepted write, err=%v", err)
	}
}

func TestResultTable_RejectsInvalidRecord(t *testing.T) {
	table := NewResultTable()
	bad := record("d1", RunStatusFailed)
	bad.Error = ""
	if err := table.Put(bad); err == nil {
		t.Fatal("failed record without error accepted")
	}
	bad = record("d1", RunStatusSuccess)
	bad.Metrics = nil
	bad.Status = RunStatusFailed
	if err := table.Put(bad); err == nil {
		t.Fatal("failed record without error accepted")
	}
}

func TestResultTable_Columns(t *testing.T) {
	table := NewResultTable()
	first := record("d1", RunStatusSuccess)
	second := record("d2", RunStatusSuccess)
	second.Spec.MetricIDs = []string{"auc_pr", "range_f1@0.5"}
	second.Spec.Params = map[string]float64{"k": 1.5}
	second.Metrics = []MetricResult{{MetricID: "auc_pr", Value: 0.7}, {MetricID: "range_f1@0.5", Value: 1}}
	if err := table.Put(first); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := table.Put(second); err != nil {
		t.Fatalf("put: %v", err)
	}

	metrics := table.MetricColumns()
	want := []string{"auc_roc", "auc_pr", "range_f1@0.5"}
	if len(metrics) != len(want) {
		t.Fatalf("metric columns=%v, want %v", metrics, want)
	}
	for i := range want {
		if metrics[i] != want[i] {
			t.Fatalf("metric columns=%v, want %v", metrics, want)
		}
	}

	params := table.ParamColumns()
	if len(params) != 2 || params[0] != "k" || params[1] != "window" {
		t.Fatalf("param columns=%v, want [k window]", params)
	}
}
