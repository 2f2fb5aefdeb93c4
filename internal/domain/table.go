package domain

import (
	"errors"
	"fmt"
	"sort"
)

var ErrTableFrozen = errors.New("result table is frozen")

// ResultTable holds at most one RunRecord per RunSpec identity, in the
// order records were first inserted. Reinserting a spec overwrites the
// existing record in place so rerun never duplicates a row. Once frozen
// the table rejects all writes.
type ResultTable struct {
	records []RunRecord
	index   map[string]int
	frozen  bool
}

func NewResultTable() *ResultTable {
	return &ResultTable{index: make(map[string]int)}
}

// Put inserts or overwrites the record for its RunSpec identity.
func (t *ResultTable) Put(record RunRecord) error {
	if t.frozen {
		return ErrTableFrozen
	}
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	hash := record.Spec.Hash()
	if pos, ok := t.index[hash]; ok {
		t.records[pos] = record
		return nil
	}
	t.index[hash] = len(t.records)
	t.records = append(t.records, record)
	return nil
}

// Get returns the record for the given spec identity hash.
func (t *ResultTable) Get(hash string) (RunRecord, bool) {
	pos, ok := t.index[hash]
	if !ok {
		return RunRecord{}, false
	}
	return t.records[pos], true
}

// Records returns the records in insertion order. The slice is a copy;
// the records themselves are value types and safe to hold.
func (t *ResultTable) Records() []RunRecord {
	out := make([]RunRecord, len(t.records))
	copy(out, t.records)
	return out
}

func (t *ResultTable) Len() int { return len(t.records) }

// Freeze makes the table read-only. Freezing twice is harmless.
func (t *ResultTable) Freeze() { t.frozen = true }

func (t *ResultTable) Frozen() bool { return t.frozen }

// MetricColumns returns every metric id appearing in any record's spec,
// in first-appearance order. This is the tabular export column set.
func (t *ResultTable) MetricColumns() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, record := range t.records {
		for _, id := range record.Spec.MetricIDs {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// ParamColumns returns every parameter name appearing in any record's
// spec, in lexical order, for flattened tabular export.
func (t *ResultTable) ParamColumns() []string {
	seen := make(map[string]struct{})
	for _, record := range t.records {
		for name := range record.Spec.Params {
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
