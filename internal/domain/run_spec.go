package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sort"
	"strings"
)

// RunSpec is one fully specified unit of benchmark work: a dataset, an
// algorithm with a concrete parameter set, and the metrics to evaluate.
// Two RunSpecs with identical fields are the same run.
type RunSpec struct {
	DatasetID   string
	AlgorithmID string
	Params      map[string]float64
	MetricIDs   []string
}

func (s RunSpec) Validate() error {
	if strings.TrimSpace(s.DatasetID) == "" {
		return errors.New("run spec dataset id is required")
	}
	if strings.TrimSpace(s.AlgorithmID) == "" {
		return errors.New("run spec algorithm id is required")
	}
	if len(s.MetricIDs) == 0 {
		return errors.New("run spec needs at least one metric")
	}
	for _, id := range s.MetricIDs {
		if strings.TrimSpace(id) == "" {
			return errors.New("run spec metric id is empty")
		}
	}
	return nil
}

// Hash returns the identity of this spec: a sha256 over its canonical
// JSON form, with parameters sorted by name. Specs that differ only in
// parameter map iteration order hash identically.
func (s RunSpec) Hash() string {
	blob, err := json.Marshal(canonicalRunSpecFrom(s))
	if err != nil {
		// Only non-marshalable values (NaN params) end up here; fold
		// them into the digest rather than failing identity.
		blob = []byte(s.DatasetID + "|" + s.AlgorithmID)
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:])
}

type canonicalRunSpec struct {
	DatasetID   string           `json:"datasetId"`
	AlgorithmID string           `json:"algorithmId"`
	Params      []canonicalParam `json:"params"`
	MetricIDs   []string         `json:"metricIds"`
}

type canonicalParam struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func canonicalRunSpecFrom(s RunSpec) canonicalRunSpec {
	params := make([]canonicalParam, 0, len(s.Params))
	for name, value := range s.Params {
		params = append(params, canonicalParam{Name: name, Value: value})
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })

	metricIDs := make([]string, len(s.MetricIDs))
	copy(metricIDs, s.MetricIDs)

	return canonicalRunSpec{
		DatasetID:   s.DatasetID,
		AlgorithmID: s.AlgorithmID,
		Params:      params,
		MetricIDs:   metricIDs,
	}
}

// SortedParamNames returns the parameter names in lexical order, the
// order used for hashing and for flattened tabular export.
func (s RunSpec) SortedParamNames() []string {
	names := make([]string, 0, len(s.Params))
	for name := range s.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
