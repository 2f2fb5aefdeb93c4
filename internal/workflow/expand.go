package workflow

import (
	"context"
	"fmt"
	"sort"

	"github.com/anomalab/anomalab-go/internal/config"
	"github.com/anomalab/anomalab-go/internal/domain"
)

// Expand turns a validated configuration into the ordered, deduplicated
// sequence of run specs: selected datasets × algorithms × parameter
// grid points. Any unknown dataset, unknown algorithm, or out-of-domain
// grid value fails the whole expansion; nothing runs on a partially
// valid configuration.
func (o *Orchestrator) Expand(ctx context.Context, cfg config.Config) ([]domain.RunSpec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	datasetIDs, err := o.selectDatasets(ctx, cfg.Datasets)
	if err != nil {
		return nil, err
	}

	type algorithmRuns struct {
		id     string
		points []map[string]float64
	}
	algorithms := make([]algorithmRuns, 0, len(cfg.Algorithms))
	for i, alg := range cfg.Algorithms {
		if !o.registry.Known(alg.ID) {
			return nil, &config.ValidationError{
				Field: fmt.Sprintf("algorithms[%d].id", i),
				Msg:   fmt.Sprintf("unknown algorithm %q", alg.ID),
			}
		}
		points := gridPoints(alg.Params)
		for _, point := range points {
			if err := o.registry.ValidateParams(alg.ID, point); err != nil {
				return nil, &config.ValidationError{
					Field: fmt.Sprintf("algorithms[%d].params", i),
					Msg:   err.Error(),
				}
			}
		}
		algorithms = append(algorithms, algorithmRuns{id: alg.ID, points: points})
	}

	var specs []domain.RunSpec
	seen := make(map[string]struct{})
	for _, datasetID := range datasetIDs {
		for _, alg := range algorithms {
			for _, point := range alg.points {
				spec := domain.RunSpec{
					DatasetID:   datasetID,
					AlgorithmID: alg.id,
					Params:      point,
					MetricIDs:   cfg.Metrics,
				}
				hash := spec.Hash()
				if _, ok := seen[hash]; ok {
					continue
				}
				seen[hash] = struct{}{}
				specs = append(specs, spec)
			}
		}
	}
	return specs, nil
}

// selectDatasets resolves selectors in configuration order: id
// selectors must name an existing dataset, match selectors pick every
// catalog entry satisfying the metadata predicates (in catalog order)
// and must match at least one. Duplicate ids keep their first position.
func (o *Orchestrator) selectDatasets(ctx context.Context, selectors []config.DatasetSelector) ([]string, error) {
	entries, err := o.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	known := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		known[entry.ID] = struct{}{}
	}

	var ids []string
	seen := make(map[string]struct{})
	add := func(id string) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for i, selector := range selectors {
		if selector.ID != "" {
			if _, ok := known[selector.ID]; !ok {
				return nil, &config.ValidationError{
					Field: fmt.Sprintf("datasets[%d]", i),
					Msg:   fmt.Sprintf("unknown dataset %q", selector.ID),
				}
			}
			add(selector.ID)
			continue
		}
		matched := false
		for _, entry := range entries {
			if entry.MatchesMetadata(selector.Match) {
				matched = true
				add(entry.ID)
			}
		}
		if !matched {
			return nil, &config.ValidationError{
				Field: fmt.Sprintf("datasets[%d]", i),
				Msg:   fmt.Sprintf("selector %v matched no datasets", selector.Match),
			}
		}
	}
	return ids, nil
}

// gridPoints expands a parameter grid into its cross-product. Parameter
// names iterate in lexical order and values in configuration order, so
// the expansion is deterministic for a given configuration.
func gridPoints(params map[string]config.ParamGrid) []map[string]float64 {
	if len(params) == 0 {
		return []map[string]float64{nil}
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	points := []map[string]float64{{}}
	for _, name := range names {
		var next []map[string]float64
		for _, point := range points {
			for _, value := range params[name].Values {
				expanded := make(map[string]float64, len(point)+1)
				for k, v := range point {
					expanded[k] = v
				}
				expanded[name] = value
				next = append(next, expanded)
			}
		}
		points = next
	}
	return points
}
