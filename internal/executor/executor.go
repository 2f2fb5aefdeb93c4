// Package executor runs one RunSpec end to end: resolve the dataset,
// instantiate the detector, fit, score, evaluate metrics. Every failure
// is contained here and surfaces as a failed RunRecord, never as an
// error that could abort the batch.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/anomalab/anomalab-go/internal/catalog"
	"github.com/anomalab/anomalab-go/internal/detector"
	"github.com/anomalab/anomalab-go/internal/domain"
	"github.com/anomalab/anomalab-go/internal/metric"
)

type Executor struct {
	catalog  catalog.Catalog
	registry *detector.Registry
	logger   *slog.Logger
	seed     int64
}

// New builds an executor. The catalog is typically a per-batch
// catalog.Cache so repeated specs on one dataset resolve it once.
func New(cat catalog.Catalog, registry *detector.Registry, logger *slog.Logger, seed int64) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{catalog: cat, registry: registry, logger: logger, seed: seed}
}

// Execute produces exactly one RunRecord for the spec. The record's
// duration covers fit and score only; metric computation is excluded so
// durations stay comparable across algorithms.
func (e *Executor) Execute(ctx context.Context, spec domain.RunSpec) domain.RunRecord {
	record := domain.RunRecord{Spec: spec, Seed: e.seed}

	dataset, err := e.catalog.Resolve(ctx, spec.DatasetID)
	if err != nil {
		return e.fail(record, err)
	}

	det, err := e.registry.Instantiate(spec.AlgorithmID, spec.Params)
	if err != nil {
		return e.fail(record, err)
	}

	start := time.Now()
	scores, err := fitAndScore(ctx, det, spec.AlgorithmID, dataset.Series)
	record.Duration = time.Since(start)
	if err != nil {
		return e.fail(record, err)
	}
	if len(scores) != len(dataset.Labels) {
		return e.fail(record, &detector.RuntimeError{
			AlgorithmID: spec.AlgorithmID,
			Op:          "score",
			Msg:         fmt.Sprintf("returned %d scores for %d timesteps", len(scores), len(dataset.Labels)),
		})
	}

	normalized := detector.Normalize(scores)
	record.Status = domain.RunStatusSuccess
	record.Metrics = e.evaluate(spec, normalized, dataset.Labels)

	e.logger.Debug("run complete",
		"dataset", spec.DatasetID,
		"anomalies", dataset.AnomalyCount(),
		"algorithm", spec.AlgorithmID,
		"duration", record.Duration,
		"status", record.Status,
	)
	return record
}

// fitAndScore recovers detector panics into a classified runtime error
// so a misbehaving algorithm can never take down the batch.
func fitAndScore(ctx context.Context, det detector.Detector, algorithmID string, series [][]float64) (scores []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			scores = nil
			err = &detector.RuntimeError{
				AlgorithmID: algorithmID,
				Op:          "fit/score",
				Msg:         fmt.Sprintf("panic: %v", r),
			}
		}
	}()
	if err := det.Fit(ctx, series); err != nil {
		return nil, err
	}
	return det.Score(ctx, series)
}

func (e *Executor) evaluate(spec domain.RunSpec, scores []float64, labels []int) []domain.MetricResult {
	results := make([]domain.MetricResult, 0, len(spec.MetricIDs))
	for _, id := range spec.MetricIDs {
		m, err := metric.Build(id)
		if err != nil {
			results = append(results, domain.MetricResult{
				MetricID:   id,
				Undefined:  true,
				Diagnostic: err.Error(),
			})
			continue
		}
		value, err := m.Compute(scores, labels)
		if err != nil {
			diagnostic := err.Error()
			if !errors.Is(err, metric.ErrUndefined) {
				e.logger.Warn("metric computation failed",
					"metric", id,
					"dataset", spec.DatasetID,
					"error", err,
				)
			}
			results = append(results, domain.MetricResult{
				MetricID:   id,
				Undefined:  true,
				Diagnostic: diagnostic,
			})
			continue
		}
		results = append(results, domain.MetricResult{MetricID: id, Value: value})
	}
	return results
}

func (e *Executor) fail(record domain.RunRecord, err error) domain.RunRecord {
	record.Status = domain.RunStatusFailed
	record.Metrics = nil
	record.Error = classify(err)
	e.logger.Warn("run failed",
		"dataset", record.Spec.DatasetID,
		"algorithm", record.Spec.AlgorithmID,
		"error", record.Error,
	)
	return record
}

// classify maps an error to a stable "kind: detail" string. Records
// carry these strings, never raw error chains or stacks.
func classify(err error) string {
	var invalidParam *detector.InvalidParameterError
	var runtimeErr *detector.RuntimeError
	switch {
	case errors.Is(err, catalog.ErrDatasetNotFound):
		return "dataset_not_found: " + err.Error()
	case errors.Is(err, catalog.ErrDatasetCorrupt):
		return "dataset_corrupt: " + err.Error()
	case errors.Is(err, detector.ErrUnknownAlgorithm):
		return "unknown_algorithm: " + err.Error()
	case errors.As(err, &invalidParam):
		return "invalid_parameter: " + err.Error()
	case errors.As(err, &runtimeErr):
		return "detector_runtime: " + err.Error()
	case errors.Is(err, context.Canceled):
		return "canceled: " + err.Error()
	default:
		return "internal: " + err.Error()
	}
}
