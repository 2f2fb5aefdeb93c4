package results

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/anomalab/anomalab-go/internal/domain"
)

const (
	colDataset   = "dataset_id"
	colAlgorithm = "algorithm_id"
	colStatus    = "status"
	colDuration  = "duration"
	colSeed      = "seed"
	colError     = "error"
	colMetricIDs = "metric_ids"

	paramPrefix  = "param:"
	metricPrefix = "metric:"

	// undefinedSentinel marks a requested metric whose precondition did
	// not hold. An empty cell means the metric was not requested.
	undefinedSentinel = "NA"
)

// CSVStore serializes a result table to one CSV file and reads it back
// losslessly, including run spec identity, so a prior file can seed
// resume mode.
type CSVStore struct {
	path string
}

func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func (s *CSVStore) Save(ctx context.Context, table *domain.ResultTable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	paramCols := table.ParamColumns()
	metricCols := table.MetricColumns()

	header := []string{colDataset, colAlgorithm, colStatus, colDuration, colSeed, colError, colMetricIDs}
	for _, name := range paramCols {
		header = append(header, paramPrefix+name)
	}
	for _, id := range metricCols {
		header = append(header, metricPrefix+id)
	}

	rows := [][]string{header}
	for _, record := range table.Records() {
		rows = append(rows, recordRow(record, paramCols, metricCols))
	}

	// Write to a sibling temp file and rename so an interrupted save
	// never truncates a resumable prior file.
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp results file: %w", err)
	}
	writer := csv.NewWriter(tmp)
	if err := writer.WriteAll(rows); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close results file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace results file: %w", err)
	}
	return nil
}

func recordRow(record domain.RunRecord, paramCols, metricCols []string) []string {
	row := []string{
		record.Spec.DatasetID,
		record.Spec.AlgorithmID,
		string(record.Status),
		record.Duration.String(),
		strconv.FormatInt(record.Seed, 10),
		record.Error,
		strings.Join(record.Spec.MetricIDs, ";"),
	}
	for _, name := range paramCols {
		if value, ok := record.Spec.Params[name]; ok {
			row = append(row, strconv.FormatFloat(value, 'g', -1, 64))
		} else {
			row = append(row, "")
		}
	}
	byID := make(map[string]domain.MetricResult, len(record.Metrics))
	for _, result := range record.Metrics {
		byID[result.MetricID] = result
	}
	for _, id := range metricCols {
		result, ok := byID[id]
		switch {
		case ok && result.Undefined:
			cell := undefinedSentinel
			if result.Diagnostic != "" {
				cell += ": " + result.Diagnostic
			}
			row = append(row, cell)
		case ok:
			row = append(row, strconv.FormatFloat(result.Value, 'g', -1, 64))
		default:
			// Not requested, or requested but the run failed before
			// metrics ran; the failed status disambiguates.
			row = append(row, "")
		}
	}
	return row
}

func (s *CSVStore) Load(ctx context.Context) (*domain.ResultTable, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoPriorResults, s.path)
		}
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrNoPriorResults, s.path)
	}

	header := rows[0]
	fixed := make(map[string]int, len(header))
	var paramCols, metricCols []indexedColumn
	for i, name := range header {
		switch {
		case strings.HasPrefix(name, paramPrefix):
			paramCols = append(paramCols, indexedColumn{idx: i, name: strings.TrimPrefix(name, paramPrefix)})
		case strings.HasPrefix(name, metricPrefix):
			metricCols = append(metricCols, indexedColumn{idx: i, name: strings.TrimPrefix(name, metricPrefix)})
		default:
			fixed[name] = i
		}
	}
	for _, required := range []string{colDataset, colAlgorithm, colStatus, colDuration, colSeed, colError, colMetricIDs} {
		if _, ok := fixed[required]; !ok {
			return nil, fmt.Errorf("results file missing column %q", required)
		}
	}

	table := domain.NewResultTable()
	for line, row := range rows[1:] {
		record, err := parseRecord(row, fixed, paramCols, metricCols)
		if err != nil {
			return nil, fmt.Errorf("results row %d: %w", line+2, err)
		}
		if err := table.Put(record); err != nil {
			return nil, fmt.Errorf("results row %d: %w", line+2, err)
		}
	}
	return table, nil
}

type indexedColumn struct {
	idx  int
	name string
}

func parseRecord(row []string, fixed map[string]int, paramCols, metricCols []indexedColumn) (domain.RunRecord, error) {
	duration, err := time.ParseDuration(row[fixed[colDuration]])
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse duration: %w", err)
	}
	seed, err := strconv.ParseInt(row[fixed[colSeed]], 10, 64)
	if err != nil {
		return domain.RunRecord{}, fmt.Errorf("parse seed: %w", err)
	}

	spec := domain.RunSpec{
		DatasetID:   row[fixed[colDataset]],
		AlgorithmID: row[fixed[colAlgorithm]],
	}
	if raw := row[fixed[colMetricIDs]]; raw != "" {
		spec.MetricIDs = strings.Split(raw, ";")
	}
	for _, col := range paramCols {
		cell := row[col.idx]
		if cell == "" {
			continue
		}
		value, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return domain.RunRecord{}, fmt.Errorf("parse param %s: %w", col.name, err)
		}
		if spec.Params == nil {
			spec.Params = make(map[string]float64)
		}
		spec.Params[col.name] = value
	}

	record := domain.RunRecord{
		Spec:     spec,
		Status:   domain.RunStatus(row[fixed[colStatus]]),
		Duration: duration,
		Seed:     seed,
		Error:    row[fixed[colError]],
	}
	if record.Status == domain.RunStatusFailed {
		return record, nil
	}

	byID := make(map[string]indexedColumn, len(metricCols))
	for _, col := range metricCols {
		byID[col.name] = col
	}
	// Rebuild metric results in the spec's metric order so a loaded
	// table matches the one that was saved.
	for _, id := range spec.MetricIDs {
		col, ok := byID[id]
		if !ok {
			continue
		}
		cell := row[col.idx]
		switch {
		case cell == undefinedSentinel || strings.HasPrefix(cell, undefinedSentinel+": "):
			result := domain.MetricResult{MetricID: id, Undefined: true}
			if diag, ok := strings.CutPrefix(cell, undefinedSentinel+": "); ok {
				result.Diagnostic = diag
			}
			record.Metrics = append(record.Metrics, result)
		case cell == "":
			continue
		default:
			value, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return domain.RunRecord{}, fmt.Errorf("parse metric %s: %w", id, err)
			}
			record.Metrics = append(record.Metrics, domain.MetricResult{MetricID: id, Value: value})
		}
	}
	return record, nil
}
