package catalog

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/anomalab/anomalab-go/internal/domain"
)

const labelColumn = "is_anomaly"

// readDataset parses the dataset CSV layout shared by all catalog
// backends. Every column left of the is_anomaly column is a numeric
// series attribute.
func readDataset(id string, r io.Reader, metadata map[string]string) (domain.Dataset, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %s: read header: %v", ErrDatasetCorrupt, id, err)
	}
	labelIdx := -1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), labelColumn) {
			labelIdx = i
			break
		}
	}
	if labelIdx < 0 {
		return domain.Dataset{}, fmt.Errorf("%w: %s: missing %s column", ErrDatasetCorrupt, id, labelColumn)
	}
	if labelIdx == 0 && len(header) == 1 {
		return domain.Dataset{}, fmt.Errorf("%w: %s: no value columns", ErrDatasetCorrupt, id)
	}

	var series [][]float64
	var labels []int
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("%w: %s: line %d: %v", ErrDatasetCorrupt, id, line, err)
		}
		if len(record) != len(header) {
			return domain.Dataset{}, fmt.Errorf("%w: %s: line %d has %d fields, want %d", ErrDatasetCorrupt, id, line, len(record), len(header))
		}

		row := make([]float64, 0, len(record)-1)
		for i, field := range record {
			if i == labelIdx {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return domain.Dataset{}, fmt.Errorf("%w: %s: line %d column %q: %v", ErrDatasetCorrupt, id, line, header[i], err)
			}
			row = append(row, value)
		}

		label, err := strconv.Atoi(strings.TrimSpace(record[labelIdx]))
		if err != nil || (label != 0 && label != 1) {
			return domain.Dataset{}, fmt.Errorf("%w: %s: line %d: label %q must be 0 or 1", ErrDatasetCorrupt, id, line, record[labelIdx])
		}

		series = append(series, row)
		labels = append(labels, label)
	}

	dataset := domain.Dataset{ID: id, Series: series, Labels: labels, Metadata: metadata}
	if err := dataset.Validate(); err != nil {
		return domain.Dataset{}, fmt.Errorf("%w: %s: %v", ErrDatasetCorrupt, id, err)
	}
	return dataset, nil
}
