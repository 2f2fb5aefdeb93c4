package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Dataset is one labeled time series resolved from the catalog.
// Series holds one row per timestep, one column per attribute. Labels
// are aligned 1:1 with Series rows, 1 marking an anomalous timestep.
type Dataset struct {
	ID       string
	Series   [][]float64
	Labels   []int
	Metadata map[string]string
}

func (d Dataset) Validate() error {
	if strings.TrimSpace(d.ID) == "" {
		return errors.New("dataset id is required")
	}
	if len(d.Series) == 0 {
		return errors.New("dataset series is empty")
	}
	if len(d.Series) != len(d.Labels) {
		return fmt.Errorf("series length %d does not match labels length %d", len(d.Series), len(d.Labels))
	}
	width := len(d.Series[0])
	if width == 0 {
		return errors.New("dataset series has no attributes")
	}
	for i, row := range d.Series {
		if len(row) != width {
			return fmt.Errorf("series row %d has %d attributes, want %d", i, len(row), width)
		}
	}
	for i, label := range d.Labels {
		if label != 0 && label != 1 {
			return fmt.Errorf("label %d is %d, must be 0 or 1", i, label)
		}
	}
	return nil
}

// AnomalyCount returns the number of anomalous timesteps.
func (d Dataset) AnomalyCount() int {
	count := 0
	for _, label := range d.Labels {
		if label == 1 {
			count++
		}
	}
	return count
}
