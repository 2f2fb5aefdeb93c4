package domain

import (
	"errors"
	"time"
)

// RunStatus is the terminal outcome of one RunSpec execution.
type RunStatus string

const (
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// MetricResult is the value of one metric for one run. Undefined marks
// a metric whose precondition did not hold on this dataset; an undefined
// value is never the same thing as zero.
type MetricResult struct {
	MetricID   string
	Value      float64
	Undefined  bool
	Diagnostic string
}

// RunRecord is the immutable outcome of executing one RunSpec. Metrics
// is empty when Status is failed; Error carries a classified message and
// is present exactly when Status is failed. Duration covers fit and
// score only, never metric computation.
type RunRecord struct {
	Spec     RunSpec
	Status   RunStatus
	Metrics  []MetricResult
	Duration time.Duration
	Error    string
	Seed     int64
}

func (r RunRecord) Validate() error {
	if err := r.Spec.Validate(); err != nil {
		return err
	}
	switch r.Status {
	case RunStatusSuccess:
		if r.Error != "" {
			return errors.New("successful record must not carry an error")
		}
	case RunStatusFailed:
		if r.Error == "" {
			return errors.New("failed record requires an error")
		}
		if len(r.Metrics) != 0 {
			return errors.New("failed record must not carry metric results")
		}
	default:
		return errors.New("record status must be success or failed")
	}
	return nil
}
