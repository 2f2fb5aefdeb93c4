// Package results persists frozen result tables and loads prior ones
// for resume mode. The CSV form is the canonical flat export: one row
// per run record, parameters flattened into param: columns and one
// metric: column per requested metric, with undefined values written as
// an explicit sentinel, never as zero.
package results

import (
	"context"
	"errors"

	"github.com/anomalab/anomalab-go/internal/domain"
)

// ErrNoPriorResults is returned by Load when the store holds nothing,
// e.g. a first run with resume enabled.
var ErrNoPriorResults = errors.New("no prior results")

type Store interface {
	Save(ctx context.Context, table *domain.ResultTable) error
	Load(ctx context.Context) (*domain.ResultTable, error)
}
