// Package catalog resolves dataset ids into labeled time series. Two
// backends exist, a local filesystem directory and an object store
// bucket, both serving the same CSV layout: one header row, one or more
// numeric value columns, and a final is_anomaly column of 0/1 labels.
package catalog

import (
	"context"
	"errors"

	"github.com/anomalab/anomalab-go/internal/domain"
)

var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrDatasetCorrupt  = errors.New("dataset corrupt")
)

// Entry describes one dataset available in a catalog, carrying the
// metadata used by selector predicates.
type Entry struct {
	ID       string
	Metadata map[string]string
}

// Catalog resolves dataset ids. Resolve fails with ErrDatasetNotFound
// for unknown ids and ErrDatasetCorrupt when the stored series and
// labels disagree. Resolution may be slow; callers batching many runs
// should wrap the catalog in a Cache.
type Catalog interface {
	Resolve(ctx context.Context, id string) (domain.Dataset, error)
	List(ctx context.Context) ([]Entry, error)
}

// MatchesMetadata reports whether the entry satisfies every predicate
// in match (exact string equality per key).
func (e Entry) MatchesMetadata(match map[string]string) bool {
	for key, want := range match {
		if e.Metadata[key] != want {
			return false
		}
	}
	return true
}
