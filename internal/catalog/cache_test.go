package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/anomalab/anomalab-go/internal/domain"
)

type countingCatalog struct {
	resolves atomic.Int64
}

func (c *countingCatalog) Resolve(ctx context.Context, id string) (domain.Dataset, error) {
	c.resolves.Add(1)
	if id == "missing" {
		return domain.Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return domain.Dataset{
		ID:     id,
		Series: [][]float64{{1}, {2}},
		Labels: []int{0, 1},
	}, nil
}

func (c *countingCatalog) List(ctx context.Context) ([]Entry, error) {
	return []Entry{{ID: "d1"}}, nil
}

func TestCacheResolvesAtMostOnce(t *testing.T) {
	inner := &countingCatalog{}
	cache := NewCache(inner)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.Resolve(context.Background(), "d1"); err != nil {
				t.Errorf("Resolve: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := inner.resolves.Load(); got != 1 {
		t.Fatalf("backend resolves=%d, want 1", got)
	}
}

func TestCacheCachesFailures(t *testing.T) {
	inner := &countingCatalog{}
	cache := NewCache(inner)

	for i := 0; i < 3; i++ {
		_, err := cache.Resolve(context.Background(), "missing")
		if !errors.Is(err, ErrDatasetNotFound) {
			t.Fatalf("err=%v, want ErrDatasetNotFound", err)
		}
	}
	if got := inner.resolves.Load(); got != 1 {
		t.Fatalf("backend resolves=%d, want 1", got)
	}
}
