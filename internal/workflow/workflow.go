// Package workflow turns a benchmark configuration into a frozen
// result table. An Orchestrator expands the configuration into run
// specs, executes them with bounded parallelism, and assembles the
// records in spec order regardless of completion order. A batch is
// resumable: records from a prior table are merged by spec hash and
// never re-executed.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/anomalab/anomalab-go/internal/catalog"
	"github.com/anomalab/anomalab-go/internal/config"
	"github.com/anomalab/anomalab-go/internal/detector"
	"github.com/anomalab/anomalab-go/internal/domain"
	"github.com/anomalab/anomalab-go/internal/executor"
	"github.com/anomalab/anomalab-go/internal/results"
)

// BatchState reports where a batch currently is in its lifecycle.
type BatchState string

const (
	StatePending   BatchState = "pending"
	StateExpanding BatchState = "expanding"
	StateRunning   BatchState = "running"
	StateCompleted BatchState = "completed"
)

// RunOptions tunes a single batch execution. The zero value runs the
// batch in memory without persistence.
type RunOptions struct {
	// Store, when set, provides prior results for resumption and
	// receives the finished table. With SaveEvery it also receives a
	// snapshot after every completed run.
	Store     results.Store
	SaveEvery bool
}

// Orchestrator executes benchmark batches against a dataset catalog
// and an algorithm registry. It is safe for use by a single batch at a
// time; State may be read concurrently.
type Orchestrator struct {
	catalog  catalog.Catalog
	registry *detector.Registry
	logger   *slog.Logger

	mu    sync.Mutex
	state BatchState
}

func New(cat catalog.Catalog, registry *detector.Registry, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		catalog:  cat,
		registry: registry,
		logger:   logger,
		state:    StatePending,
	}
}

// State returns the lifecycle state of the current batch.
func (o *Orchestrator) State() BatchState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) setState(s BatchState) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
}

// Run executes the batch described by cfg and returns the frozen
// result table. Individual run failures are recorded in the table and
// never abort the batch; only configuration and persistence errors do.
// When ctx is canceled, in-flight runs finish, unstarted runs are
// abandoned, and the partial table is returned frozen so a later batch
// can resume from it.
func (o *Orchestrator) Run(ctx context.Context, cfg config.Config, opts RunOptions) (*domain.ResultTable, error) {
	batchID := uuid.NewString()
	logger := o.logger.With(slog.String("batch_id", batchID))

	o.setState(StateExpanding)
	specs, err := o.Expand(ctx, cfg)
	if err != nil {
		o.setState(StateCompleted)
		return nil, fmt.Errorf("expand batch: %w", err)
	}
	logger.Info("batch expanded",
		slog.Int("runs", len(specs)),
		slog.Int("parallelism", cfg.Parallelism))

	prior := make(map[string]domain.RunRecord)
	if cfg.Resume && opts.Store != nil {
		table, err := opts.Store.Load(ctx)
		switch {
		case errors.Is(err, results.ErrNoPriorResults):
			logger.Info("no prior results, starting fresh")
		case err != nil:
			o.setState(StateCompleted)
			return nil, fmt.Errorf("load prior results: %w", err)
		default:
			for _, rec := range table.Records() {
				prior[rec.Spec.Hash()] = rec
			}
			logger.Info("prior results loaded", slog.Int("records", table.Len()))
		}
	}

	o.setState(StateRunning)
	defer o.setState(StateCompleted)

	cache := catalog.NewCache(o.catalog)
	exec := executor.New(cache, o.registry, logger, cfg.Seed)

	slots := make([]*domain.RunRecord, len(specs))
	var slotMu sync.Mutex

	flush := func() error {
		if opts.Store == nil {
			return nil
		}
		slotMu.Lock()
		table := assemble(specs, slots, prior, false)
		slotMu.Unlock()
		return opts.Store.Save(ctx, table)
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Parallelism)
	for i, spec := range specs {
		if rec, ok := prior[spec.Hash()]; ok {
			logger.Debug("run resumed from prior results",
				slog.String("dataset_id", spec.DatasetID),
				slog.String("algorithm_id", spec.AlgorithmID),
				slog.String("status", string(rec.Status)))
			continue
		}
		if groupCtx.Err() != nil {
			break
		}
		i, spec := i, spec
		group.Go(func() error {
			// cancellation is cooperative between runs only: a run that
			// has started must finish, or its failed record would stand
			// on resume and the resumed table could never match an
			// uninterrupted one
			rec := exec.Execute(context.WithoutCancel(groupCtx), spec)
			slotMu.Lock()
			slots[i] = &rec
			slotMu.Unlock()
			if opts.SaveEvery {
				if err := flush(); err != nil {
					logger.Warn("snapshot save failed", slog.String("error", err.Error()))
				}
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	table := assemble(specs, slots, prior, true)
	logger.Info("batch completed",
		slog.Int("runs", table.Len()),
		slog.Int("abandoned", len(specs)-table.Len()))

	if opts.Store != nil {
		// the partial table of a canceled batch must still reach the
		// store so the next batch can resume from it
		if err := opts.Store.Save(context.WithoutCancel(ctx), table); err != nil {
			return table, fmt.Errorf("save results: %w", err)
		}
	}
	return table, nil
}

// assemble builds a table in spec order from prior records and filled
// slots. Specs whose run never started are skipped, which keeps a
// canceled batch's table valid for resumption.
func assemble(specs []domain.RunSpec, slots []*domain.RunRecord, prior map[string]domain.RunRecord, freeze bool) *domain.ResultTable {
	table := domain.NewResultTable()
	for i, spec := range specs {
		rec, ok := prior[spec.Hash()]
		if !ok {
			if slots[i] == nil {
				continue
			}
			rec = *slots[i]
		}
		if err := table.Put(rec); err != nil {
			// records come from the executor or a validated store,
			// and the table is not frozen yet
			panic(fmt.Sprintf("assemble: %v", err))
		}
	}
	if freeze {
		table.Freeze()
	}
	return table
}
