package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anomalab/anomalab-go/internal/domain"
)

// DB is the subset of *sql.DB the postgres store needs.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// PostgresStore keeps run records in a shared benchmark_run_records
// table keyed by (batch_label, spec_hash), so several machines can
// contribute to and resume from one result set.
//
// Expected schema:
//
//	CREATE TABLE benchmark_run_records (
//	    batch_label  text        NOT NULL,
//	    spec_hash    text        NOT NULL,
//	    position     integer     NOT NULL,
//	    dataset_id   text        NOT NULL,
//	    algorithm_id text        NOT NULL,
//	    params       jsonb       NOT NULL,
//	    metric_ids   jsonb       NOT NULL,
//	    status       text        NOT NULL,
//	    duration_ns  bigint      NOT NULL,
//	    seed         bigint      NOT NULL,
//	    error        text        NOT NULL DEFAULT '',
//	    metrics      jsonb       NOT NULL,
//	    updated_at   timestamptz NOT NULL,
//	    PRIMARY KEY (batch_label, spec_hash)
//	);
type PostgresStore struct {
	db    DB
	label string
}

func NewPostgresStore(db DB, batchLabel string) (*PostgresStore, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	if strings.TrimSpace(batchLabel) == "" {
		return nil, errors.New("batch label is required")
	}
	return &PostgresStore{db: db, label: batchLabel}, nil
}

type storedMetric struct {
	MetricID   string  `json:"metricId"`
	Value      float64 `json:"value"`
	Undefined  bool    `json:"undefined,omitempty"`
	Diagnostic string  `json:"diagnostic,omitempty"`
}

func (s *PostgresStore) Save(ctx context.Context, table *domain.ResultTable) error {
	now := time.Now().UTC()
	for position, record := range table.Records() {
		if err := record.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", position, err)
		}
		paramsJSON, err := json.Marshal(record.Spec.Params)
		if err != nil {
			return fmt.Errorf("encode params: %w", err)
		}
		metricIDsJSON, err := json.Marshal(record.Spec.MetricIDs)
		if err != nil {
			return fmt.Errorf("encode metric ids: %w", err)
		}
		metrics := make([]storedMetric, 0, len(record.Metrics))
		for _, result := range record.Metrics {
			metrics = append(metrics, storedMetric(result))
		}
		metricsJSON, err := json.Marshal(metrics)
		if err != nil {
			return fmt.Errorf("encode metrics: %w", err)
		}

		_, err = s.db.ExecContext(
			ctx,
			`INSERT INTO benchmark_run_records (
				batch_label,
				spec_hash,
				position,
				dataset_id,
				algorithm_id,
				params,
				metric_ids,
				status,
				duration_ns,
				seed,
				error,
				metrics,
				updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (batch_label, spec_hash) DO UPDATE SET
				position = EXCLUDED.position,
				status = EXCLUDED.status,
				duration_ns = EXCLUDED.duration_ns,
				seed = EXCLUDED.seed,
				error = EXCLUDED.error,
				metrics = EXCLUDED.metrics,
				updated_at = EXCLUDED.updated_at`,
			s.label,
			record.Spec.Hash(),
			position,
			record.Spec.DatasetID,
			record.Spec.AlgorithmID,
			paramsJSON,
			metricIDsJSON,
			string(record.Status),
			record.Duration.Nanoseconds(),
			record.Seed,
			record.Error,
			metricsJSON,
			now,
		)
		if err != nil {
			return fmt.Errorf("upsert record %s: %w", record.Spec.Hash(), err)
		}
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*domain.ResultTable, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT dataset_id, algorithm_id, params, metric_ids, status, duration_ns, seed, error, metrics
		 FROM benchmark_run_records
		 WHERE batch_label = $1
		 ORDER BY position`,
		s.label,
	)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	table := domain.NewResultTable()
	for rows.Next() {
		var (
			spec          domain.RunSpec
			paramsJSON    []byte
			metricIDsJSON []byte
			status        string
			durationNS    int64
			seed          int64
			errMsg        string
			metricsJSON   []byte
		)
		if err := rows.Scan(&spec.DatasetID, &spec.AlgorithmID, &paramsJSON, &metricIDsJSON, &status, &durationNS, &seed, &errMsg, &metricsJSON); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal(paramsJSON, &spec.Params); err != nil {
			return nil, fmt.Errorf("decode params: %w", err)
		}
		if err := json.Unmarshal(metricIDsJSON, &spec.MetricIDs); err != nil {
			return nil, fmt.Errorf("decode metric ids: %w", err)
		}
		var stored []storedMetric
		if err := json.Unmarshal(metricsJSON, &stored); err != nil {
			return nil, fmt.Errorf("decode metrics: %w", err)
		}
		record := domain.RunRecord{
			Spec:     spec,
			Status:   domain.RunStatus(status),
			Duration: time.Duration(durationNS),
			Seed:     seed,
			Error:    errMsg,
		}
		for _, m := range stored {
			record.Metrics = append(record.Metrics, domain.MetricResult(m))
		}
		if err := table.Put(record); err != nil {
			return nil, fmt.Errorf("load record: %w", err)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	if table.Len() == 0 {
		return nil, fmt.Errorf("%w: batch %s", ErrNoPriorResults, s.label)
	}
	return table, nil
}
