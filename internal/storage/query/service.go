// Package query runs analytical queries over persisted parquet runs using
// an in-memory DuckDB instance.
package query

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/xtxerr/trackrec/internal/storage/parquet"
)

// Options configures the query service.
type Options struct {
	// MemoryLimit caps DuckDB memory, e.g. "512MB". Empty keeps the default.
	MemoryLimit string
}

// Service provides query capabilities over stored runs.
type Service struct {
	mu sync.Mutex
	db *sql.DB

	// Statistics
	stats Stats
}

// Stats holds query statistics.
type Stats struct {
	QueriesExecuted int64
	RowsReturned    int64
	Errors          int64
}

// AxisStats summarizes one coordinate column.
type AxisStats struct {
	Name string
	Min  float64
	Max  float64
	Avg  float64
}

// Description summarizes a persisted run.
type Description struct {
	Rows      int64
	FirstStep int64
	LastStep  int64
	Axes      []AxisStats
}

// New creates a new query service.
func New(opts Options) (*Service, error) {
	// Open in-memory DuckDB database
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	if opts.MemoryLimit != "" {
		_, err = db.Exec(fmt.Sprintf("SET memory_limit='%s'", opts.MemoryLimit))
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("set memory limit: %w", err)
		}
	}

	return &Service{db: db}, nil
}

// Close closes the query service.
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Describe returns row count, step range and per-axis statistics of the
// parquet file at path.
func (s *Service) Describe(ctx context.Context, path string) (*Description, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT
			count(*),
			min(step), max(step),
			min(x), max(x), avg(x),
			min(y), max(y), avg(y)
		FROM read_parquet($1)
	`

	var (
		d                   Description
		firstStep, lastStep sql.NullInt64
		xMin, xMax, xAvg    sql.NullFloat64
		yMin, yMax, yAvg    sql.NullFloat64
	)

	err := s.db.QueryRowContext(ctx, query, path).Scan(
		&d.Rows,
		&firstStep, &lastStep,
		&xMin, &xMax, &xAvg,
		&yMin, &yMax, &yAvg,
	)
	if err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("describe %s: %w", path, err)
	}

	d.FirstStep = firstStep.Int64
	d.LastStep = lastStep.Int64
	d.Axes = []AxisStats{
		{Name: "x", Min: xMin.Float64, Max: xMax.Float64, Avg: xAvg.Float64},
		{Name: "y", Min: yMin.Float64, Max: yMax.Float64, Avg: yAvg.Float64},
	}

	s.stats.QueriesExecuted++
	s.stats.RowsReturned++
	return &d, nil
}

// Head returns the first limit rows ordered by step.
func (s *Service) Head(ctx context.Context, path string, limit int) ([]parquet.SampleRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT step, x, y FROM read_parquet($1) ORDER BY step LIMIT $2`,
		path, limit,
	)
	if err != nil {
		s.stats.Errors++
		return nil, fmt.Errorf("head %s: %w", path, err)
	}
	defer rows.Close()

	var out []parquet.SampleRow
	for rows.Next() {
		var r parquet.SampleRow
		if err := rows.Scan(&r.Step, &r.X, &r.Y); err != nil {
			s.stats.Errors++
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		s.stats.Errors++
		return nil, err
	}

	s.stats.QueriesExecuted++
	s.stats.RowsReturned += int64(len(out))
	return out, nil
}

// Stats returns query statistics.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}
