package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"csvetl/internal/logging"
	"csvetl/internal/metrics"
)

// CopyFn abstracts a backend's bulk insert. It inserts rows (aligned to
// columns) and returns the number of rows reported as inserted.
type CopyFn func(ctx context.Context, columns []string, rows [][]any) (int64, error)

// LoadBatches splits rows into batches of batchSize and calls copyFn once per
// non-empty batch. It returns the running total and the first error.
// Progress is logged after each successful batch.
func LoadBatches(
	ctx context.Context,
	logger *slog.Logger,
	columns []string,
	rows [][]any,
	batchSize int,
	copyFn CopyFn,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("batchSize must be > 0")
	}
	if copyFn == nil {
		return 0, fmt.Errorf("copyFn must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	var (
		total   int64
		batches int64
		start   = time.Now()
		last    = start
	)

	for lo := 0; lo < len(rows); lo += batchSize {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		hi := min(lo+batchSize, len(rows))

		n, err := copyFn(ctx, columns, rows[lo:hi])
		total += n
		if err != nil {
			logger.ErrorContext(ctx, "batch insert failed",
				"batch", batches+1, "first_row", lo, "inserted", n, "total", total, "err", err)
			return total, fmt.Errorf("batch %d (rows %d-%d): %w", batches+1, lo, hi-1, err)
		}

		batches++
		now := time.Now()
		since := now.Sub(last)
		rps := float64(0)
		if since > 0 {
			rps = float64(n) / since.Seconds()
		}
		logger.DebugContext(ctx, "batch inserted",
			"batch", batches,
			"rps", int64(rps),
			logging.Count("inserted", n),
			logging.Count("total", total),
			"elapsed", now.Sub(start).Truncate(time.Millisecond),
		)
		last = now
	}
	return total, nil
}

// LoadOptions carries the per-run settings of Load.
type LoadOptions struct {
	// Kind selects the DDL bootstrapper.
	Kind string

	// Job labels metrics.
	Job string

	// BatchSize is the number of rows per CopyFrom call.
	BatchSize int

	Logger *slog.Logger
}

// Load writes spec.Source into the target table through repo, inside the
// single transaction repo holds:
//
//  1. ensure the table exists (dropping it first when spec.Replace);
//  2. bulk insert every row in batches of opts.BatchSize;
//  3. verify the inserted count equals the number of rows;
//  4. commit.
//
// On any error nothing is committed and the returned count is 0; the
// caller's repo.Close rolls back.
func Load(ctx context.Context, repo Repository, spec TableSpec, opts LoadOptions) (int64, error) {
	counts, err := LoadTables(ctx, repo, []TableSpec{spec}, opts)
	if err != nil {
		return 0, err
	}
	return counts[0], nil
}

// LoadTables is Load for several tables sharing one transaction. Every table
// is ensured before the first insert, so backends whose DDL commits
// implicitly never split the load. Counts are returned in specs order; on
// any error nothing is committed and counts is nil.
func LoadTables(ctx context.Context, repo Repository, specs []TableSpec, opts LoadOptions) ([]int64, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("load: no tables")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	seen := make(map[string]struct{}, len(specs))
	for _, spec := range specs {
		if spec.Source == nil {
			return nil, fmt.Errorf("load %s: no source table", spec.Table)
		}
		if _, dup := seen[spec.Table]; dup {
			return nil, fmt.Errorf("load %s: table listed twice", spec.Table)
		}
		seen[spec.Table] = struct{}{}
	}

	for _, spec := range specs {
		if err := EnsureTable(ctx, opts.Kind, repo, spec); err != nil {
			return nil, fmt.Errorf("ensure table %s: %w", spec.Table, err)
		}
		logger.InfoContext(ctx, "target table ready", "table", spec.Table, "replace", spec.Replace)
	}

	var batches int64
	defer func() { metrics.RecordBatches(opts.Job, batches) }()

	counts := make([]int64, len(specs))
	for i, spec := range specs {
		copyFn := func(ctx context.Context, columns []string, rows [][]any) (int64, error) {
			n, err := repo.CopyFrom(ctx, spec.Table, columns, rows)
			if err == nil {
				batches++
			}
			return n, err
		}

		want := int64(spec.Source.Len())
		got, err := LoadBatches(ctx, logger, spec.Source.Columns, spec.Source.Values(), opts.BatchSize, copyFn)
		if err != nil {
			return nil, fmt.Errorf("insert into %s: %w", spec.Table, err)
		}
		if got != want {
			return nil, fmt.Errorf("insert into %s: inserted %d rows, want %d", spec.Table, got, want)
		}
		counts[i] = got
	}

	if err := repo.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit %s: %w", specs[0].Table, err)
	}
	for i, spec := range specs {
		logger.InfoContext(ctx, "rows committed",
			"table", spec.Table, logging.Count("rows", counts[i]))
	}
	logger.DebugContext(ctx, "load committed", "tables", len(specs), "batches", batches)
	return counts, nil
}
