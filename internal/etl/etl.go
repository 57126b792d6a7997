// Package etl runs one pipeline: extract the CSV source into a record table,
// apply the transform chain, and load the result into the target table.
//
// Each stage's failure is wrapped once with its etlerr stage so the CLI can
// pick the exit status. The database is touched only after the transform
// stage succeeded.
package etl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"csvetl/internal/config"
	"csvetl/internal/datasource"
	"csvetl/internal/datasource/file"
	"csvetl/internal/etlerr"
	"csvetl/internal/logging"
	"csvetl/internal/metrics"
	"csvetl/internal/parser"
	"csvetl/internal/parser/csv"
	"csvetl/internal/storage"
	"csvetl/internal/transformer"
	"csvetl/pkg/records"
)

// Summary reports what a run did.
type Summary struct {
	RunID       string
	Job         string
	Extracted   int64
	Transformed int64
	Dropped     int64
	Loaded      int64
	Duration    time.Duration
}

// Seams for tests.
var (
	openSource    = func(path string) datasource.Source { return file.NewLocal(path) }
	newRepository = storage.New
)

// Run executes the pipeline described by cfg. The returned error, if any,
// is an *etlerr.Error naming the failed stage.
func Run(ctx context.Context, cfg config.Config) (Summary, error) {
	start := time.Now()
	p := cfg.Pipeline
	sum := Summary{RunID: uuid.NewString(), Job: p.JobName()}
	logger := slog.Default().With("run_id", sum.RunID, "job", sum.Job)

	// Everything the configuration can still get wrong is checked before the
	// source is opened.
	prs, err := newParser(p.Parser)
	if err != nil {
		return sum, etlerr.Configuration("parser", err)
	}
	chain, err := transformer.Build(p.Transform)
	if err != nil {
		return sum, etlerr.Configuration("transforms", err)
	}

	logger.InfoContext(ctx, "run started",
		"source", p.Source(), "table", p.TableName, "database", cfg.Database.String(),
		"steps", chain.Names())

	done := metrics.StartStep(sum.Job, "extract")
	tbl, err := extract(ctx, openSource(p.Source()), prs)
	done(err)
	if err != nil {
		logger.ErrorContext(ctx, "extract failed", "err", err)
		return sum, etlerr.Extraction("extract "+p.Source(), err)
	}
	sum.Extracted = int64(tbl.Len())
	metrics.RecordRow(sum.Job, metrics.KindExtracted, sum.Extracted)
	logger.InfoContext(ctx, "extracted", logging.Count("rows", sum.Extracted), "columns", len(tbl.Columns))

	done = metrics.StartStep(sum.Job, "transform")
	out, err := chain.Apply(tbl)
	done(err)
	if err != nil {
		logger.ErrorContext(ctx, "transform failed", "err", err)
		return sum, etlerr.Transformation("transform", err)
	}
	sum.Transformed = int64(out.Len())
	sum.Dropped = sum.Extracted - sum.Transformed
	metrics.RecordRow(sum.Job, metrics.KindTransformed, sum.Transformed)
	metrics.RecordRow(sum.Job, metrics.KindDropped, sum.Dropped)
	logger.InfoContext(ctx, "transformed",
		logging.Count("rows", sum.Transformed), logging.Count("dropped", sum.Dropped), "columns", out.Columns)

	done = metrics.StartStep(sum.Job, "load")
	sum.Loaded, err = load(ctx, logger, cfg, chain, tbl, out)
	done(err)
	if err != nil {
		logger.ErrorContext(ctx, "load failed", "err", err)
		return sum, err
	}
	metrics.RecordRow(sum.Job, metrics.KindLoaded, sum.Loaded)

	sum.Duration = time.Since(start)
	logger.InfoContext(ctx, "run finished",
		logging.Count("loaded", sum.Loaded), "duration", sum.Duration.Truncate(time.Millisecond))
	return sum, nil
}

func newParser(p config.Parser) (parser.Parser, error) {
	switch kind := p.Kind; kind {
	case "", "csv":
		return csv.NewParser(csv.OptionsFrom(p.Options)), nil
	default:
		return nil, fmt.Errorf("unsupported parser kind %q", kind)
	}
}

func extract(ctx context.Context, src datasource.Source, prs parser.Parser) (*records.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return prs.Parse(rc)
}

// load opens the repository, writes the cleaned table (and the raw staging
// table when configured) and commits once. The repository is always closed,
// which rolls back anything left uncommitted.
func load(ctx context.Context, logger *slog.Logger, cfg config.Config, chain transformer.Chain, raw, tbl *records.Table) (int64, error) {
	p := cfg.Pipeline
	repo, err := newRepository(ctx, storage.Config{
		Kind:     cfg.Database.Driver,
		Database: cfg.Database,
	})
	if err != nil {
		return 0, etlerr.Load("connect "+cfg.Database.String(), err)
	}
	defer func() {
		if cerr := repo.Close(); cerr != nil {
			logger.WarnContext(ctx, "close repository", "err", cerr)
		}
	}()

	replace := p.Load.LoadMode() == config.ModeReplace
	var specs []storage.TableSpec
	if p.Load.RawTable != "" {
		specs = append(specs, storage.TableSpec{Table: p.Load.RawTable, Source: raw, Replace: replace})
	}
	specs = append(specs, storage.TableSpec{
		Table:      p.TableName,
		Source:     tbl,
		PrimaryKey: p.Load.PrimaryKey,
		NotNull:    transformer.Required(chain),
		Replace:    replace,
	})

	counts, err := storage.LoadTables(ctx, repo, specs, storage.LoadOptions{
		Kind:      cfg.Database.Driver,
		Job:       p.JobName(),
		BatchSize: p.Load.Batch(),
		Logger:    logger,
	})
	if err != nil {
		// Nothing was committed.
		return 0, etlerr.Load("load "+p.TableName, err)
	}
	return counts[len(counts)-1], nil
}
