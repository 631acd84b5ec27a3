package ingestion

import (
	"context"
	"fmt"
	"hash/fnv"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tradesummary/internal/aggregator"
	"github.com/guttosm/tradesummary/internal/domain/models"
	"github.com/guttosm/tradesummary/internal/logger"
	"github.com/guttosm/tradesummary/internal/report"
)

const (
	maxWorkers      = 64
	partitionBuffer = 1024
)

// Options controls how a trade stream is read.
type Options struct {
	Comma   rune // field delimiter, default ','
	Header  bool // skip the first row
	Workers int  // symbol partitions; <=1 runs sequentially, 0 in ProcessFile means NumCPU
}

// DefaultOptions reads comma-separated rows without header, sequentially.
func DefaultOptions() Options {
	return Options{Comma: ',', Workers: 1}
}

// Result is the finished table of one run plus counters for logging/persistence.
type Result struct {
	Rows    []models.Summary
	Records int
	Symbols int
	Elapsed time.Duration
}

func newResult(agg *aggregator.Aggregator, start time.Time) *Result {
	return &Result{
		Rows:    agg.Finalize(),
		Records: agg.Records(),
		Symbols: agg.Len(),
		Elapsed: time.Since(start),
	}
}

// Summarize folds every row of r into a single aggregator, in arrival order.
// The first malformed row aborts the run; no partial result is returned.
func Summarize(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	start := time.Now()
	agg := aggregator.New()

	err := ReadRecords(ctx, r, opts.comma(), opts.Header, func(_ int, fields []string) error {
		return agg.UpdateFields(fields)
	})
	if err != nil {
		return nil, err
	}
	return newResult(agg, start), nil
}

type partitionRow struct {
	line   int
	fields []string
}

// SummarizeParallel partitions rows by symbol across opts.Workers aggregators.
//
// One reader goroutine hashes the symbol column and hands the row to the
// owning partition, so every symbol's trades stay on one worker in arrival
// order. Partitions are disjoint by symbol and are merged at the end.
//
// errgroup cancels the reader and siblings on the first error. With several
// bad rows in flight, the reported one is the first to fail, which is not
// necessarily the earliest in the file.
func SummarizeParallel(ctx context.Context, r io.Reader, opts Options) (*Result, error) {
	workers := clampWorkers(opts.Workers)
	if workers == 1 {
		return Summarize(ctx, r, opts)
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)

	parts := make([]*aggregator.Aggregator, workers)
	queues := make([]chan partitionRow, workers)
	for i := range workers {
		agg := aggregator.New()
		in := make(chan partitionRow, partitionBuffer)
		parts[i], queues[i] = agg, in

		g.Go(func() error {
			for row := range in {
				if err := agg.UpdateFields(row.fields); err != nil {
					return fmt.Errorf("line %d: %w", row.line, err)
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()
		return ReadRecords(gctx, r, opts.comma(), opts.Header, func(line int, fields []string) error {
			// Rows without a symbol column still go to a worker so they fail
			// with the aggregator's error.
			idx := 0
			if len(fields) > 1 {
				idx = partition(fields[1], workers)
			}
			select {
			case queues[idx] <- partitionRow{line: line, fields: slices.Clone(fields)}:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := aggregator.New()
	for _, p := range parts {
		if err := merged.Merge(p); err != nil {
			return nil, err
		}
	}
	return newResult(merged, start), nil
}

// ProcessFile summarizes the trades in inPath and writes the table to outPath.
//
// Behavior:
//   - Workers == 0 uses min(NumCPU, 64) partitions; 1 runs sequentially.
//   - The table is written to a temp file in the output directory and renamed
//     into place, so a failed run never leaves a partial output file.
//
// Returns:
//   - *Result: the finished table and counters.
//   - error: first error encountered (if any).
func ProcessFile(ctx context.Context, inPath, outPath string, opts Options) (*Result, error) {
	if opts.Workers == 0 {
		opts.Workers = runtime.NumCPU()
	}
	opts.Workers = clampWorkers(opts.Workers)

	in, err := os.Open(inPath)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer func() { _ = in.Close() }()

	logger.L().Info().Str("input", inPath).Str("output", outPath).Int("workers", opts.Workers).Msg("summary start")

	res, err := SummarizeParallel(ctx, in, opts)
	if err != nil {
		logger.L().Error().Str("input", inPath).Err(err).Msg("summary failed")
		return nil, fmt.Errorf("file %s: %w", inPath, err)
	}

	if err := writeAtomic(outPath, res.Rows, opts.comma()); err != nil {
		logger.L().Error().Str("output", outPath).Err(err).Msg("write output failed")
		return nil, fmt.Errorf("file %s: %w", outPath, err)
	}

	logger.L().Info().
		Str("input", inPath).
		Int("records", res.Records).
		Int("symbols", res.Symbols).
		Dur("elapsed", res.Elapsed).
		Msg("summary done")
	return res, nil
}

func writeAtomic(path string, rows []models.Summary, comma rune) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := report.WriteCSV(tmp, rows, comma); err != nil {
		cleanup()
		return err
	}
	// CreateTemp opens with 0600; the report is a regular shared output file.
	if err := tmp.Chmod(0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

func partition(symbol string, n int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(symbol))
	return int(h.Sum32() % uint32(n))
}

func clampWorkers(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}

func (o Options) comma() rune {
	if o.Comma == 0 {
		return ','
	}
	return o.Comma
}
