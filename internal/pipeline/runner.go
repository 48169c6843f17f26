// Package pipeline orchestrates the fetch-then-reconcile run: a parallel
// batch download per split, followed by a parallel validation pass that
// converges the on-disk file set and the metadata tables to a consistent
// state.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MorenoLaQuatra/audiocaps-download/internal/clip"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/dataset"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/probe"
)

// Config is the immutable run configuration shared by every stage. One
// Config per run guarantees fetch and reconcile agree on format, quality and
// layout for the run's whole lifetime.
type Config struct {
	Root     string
	Workers  int // bounded pool width per batch; values < 1 mean sequential
	Format   clip.Format
	Quality  clip.Quality
	Progress bool
}

// workerCount normalizes the configured pool width.
func (c Config) workerCount() int {
	if c.Workers < 1 {
		return 1
	}
	return c.Workers
}

// Loader provides the per-split metadata tables. *dataset.Loader implements
// it.
type Loader interface {
	Load(ctx context.Context) (dataset.Tables, error)
}

// Fetcher downloads one row's clip and knows where artifacts live.
// *clip.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, row dataset.Row, dir string) (clip.Status, error)
	DestPath(dir, id string) string
}

// Checker decides clip validity. *probe.Checker implements it.
type Checker interface {
	Check(ctx context.Context, path string) probe.Verdict
}

// Runner executes a full pipeline run: load, fetch per split, reconcile per
// split, persist the reconciled CSVs.
type Runner struct {
	cfg     Config
	loader  Loader
	fetcher Fetcher
	checker Checker
	stderr  io.Writer
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStderr sets the diagnostics writer (for testing).
func WithStderr(w io.Writer) RunnerOption {
	return func(r *Runner) { r.stderr = w }
}

// NewRunner creates a Runner over the given collaborators.
func NewRunner(cfg Config, loader Loader, fetcher Fetcher, checker Checker, opts ...RunnerOption) *Runner {
	r := &Runner{
		cfg:     cfg,
		loader:  loader,
		fetcher: fetcher,
		checker: checker,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes the pipeline end to end. Per-row failures are tallied, never
// fatal; Run only returns an error for metadata unavailability, an unusable
// data root, or context cancellation. Re-invoking Run on the same root is
// safe: existing clips are skipped and invalid ones were already removed.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	if err := ensureLayout(r.cfg.Root); err != nil {
		return Summary{}, err
	}

	fmt.Fprintln(r.stderr, "Loading metadata...")
	tables, err := r.loader.Load(ctx)
	if err != nil {
		return Summary{}, err
	}

	summary := Summary{Splits: make([]SplitReport, 0, len(dataset.Splits))}

	// Fetch stage: one bounded batch per split, splits strictly in order.
	fetchStart := time.Now()
	for _, split := range dataset.Splits {
		table := tables.BySplit(split)
		fmt.Fprintf(r.stderr, "Downloading the %s split (%d rows)...\n", split, table.Len())

		stats, err := r.fetchSplit(ctx, table, split.Dir(r.cfg.Root))
		if err != nil {
			return summary, err
		}
		summary.Splits = append(summary.Splits, SplitReport{
			Split: split,
			Rows:  table.Len(),
			Fetch: stats,
		})
	}
	summary.FetchElapsed = time.Since(fetchStart)

	for i := range summary.Splits {
		report := &summary.Splits[i]
		report.FilesBefore = countFiles(report.Split.Dir(r.cfg.Root))
		fmt.Fprintf(r.stderr, "%s: %d files on disk before validation (fetched %d, skipped %d, failed %d)\n",
			report.Split, report.FilesBefore,
			report.Fetch.Fetched, report.Fetch.Skipped, report.Fetch.Failed)
	}
	fmt.Fprintf(r.stderr, "Download time: %.2fs\n", summary.FetchElapsed.Seconds())

	// Reconcile stage: validate, delete invalid files, persist filtered CSVs.
	for i, split := range dataset.Splits {
		table := tables.BySplit(split)
		fmt.Fprintf(r.stderr, "Validating the %s split...\n", split)

		updated, stats, err := r.reconcileSplit(ctx, table, split.Dir(r.cfg.Root))
		if err != nil {
			return summary, err
		}
		summary.Splits[i].Reconcile = stats

		if err := dataset.WriteCSV(split.CSVPath(r.cfg.Root), updated); err != nil {
			return summary, err
		}
		fmt.Fprintf(r.stderr, "%s: kept %d of %d rows (dropped %d, deleted %d invalid files)\n",
			split, stats.Kept, table.Len(), stats.Dropped, stats.Deleted)
	}

	fmt.Fprintf(r.stderr, "Done: %d clips across all splits.\n", summary.TotalKept())
	return summary, nil
}

// fetchSplit downloads every missing clip of one split through a bounded
// worker pool. Converter failures are counted and logged; only context
// cancellation stops the batch.
func (r *Runner) fetchSplit(ctx context.Context, t dataset.Table, dir string) (FetchStats, error) {
	var fetched, skipped, failed atomic.Int64

	sem := make(chan struct{}, r.cfg.workerCount())
	g, ctx := errgroup.WithContext(ctx)

	bar, wait := r.newBar(ctx, "fetch "+string(t.Split), t.Len())
	defer wait()

	for _, row := range t.Rows {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()
			defer bar.Increment()

			status, err := r.fetcher.Fetch(ctx, row, dir)
			switch {
			case err != nil:
				failed.Add(1)
				fmt.Fprintf(r.stderr, "warning: %v\n", err)
			case status == clip.StatusSkipped:
				skipped.Add(1)
			default:
				fetched.Add(1)
			}
			return nil
		})
	}

	err := g.Wait()
	stats := FetchStats{
		Fetched: int(fetched.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}
	return stats, err
}

// ensureLayout creates the data root and one directory per split.
func ensureLayout(root string) error {
	if root == "" {
		return fmt.Errorf("data root not set")
	}
	if err := os.MkdirAll(root, 0750); err != nil {
		return fmt.Errorf("creating data root: %w", err)
	}
	for _, split := range dataset.Splits {
		if err := os.MkdirAll(split.Dir(root), 0750); err != nil {
			return fmt.Errorf("creating %s directory: %w", split, err)
		}
	}
	return nil
}

// countFiles reports the number of regular files in dir; 0 on any error
// (the count is informational only).
func countFiles(dir string) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if !e.IsDir() {
			n++
		}
	}
	return n
}
