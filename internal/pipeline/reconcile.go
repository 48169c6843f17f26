package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/MorenoLaQuatra/audiocaps-download/internal/dataset"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/probe"
)

// reconcileSplit validates every row's clip with a bounded worker pool,
// deletes invalid files, and returns a new table containing only rows whose
// clip validated, in original row order.
//
// Each worker writes only its own index of the keep slice, so the result
// depends solely on the per-row verdicts, not on task interleaving. A row
// whose clip was never fetched validates as missing and is excluded without
// any dedicated branch. Deletion is best-effort: a file that cannot be
// removed is logged and left for a future reconcile pass, and its row is
// still dropped.
func (r *Runner) reconcileSplit(ctx context.Context, t dataset.Table, dir string) (dataset.Table, ReconcileStats, error) {
	keep := make([]bool, t.Len())
	var deleted atomic.Int64

	sem := make(chan struct{}, r.cfg.workerCount())
	g, ctx := errgroup.WithContext(ctx)

	bar, wait := r.newBar(ctx, "check "+string(t.Split), t.Len())
	defer wait()

	for i, row := range t.Rows {
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { <-sem }()
			defer bar.Increment()

			path := r.fetcher.DestPath(dir, row.ID)
			verdict := r.checker.Check(ctx, path)
			if verdict.Valid {
				keep[i] = true
				return nil
			}

			switch verdict.Reason {
			case probe.ReasonMissing:
				// Nothing on disk to clean up.
			case probe.ReasonDecodeFailed:
				fmt.Fprintf(r.stderr, "invalid clip %s (%s: %v), deleting\n", row.ID, verdict.Reason, verdict.Cause)
				r.removeArtifact(path, &deleted)
			default:
				fmt.Fprintf(r.stderr, "invalid clip %s (%s), deleting\n", row.ID, verdict.Reason)
				r.removeArtifact(path, &deleted)
			}
			return nil
		})
	}

	err := g.Wait()

	updated := t.Filter(keep)
	stats := ReconcileStats{
		Kept:    updated.Len(),
		Dropped: t.Len() - updated.Len(),
		Deleted: int(deleted.Load()),
	}
	return updated, stats, err
}

// removeArtifact deletes an invalid clip so a future run's fetch (which only
// skips files that are present) retries it. Fetch-skip plus this deletion is
// the retry mechanism across pipeline invocations.
func (r *Runner) removeArtifact(path string, deleted *atomic.Int64) {
	if err := os.Remove(path); err != nil {
		fmt.Fprintf(r.stderr, "warning: cannot delete %s: %v\n", path, err)
		return
	}
	deleted.Add(1)
}
