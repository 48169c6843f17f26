package pipeline

import (
	"time"

	"github.com/MorenoLaQuatra/audiocaps-download/internal/dataset"
)

// FetchStats tallies one split's fetch batch.
type FetchStats struct {
	Fetched int // converter invoked and reported success
	Skipped int // destination already existed
	Failed  int // converter invoked and failed; no file produced
}

// ReconcileStats tallies one split's reconcile batch.
type ReconcileStats struct {
	Kept    int // rows whose clip validated
	Dropped int // rows excluded from the updated table
	Deleted int // invalid files removed from disk
}

// SplitReport is the outcome of one split across both stages.
type SplitReport struct {
	Split       dataset.Split
	Rows        int // metadata rows loaded
	FilesBefore int // files on disk after fetch, before reconcile
	Fetch       FetchStats
	Reconcile   ReconcileStats
}

// Summary is the outcome of a whole pipeline run.
type Summary struct {
	FetchElapsed time.Duration
	Splits       []SplitReport
}

// TotalKept returns the number of rows surviving reconciliation across all
// splits.
func (s Summary) TotalKept() int {
	total := 0
	for _, r := range s.Splits {
		total += r.Reconcile.Kept
	}
	return total
}
