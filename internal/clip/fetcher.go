package clip

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/MorenoLaQuatra/audiocaps-download/internal/dataset"
	"github.com/MorenoLaQuatra/audiocaps-download/internal/ytdlp"
)

// Converter is the external tool that extracts a time window of audio from a
// remote source into a local file. *ytdlp.Client implements it.
type Converter interface {
	Extract(ctx context.Context, req ytdlp.Request) error
}

// Compile-time interface compliance check.
var _ Converter = (*ytdlp.Client)(nil)

// Status reports what a single Fetch call did.
type Status int

const (
	// StatusSkipped means the destination already existed; no converter call
	// was made. Skipping is what makes re-runs idempotent.
	StatusSkipped Status = iota

	// StatusFetched means the converter was invoked and reported success.
	StatusFetched

	// StatusFailed means the converter was invoked and failed; no file was
	// produced. Always paired with a non-nil error.
	StatusFailed
)

// Fetcher downloads one clip per metadata row. It holds only read-only
// configuration, so a single Fetcher is safe for concurrent use across the
// rows of a batch.
type Fetcher struct {
	converter Converter
	format    Format
	quality   Quality
}

// NewFetcher creates a Fetcher bound to one run's format and quality. The
// binding guarantees fetch and reconcile agree on the artifact extension for
// the whole run.
func NewFetcher(converter Converter, format Format, quality Quality) *Fetcher {
	return &Fetcher{
		converter: converter,
		format:    format,
		quality:   quality,
	}
}

// Format returns the run's output format.
func (f *Fetcher) Format() Format { return f.format }

// DestPath computes the artifact path for a sample id inside a split
// directory. The path is a pure function of (dir, id, format).
func (f *Fetcher) DestPath(dir, id string) string {
	return filepath.Join(dir, id+"."+f.format.Ext())
}

// Fetch ensures the clip for row exists under dir. If the destination is
// already present the converter is not invoked. A converter failure is
// returned for accounting but leaves no file; later validation treats the
// row as missing, so the error never needs to abort a batch.
func (f *Fetcher) Fetch(ctx context.Context, row dataset.Row, dir string) (Status, error) {
	dest := f.DestPath(dir, row.ID)

	if _, err := os.Stat(dest); err == nil {
		return StatusSkipped, nil
	}

	req := ytdlp.Request{
		VideoID:     row.YouTubeID,
		Start:       row.StartTime,
		End:         row.StartTime + Duration,
		AudioFormat: string(f.format),
		Quality:     int(f.quality),
		Output:      dest,
	}
	if err := f.converter.Extract(ctx, req); err != nil {
		return StatusFailed, fmt.Errorf("clip %s: %w", row.ID, err)
	}
	return StatusFetched, nil
}
