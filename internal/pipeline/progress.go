package pipeline

import (
	"context"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// progressBar is the subset of *mpb.Bar the batches need, so tests and
// non-interactive runs can use a no-op.
type progressBar interface {
	Increment()
}

// nopBar is used when progress display is disabled.
type nopBar struct{}

func (nopBar) Increment() {}

// newBar returns a per-task progress bar for a batch and a wait function to
// call once the batch is done. With progress disabled both are no-ops. ctx
// must be the batch's own context: workers that exit on cancellation leave
// the bar short of its total, so the wait function aborts the bar before
// waiting on the container.
func (r *Runner) newBar(ctx context.Context, name string, total int) (progressBar, func()) {
	if !r.cfg.Progress || total == 0 {
		return nopBar{}, func() {}
	}

	p := mpb.NewWithContext(ctx, mpb.WithOutput(r.stderr), mpb.WithWidth(64))
	b := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)
	return b, func() {
		if ctx.Err() != nil {
			b.Abort(true)
		}
		p.Wait()
	}
}
