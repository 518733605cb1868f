package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// tableProgress renders a progress bar over the tables of a run.
type tableProgress struct {
	quiet bool
	out   io.Writer
	bar   *progressbar.ProgressBar
}

func newTableProgress(out io.Writer, quiet bool) *tableProgress {
	return &tableProgress{quiet: quiet, out: out}
}

// Update is the pipeline's progress callback. The bar is created on the
// first call, once the total is known.
func (p *tableProgress) Update(done, total int) {
	if p.quiet || total == 0 {
		return
	}
	if p.bar == nil {
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("Processing tables"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(p.out)
			}),
		)
	}
	p.bar.Set(done)
}

// Finish completes the bar if one was started.
func (p *tableProgress) Finish() {
	if p.bar != nil && !p.bar.IsFinished() {
		p.bar.Finish()
	}
}
