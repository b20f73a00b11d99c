package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/twinlift/twinlift/internal/model"
)

var (
	okMark   = color.New(color.FgGreen).SprintFunc()
	failMark = color.New(color.FgRed).SprintFunc()
	warnText = color.New(color.FgYellow).SprintFunc()
)

// batchProgress renders a progress bar over a batch run.
type batchProgress struct {
	quiet bool
	bar   *progressbar.ProgressBar
}

func newBatchProgress(totalFiles int, quiet bool) *batchProgress {
	p := &batchProgress{quiet: quiet}
	if quiet {
		return p
	}
	p.bar = progressbar.NewOptions(totalFiles,
		progressbar.OptionSetDescription("Processing packages"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	return p
}

// OnFile advances the bar by one finished file.
func (p *batchProgress) OnFile(result *model.ProcessingResult) {
	if p.bar != nil {
		p.bar.Add(1)
	}
}
