package progressbar

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/schollz/progressbar/v3"

	"github.com/skiffhq/skiff/internal/utils"
)

const spinnerInterval = 150 * time.Millisecond

// ProgressBar reports deploy progress on stderr. Phases with an unknown
// amount of work (credential verification) show a spinner; counted
// phases (notebook imports) show a bar. Output is suppressed when stderr
// is not a terminal, so CI logs stay clean.
type ProgressBar struct {
	out io.Writer

	spin *spinner.Spinner
	bar  *progressbar.ProgressBar
}

func NewProgressBar() *ProgressBar {
	out := io.Discard
	if utils.IsTerminal(os.Stderr) && os.Getenv("SKIFF_PROGRESS_INDICATOR") != "false" {
		out = os.Stderr
	}
	return NewProgressBarWithWriter(out)
}

func NewProgressBarWithWriter(out io.Writer) *ProgressBar {
	return &ProgressBar{out: out}
}

// Start shows an indeterminate spinner labelled with the running phase.
// Any indicator that is still active is cleared first.
func (p *ProgressBar) Start(label string) {
	p.Stop()
	sp := spinner.New(spinner.CharSets[9], spinnerInterval, spinner.WithWriter(p.out))
	if label != "" {
		sp.Suffix = " " + label
	}
	sp.Start()
	p.spin = sp
}

// StartProgress switches to a counted bar for count units of work.
func (p *ProgressBar) StartProgress(count int, label string) {
	p.Stop()
	p.bar = progressbar.NewOptions(count,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
	)
}

// SetProgress is a no-op until StartProgress has been called.
func (p *ProgressBar) SetProgress(idx int) error {
	if p.bar == nil {
		return nil
	}
	return p.bar.Set(idx)
}

// Stop clears whichever indicator is active.
func (p *ProgressBar) Stop() {
	if p.spin != nil {
		p.spin.Stop()
		p.spin = nil
	}
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
