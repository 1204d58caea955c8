package root

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/attractorlabs/colloquy/pkg/experiment"
)

// progressReporter turns runner events into a console progress indicator.
// On a TTY it keeps a single updating line; otherwise it logs one line per
// finished sample.
type progressReporter struct {
	w     *os.File
	total int
	tty   bool
	done  chan struct{}
}

func newProgressReporter(w *os.File, total int) *progressReporter {
	return &progressReporter{
		w:     w,
		total: total,
		tty:   isatty.IsTerminal(w.Fd()),
		done:  make(chan struct{}),
	}
}

// Consume drains events until the channel is closed. Run it on its own
// goroutine; the runner's sends are non-blocking and events may be dropped
// if this falls behind, so only monotonic counters are displayed.
func (r *progressReporter) Consume(events <-chan experiment.Event) {
	defer close(r.done)

	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	finished := 0
	for ev := range events {
		if ev.Type != experiment.EventSampleFinished {
			continue
		}
		if ev.Finished > finished {
			finished = ev.Finished
		}

		if r.tty {
			fmt.Fprint(r.w, "\r\033[K")
			green.Fprintf(r.w, "Running experiments: %d/%d samples", finished, r.total)
		} else {
			fmt.Fprintf(r.w, "sample %d finished: %s (%d/%d)\n", ev.Sample, ev.Status, finished, r.total)
		}

		if r.tty && ev.Status != experiment.StatusCompleted {
			red.Fprintf(r.w, " (sample %d: %s)", ev.Sample, ev.Status)
		}
	}

	if r.tty {
		fmt.Fprintln(r.w)
	}
}

// Wait blocks until Consume returns.
func (r *progressReporter) Wait() {
	<-r.done
}
