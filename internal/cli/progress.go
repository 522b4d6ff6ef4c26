package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/morozRed/pdfxref/internal/logger"
)

type progressReporter struct {
	out     io.Writer
	enabled bool
	label   string
	start   time.Time
	spinner int
	lastLen int
	updated bool
}

// newProgressReporter draws a one-line spinner on out. It stays silent when out
// is not a terminal or when quiet is set, so it never interleaves with prompts,
// debug logs or JSON output.
func newProgressReporter(out io.Writer, label string, quiet bool) *progressReporter {
	return &progressReporter{
		out:     out,
		enabled: !quiet && logger.IsTerminal(out),
		label:   label,
		start:   time.Now(),
	}
}

func (r *progressReporter) Update(item string, done, total int) {
	if !r.enabled {
		return
	}
	frames := [4]string{"-", "\\", "|", "/"}
	frame := frames[r.spinner%len(frames)]
	r.spinner++
	item = strings.TrimSpace(item)
	if len(item) > 88 {
		item = "..." + item[len(item)-85:]
	}

	status := fmt.Sprintf("%s %s %d/%d %s", frame, r.label, done, total, item)
	r.printStatus(status)
	r.updated = true
}

func (r *progressReporter) Done(count int) {
	if !r.enabled || !r.updated {
		return
	}
	elapsed := time.Since(r.start).Round(time.Millisecond)
	r.printStatus(fmt.Sprintf("%s complete (%d in %s)", r.label, count, elapsed))
	fmt.Fprintln(r.out)
}

func (r *progressReporter) printStatus(status string) {
	if r.lastLen > len(status) {
		status = status + strings.Repeat(" ", r.lastLen-len(status))
	}
	r.lastLen = len(status)
	fmt.Fprintf(r.out, "\r%s", status)
}
