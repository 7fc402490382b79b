package export

import (
	"fmt"
	"io"
	"sync"

	"github.com/martinsuchenak/campusctl/internal/exporter"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		RunCommand(),
		SummaryCommand(),
		HistoryCommand(),
	}
}

// progressWriter draws the estimated download progress on one line of w
type progressWriter struct {
	mu    sync.Mutex
	w     io.Writer
	label string
}

func newProgressWriter(w io.Writer, label string) *progressWriter {
	return &progressWriter{w: w, label: label}
}

func (pw *progressWriter) update(p exporter.Progress) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	status := pw.label
	switch {
	case p.Failed:
		status = "Export failed"
	case p.Done:
		status = "Export complete!"
	case p.Estimated:
		status += " (estimated)"
	}
	fmt.Fprintf(pw.w, "\r%s %3.0f%% %-40s", render.Bar(p.Percent, 30), p.Percent, status)
	if p.Done || p.Failed {
		fmt.Fprintln(pw.w)
	}
}
