package upload

import (
	"fmt"
	"io"
	"sync"

	"github.com/martinsuchenak/campusctl/internal/importer"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		InspectCommand(),
		RunCommand(),
		TemplateCommand(),
	}
}

// progressWriter draws pipeline progress on one line of w
type progressWriter struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func newProgressWriter(w io.Writer) *progressWriter {
	return &progressWriter{w: w}
}

func (pw *progressWriter) update(p importer.Progress) {
	pw.mu.Lock()
	defer pw.mu.Unlock()

	line := fmt.Sprintf("%s %3d%% %s", render.Bar(float64(p.Percent), 30), p.Percent, p.Label)
	if p.Estimated {
		line += " (estimated)"
	}
	if line == pw.last {
		return
	}
	pw.last = line
	fmt.Fprintf(pw.w, "\r%-70s", line)

	switch p.State {
	case importer.Validated, importer.Committed, importer.Failed:
		fmt.Fprintln(pw.w)
		pw.last = ""
	}
}
