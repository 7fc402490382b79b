package export

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/exporter"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func SummaryCommand() *cli.Command {
	return &cli.Command{
		Name:        "summary",
		Usage:       "Summarize a downloaded Excel report",
		Description: "List the sheets of a downloaded Excel report with their row counts and headers",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runSummary(a, cmd.GetStringArg("file"))
		},
	}
}

func runSummary(a *app.App, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	sheets, err := exporter.Summarize(data)
	if err != nil {
		return err
	}

	return a.Out.Emit(sheets, func(p *render.Printer) {
		rows := make([][]string, 0, len(sheets))
		for _, s := range sheets {
			rows = append(rows, []string{s.Name, strconv.Itoa(s.Rows), strconv.Itoa(s.Columns), strings.Join(s.Headers, ", ")})
		}
		p.Rows([]string{"SHEET", "ROWS", "COLUMNS", "HEADERS"}, rows)
	})
}
