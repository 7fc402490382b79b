package upload

import (
	"context"
	"strings"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/importer"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func InspectCommand() *cli.Command {
	return &cli.Command{
		Name:        "inspect",
		Usage:       "Check a file before importing",
		Description: "Read the header row of a CSV or XLSX file locally and report rows and missing template columns",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runInspect(a, cmd.GetStringArg("file"))
		},
	}
}

func runInspect(a *app.App, path string) error {
	f, err := importer.ReadFile(path)
	if err != nil {
		return err
	}
	in, err := importer.Inspect(f)
	if err != nil {
		log.Error("Failed to inspect file", "file", path, "error", err)
		return err
	}
	printInspection(a.Out, in)
	return nil
}

func printInspection(out *render.Printer, in *importer.Inspection) {
	out.Emit(in, func(p *render.Printer) {
		p.Field("File", in.Name)
		p.Field("Size", in.Size)
		if !in.Inspectable {
			p.Println("Legacy " + in.Extension + " workbooks are checked by the server only")
			return
		}
		if in.Sheet != "" {
			p.Field("Sheet", in.Sheet)
		}
		p.Field("Columns", strings.Join(in.Headers, ", "))
		p.Field("Rows", in.Rows)
		if len(in.MissingColumns) > 0 {
			p.Field("Missing columns", strings.Join(in.MissingColumns, ", "))
		}
	})
}
