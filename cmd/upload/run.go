package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/importer"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/martinsuchenak/campusctl/internal/storage"
	"github.com/paularlott/cli"
)

// runOptions are the run flags after parsing
type runOptions struct {
	Path          string
	Department    string
	NewDepartment string
	DryRun        bool
}

func (o runOptions) target() (model.Choice, error) {
	d, nd := strings.TrimSpace(o.Department), strings.TrimSpace(o.NewDepartment)
	switch {
	case d != "" && nd != "":
		return model.Choice{}, errors.New("use either --department or --new-department, not both")
	case nd != "":
		return model.CreateNew(nd), nil
	case d != "":
		return model.Existing(d), nil
	}
	return model.Choice{}, importer.ErrNoTarget
}

// report is the structured output of an import run
type report struct {
	SessionID  string                  `json:"session_id" yaml:"session_id"`
	File       string                  `json:"file" yaml:"file"`
	Department string                  `json:"department" yaml:"department"`
	Validation *model.ValidationResult `json:"validation" yaml:"validation"`
	Result     *model.ImportResult     `json:"result,omitempty" yaml:"result,omitempty"`
}

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:        "run",
		Usage:       "Import resources from a file",
		Description: "Upload a CSV or Excel file for validation, show its warnings and import the valid rows into a department",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "file", Required: true},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "department", Usage: "Existing department to import into"},
			&cli.StringFlag{Name: "new-department", Usage: "Create this department and import into it"},
			&cli.BoolFlag{Name: "dry-run", Usage: "Upload and validate only; do not import"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runImport(ctx, a, runOptions{
				Path:          cmd.GetStringArg("file"),
				Department:    cmd.GetString("department"),
				NewDepartment: cmd.GetString("new-department"),
				DryRun:        cmd.GetBool("dry-run"),
			}, os.Stderr)
		},
	}
}

func runImport(ctx context.Context, a *app.App, opts runOptions, progress io.Writer) error {
	if err := a.RequireAdmin(); err != nil {
		return err
	}
	target, err := opts.target()
	if err != nil {
		return err
	}

	f, err := importer.ReadFile(opts.Path)
	if err != nil {
		return err
	}
	if in, err := importer.Inspect(f); err != nil {
		return err
	} else if len(in.MissingColumns) > 0 {
		log.Warn("File is missing template columns", "file", f.Name, "missing", in.MissingColumns)
	}

	pw := newProgressWriter(progress)
	p := importer.New(a.Client, a.Options, pw.update)
	if err := p.SelectFile(f); err != nil {
		return err
	}
	if err := p.ConfigureTarget(target); err != nil {
		return err
	}

	run := &storage.Run{Kind: storage.KindImport, Department: target.Name(), Target: f.Name}
	validation, err := p.Upload(ctx)
	if err != nil {
		run.Status, run.Detail = "failed", "upload: "+client.Describe(err)
		a.Record(ctx, run)
		return err
	}
	rep := report{SessionID: p.Status().SessionID, File: f.Name, Department: target.Name(), Validation: validation}

	if opts.DryRun {
		run.Status = "validated"
		run.Detail = fmt.Sprintf("%d rows, %d warnings", validation.Stats.TotalRows, len(validation.Warnings))
		a.Record(ctx, run)
		return printReport(a.Out, rep)
	}

	result, err := p.Commit(ctx)
	if err != nil {
		run.Status, run.Detail = "failed", "import: "+client.Describe(err)
		a.Record(ctx, run)
		printReport(a.Out, rep)
		return err
	}
	rep.Result = result

	run.Status = "completed"
	run.Detail = fmt.Sprintf("imported %d, skipped %d", result.ImportedCount, result.SkippedCount)
	a.Record(ctx, run)
	return printReport(a.Out, rep)
}

func printReport(out *render.Printer, rep report) error {
	return out.Emit(rep, func(p *render.Printer) {
		v := rep.Validation
		p.Field("File", rep.File)
		p.Field("Department", rep.Department)
		p.Field("Rows", v.Stats.TotalRows)
		if v.DepartmentCreated {
			p.Println("Department was created")
		}
		if len(v.Warnings) > 0 {
			p.Printf("Warnings (%d):\n", len(v.Warnings))
			for _, w := range v.Warnings {
				p.Printf("  - %s\n", w)
			}
		}
		if rep.Result == nil {
			return
		}
		p.Field("Imported", rep.Result.ImportedCount)
		p.Field("Skipped", rep.Result.SkippedCount)
		if rep.Result.Message != "" {
			p.Println(rep.Result.Message)
		}
	})
}
