package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/exporter"
	"github.com/martinsuchenak/campusctl/internal/filters"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/martinsuchenak/campusctl/internal/storage"
	"github.com/paularlott/cli"
)

// runOptions are the run flags after parsing
type runOptions struct {
	Format         string
	Department     string
	Location       string
	Device         string
	From           string
	To             string
	NoStats        bool
	Dir            string
	EachDepartment bool
}

func (o runOptions) request() (exporter.Request, error) {
	format, err := exporter.ParseFormat(o.Format)
	if err != nil {
		return exporter.Request{}, err
	}
	req := exporter.Request{
		Format: format,
		Selection: filters.Selection{
			Department: o.Department,
			Location:   o.Location,
			Device:     o.Device,
		}.Normalize(),
		DateFrom:     o.From,
		DateTo:       o.To,
		IncludeStats: !o.NoStats,
	}
	return req, req.Validate()
}

// saved is one written report
type saved struct {
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Bytes      int    `json:"bytes" yaml:"bytes"`
	Error      string `json:"error,omitempty" yaml:"error,omitempty"`
}

func RunCommand() *cli.Command {
	return &cli.Command{
		Name:        "run",
		Usage:       "Export resources to a file",
		Description: "Download resources as CSV, Excel, PDF or JSON, filtered by department, location, device and procurement date",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Usage: "csv, excel, pdf or json", DefaultValue: string(exporter.Excel)},
			&cli.StringFlag{Name: "department", Usage: "Department name, or all", DefaultValue: filters.All},
			&cli.StringFlag{Name: "location", Usage: "Location name, or all", DefaultValue: filters.All},
			&cli.StringFlag{Name: "device", Usage: "Device name, or all", DefaultValue: filters.All},
			&cli.StringFlag{Name: "from", Usage: "Earliest procurement date YYYY-MM-DD"},
			&cli.StringFlag{Name: "to", Usage: "Latest procurement date YYYY-MM-DD"},
			&cli.BoolFlag{Name: "no-stats", Usage: "Leave the statistics out of the report"},
			&cli.StringFlag{Name: "out", Usage: "Directory to save reports in", DefaultValue: "."},
			&cli.BoolFlag{Name: "each-department", Usage: "Save one report per department"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runExport(ctx, a, runOptions{
				Format:         cmd.GetString("format"),
				Department:     cmd.GetString("department"),
				Location:       cmd.GetString("location"),
				Device:         cmd.GetString("device"),
				From:           cmd.GetString("from"),
				To:             cmd.GetString("to"),
				NoStats:        cmd.GetBool("no-stats"),
				Dir:            cmd.GetString("out"),
				EachDepartment: cmd.GetBool("each-department"),
			}, os.Stderr)
		},
	}
}

func runExport(ctx context.Context, a *app.App, opts runOptions, progress io.Writer, pipeOpts ...exporter.Option) error {
	req, err := opts.request()
	if err != nil {
		return err
	}
	if opts.EachDepartment {
		if req.Selection.Department != filters.All {
			return errors.New("--each-department exports every department; leave --department unset")
		}
		return exportEach(ctx, a, req, opts.Dir, pipeOpts)
	}

	pw := newProgressWriter(progress, "Exporting "+string(req.Format)+"...")
	p := exporter.New(a.Client, pw.update, pipeOpts...)

	run := &storage.Run{Kind: storage.KindExport, Department: req.Selection.Department}
	res, err := p.Execute(ctx, req)
	if err != nil {
		run.Status, run.Detail = "failed", client.Describe(err)
		a.Record(ctx, run)
		return err
	}

	path, err := exporter.Save(opts.Dir, res)
	if err != nil {
		log.Error("Failed to save export", "file", res.Filename, "error", err)
		run.Status, run.Detail = "failed", err.Error()
		a.Record(ctx, run)
		return err
	}

	log.Info("Export saved successfully", "path", path, "bytes", len(res.Data))
	run.Status, run.Target, run.Detail = "completed", path, fmt.Sprintf("%s, %d bytes", req.Format, len(res.Data))
	a.Record(ctx, run)

	out := saved{Path: path, Bytes: len(res.Data)}
	return a.Out.Emit(out, func(p *render.Printer) {
		p.Printf("Saved %s (%d bytes)\n", out.Path, out.Bytes)
	})
}

func exportEach(ctx context.Context, a *app.App, base exporter.Request, dir string, pipeOpts []exporter.Option) error {
	if _, err := a.Options.Load(ctx); err != nil {
		log.Error("Failed to load departments", "error", err)
		return err
	}
	departments := a.Options.Departments()
	if len(departments) == 0 {
		a.Out.Println("No departments to export")
		return nil
	}

	p := exporter.New(a.Client, nil, pipeOpts...)
	outcomes, err := p.ExecuteEach(ctx, base, departments, exporter.MaxConcurrent, func(o exporter.Outcome) {
		if o.Err != nil {
			log.Warn("Department export failed", "department", o.Department, "error", o.Err)
			return
		}
		log.Debug("Department export downloaded", "department", o.Department, "file", o.Result.Filename)
	})
	if err != nil {
		return err
	}

	results := make([]saved, 0, len(outcomes))
	failed := 0
	for _, o := range outcomes {
		s := saved{Department: o.Department}
		run := &storage.Run{Kind: storage.KindExport, Department: o.Department}

		path := ""
		if o.Err == nil {
			path, o.Err = exporter.Save(dir, o.Result)
		}
		if o.Err != nil {
			failed++
			s.Error = client.Describe(o.Err)
			run.Status, run.Detail = "failed", s.Error
		} else {
			s.Path, s.Bytes = path, len(o.Result.Data)
			run.Status, run.Target, run.Detail = "completed", path, fmt.Sprintf("%s, %d bytes", base.Format, s.Bytes)
		}
		a.Record(ctx, run)
		results = append(results, s)
	}
	log.Info("Department exports finished", "total", len(outcomes), "failed", failed)

	err = a.Out.Emit(results, func(p *render.Printer) {
		rows := make([][]string, 0, len(results))
		for _, s := range results {
			if s.Error != "" {
				rows = append(rows, []string{s.Department, "failed", s.Error})
				continue
			}
			rows = append(rows, []string{s.Department, "saved", s.Path})
		}
		p.Rows([]string{"DEPARTMENT", "STATUS", "FILE"}, rows)
	})
	if err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d department exports failed", failed, len(outcomes))
	}
	return nil
}
