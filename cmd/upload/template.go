package upload

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/paularlott/cli"
)

// TemplateFilename is the name the import template is saved under
const TemplateFilename = "resource_import_template.csv"

func TemplateCommand() *cli.Command {
	return &cli.Command{
		Name:        "template",
		Usage:       "Download the import template",
		Description: "Download the CSV template with the columns an import file needs",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Usage: "Directory to save the template in", DefaultValue: "."},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runTemplate(ctx, a, cmd.GetString("out"))
		},
	}
}

func runTemplate(ctx context.Context, a *app.App, dir string) error {
	log.Debug("Downloading import template")
	data, err := a.Client.Template(ctx)
	if err != nil {
		log.Error("Failed to download template", "error", err)
		return err
	}

	path := filepath.Join(dir, TemplateFilename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("saving template: %w", err)
	}
	log.Info("Template saved successfully", "path", path, "bytes", len(data))
	a.Out.Printf("Template saved to %s\n", path)
	return nil
}
