package resource

import (
	"context"
	"time"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/paularlott/cli"
)

func AddCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Add a new resource",
		Description: "Add a new resource to a department",
		Flags:       formFlags(true),
		Run: func(ctx context.Context, cmd *cli.Command) error {
			f, err := readForm(cmd)
			if err != nil {
				return err
			}
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runAdd(ctx, a, f, time.Now())
		},
	}
}

func runAdd(ctx context.Context, a *app.App, f form, now time.Time) error {
	in := &model.ResourceInput{}
	if err := prepare(in, f.apply(in), now); err != nil {
		printFieldErrors(a.Out, err)
		return err
	}
	if err := checkLocation(ctx, a, in.Department, f.Location); err != nil {
		printFieldErrors(a.Out, err)
		return err
	}

	log.Debug("Creating resource", "device_name", in.DeviceName, "department", in.Department, "location", in.Location)
	r, err := a.Client.CreateResource(ctx, in)
	if err != nil {
		log.Error("Failed to create resource", "device_name", in.DeviceName, "error", err)
		printFieldErrors(a.Out, err)
		return err
	}

	log.Info("Resource created successfully", "id", r.ID, "new_location", f.Location.IsNew())
	return printResource(a.Out, r)
}
