package resource

import (
	"context"
	"time"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/paularlott/cli"
)

func UpdateCommand() *cli.Command {
	return &cli.Command{
		Name:        "update",
		Usage:       "Update a resource",
		Description: "Update fields of an existing resource; fields not given keep their value",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Flags: formFlags(false),
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
			return runUpdate(ctx, a, cmd.GetStringArg("id"), f, time.Now())
		},
	}
}

func runUpdate(ctx context.Context, a *app.App, id string, f form, now time.Time) error {
	log.Debug("Getting resource for update", "id", id)
	existing, err := a.Client.GetResource(ctx, id)
	if err != nil {
		log.Error("Failed to get resource", "id", id, "error", err)
		return err
	}

	in := &model.ResourceInput{
		DeviceName:      existing.DeviceName,
		Quantity:        existing.Quantity,
		Description:     existing.Description,
		ProcurementDate: existing.ProcurementDate,
		Location:        existing.Location,
		Cost:            existing.Cost,
		Department:      existing.Department,
	}
	if err := prepare(in, f.apply(in), now); err != nil {
		printFieldErrors(a.Out, err)
		return err
	}
	if err := checkLocation(ctx, a, in.Department, f.Location); err != nil {
		printFieldErrors(a.Out, err)
		return err
	}

	log.Debug("Updating resource", "id", id)
	r, err := a.Client.UpdateResource(ctx, id, in)
	if err != nil {
		log.Error("Failed to update resource", "id", id, "error", err)
		printFieldErrors(a.Out, err)
		return err
	}

	log.Info("Resource updated successfully", "id", id)
	return printResource(a.Out, r)
}
