package resource

import (
	"context"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/paularlott/cli"
)

func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "get",
		Usage:       "Get resource details",
		Description: "Get details of a specific resource",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "id", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			id := cmd.GetStringArg("id")
			log.Debug("Getting resource", "id", id)

			r, err := a.Client.GetResource(ctx, id)
			if err != nil {
				log.Error("Failed to get resource", "id", id, "error", err)
				return err
			}
			return printResource(a.Out, r)
		},
	}
}
