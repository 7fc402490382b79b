package resource

import (
	"context"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/paularlott/cli"
)

func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:        "delete",
		Usage:       "Delete a resource",
		Description: "Delete a resource from the inventory",
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
			log.Debug("Deleting resource", "id", id)

			if err := a.Client.DeleteResource(ctx, id); err != nil {
				log.Error("Failed to delete resource", "id", id, "error", err)
				return err
			}

			log.Info("Resource deleted successfully", "id", id)
			a.Out.Printf("Resource %s deleted\n", id)
			return nil
		},
	}
}
