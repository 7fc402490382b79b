package auth

import (
	"context"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/paularlott/cli"
)

func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:        "logout",
		Usage:       "Sign out",
		Description: "End the session and remove the stored token",
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.Session.Authenticated() {
				a.Out.Println("Not signed in")
				return nil
			}
			if err := a.Client.Logout(ctx); err != nil {
				log.Debug("Signed out locally only", "error", err)
			}
			a.Out.Println("Signed out")
			return nil
		},
	}
}
