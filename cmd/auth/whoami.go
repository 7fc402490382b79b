package auth

import (
	"context"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/paularlott/cli"
)

func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:        "whoami",
		Usage:       "Show the signed-in user",
		Description: "Verify the stored token with the backend and show who it belongs to",
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runWhoami(ctx, a)
		},
	}
}

func runWhoami(ctx context.Context, a *app.App) error {
	id := newIdentity(a.Client.BaseURL(), nil, a.Session)

	user, err := a.Client.Verify(ctx)
	if err != nil {
		log.Error("Failed to verify session", "error", err)
		return err
	}
	id.User = user
	log.Info("Session verified", "email", user.Email)
	return printIdentity(a.Out, id)
}
