package auth

import (
	"context"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/paularlott/cli"
)

func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:        "login",
		Usage:       "Sign in",
		Description: "Sign in with email and password and store the session token",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Usage: "Account email", EnvVars: []string{"CAMPUS_EMAIL"}, Required: true},
			&cli.StringFlag{Name: "password", Usage: "Account password", EnvVars: []string{"CAMPUS_PASSWORD"}, Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runLogin(ctx, a, cmd.GetString("email"), cmd.GetString("password"))
		},
	}
}

func runLogin(ctx context.Context, a *app.App, email, password string) error {
	log.Debug("Signing in", "email", email, "server", a.Config.Server)

	user, err := a.Client.Login(ctx, email, password)
	if err != nil {
		log.Error("Failed to sign in", "email", email, "error", err)
		return err
	}
	return printIdentity(a.Out, newIdentity(a.Client.BaseURL(), user, a.Session))
}
