package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/martinsuchenak/campusctl/cmd/ai"
	"github.com/martinsuchenak/campusctl/cmd/auth"
	"github.com/martinsuchenak/campusctl/cmd/dashboard"
	"github.com/martinsuchenak/campusctl/cmd/department"
	"github.com/martinsuchenak/campusctl/cmd/export"
	"github.com/martinsuchenak/campusctl/cmd/filter"
	"github.com/martinsuchenak/campusctl/cmd/resource"
	"github.com/martinsuchenak/campusctl/cmd/upload"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/config"
	"github.com/paularlott/cli"
)

func main() {
	// CAMPUS_* settings may live in ./.env
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cli.Command{
		Name:        "campusctl",
		Usage:       "Manage campus assets",
		Description: "Browse, filter, import and export campus resources through the asset management API",
		Flags:       config.GetFlags(),
		Commands: []*cli.Command{
			{
				Name:     "auth",
				Usage:    "Sign in and out",
				Commands: auth.Commands(),
			},
			{
				Name:     "resource",
				Usage:    "Manage resources",
				Commands: resource.Commands(),
			},
			{
				Name:     "department",
				Usage:    "Browse departments",
				Commands: department.Commands(),
			},
			{
				Name:     "filters",
				Usage:    "Show filter options",
				Commands: filter.Commands(),
			},
			{
				Name:     "import",
				Usage:    "Import resources from CSV or Excel files",
				Commands: upload.Commands(),
			},
			{
				Name:     "export",
				Usage:    "Export resources and show run history",
				Commands: export.Commands(),
			},
			{
				Name:     "ai",
				Usage:    "Talk to the AI assistant",
				Commands: ai.Commands(),
			},
			{
				Name:     "dashboard",
				Usage:    "Show dashboard metrics and analytics",
				Commands: dashboard.Commands(),
			},
		},
	}

	if err := root.Execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", client.Describe(err))
		os.Exit(1)
	}
}
