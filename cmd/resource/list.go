package resource

import (
	"context"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/filters"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/query"
	"github.com/paularlott/cli"
)

// listOptions are the list flags after parsing
type listOptions struct {
	Department string
	Location   string
	Device     string
	Search     string
	Page       int
	PerPage    int
}

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List resources",
		Description: "List one page of resources, optionally filtered by department, location, device and search text",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "department", Usage: "Department name, or all", DefaultValue: filters.All},
			&cli.StringFlag{Name: "location", Usage: "Location name, or all", DefaultValue: filters.All},
			&cli.StringFlag{Name: "device", Usage: "Device name, or all", DefaultValue: filters.All},
			&cli.StringFlag{Name: "search", Usage: "Free text search"},
			&cli.IntFlag{Name: "page", Usage: "Page number", DefaultValue: 1},
			&cli.IntFlag{Name: "page-size", Usage: "Resources per page (defaults to --per-page)"},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runList(ctx, a, listOptions{
				Department: cmd.GetString("department"),
				Location:   cmd.GetString("location"),
				Device:     cmd.GetString("device"),
				Search:     cmd.GetString("search"),
				Page:       cmd.GetInt("page"),
				PerPage:    cmd.GetInt("page-size"),
			})
		},
	}
}

func runList(ctx context.Context, a *app.App, opts listOptions) error {
	if _, err := a.Options.Load(ctx); err != nil {
		log.Warn("Filter options unavailable; filters are sent unchecked", "error", err)
	}

	state := filters.NewState(a.Options, nil)
	state.SetDepartment(ctx, opts.Department)
	state.SetLocation(ctx, opts.Location)
	state.SetDevice(ctx, opts.Device)
	state.SetSearch(ctx, opts.Search)
	state.Wait()
	sel := state.Selection()

	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = a.Config.PerPage
	}
	log.Debug("Listing resources", "department", sel.Department, "location", sel.Location,
		"device", sel.Device, "search", sel.Search, "page", opts.Page, "per_page", perPage)

	coord := query.NewCoordinator(a.Client, perPage)
	page, err := coord.FetchPage(ctx, sel, opts.Page)
	if err != nil {
		log.Error("Failed to list resources", "error", err)
		return err
	}

	log.Info("Listed resources successfully", "count", len(page.Resources), "total", page.Pagination.TotalCount, "filtered", !sel.IsDefault())
	return printResources(a.Out, page)
}
