package filter

import (
	"context"
	"strings"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/filters"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		ShowCommand(),
	}
}

// options is what the filter dropdowns would offer
type options struct {
	Department  string   `json:"department" yaml:"department"`
	Location    string   `json:"location" yaml:"location"`
	Departments []string `json:"departments" yaml:"departments"`
	Locations   []string `json:"locations" yaml:"locations"`
	Devices     []string `json:"devices" yaml:"devices"`
	DevicesErr  string   `json:"devices_error,omitempty" yaml:"devices_error,omitempty"`
}

func ShowCommand() *cli.Command {
	return &cli.Command{
		Name:        "show",
		Usage:       "Show filter options",
		Description: "Show the departments, locations and devices offered for a department and location",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "department", Usage: "Department name, or all", DefaultValue: filters.All},
			&cli.StringFlag{Name: "location", Usage: "Location name, or all", DefaultValue: filters.All},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runShow(ctx, a, cmd.GetString("department"), cmd.GetString("location"))
		},
	}
}

func runShow(ctx context.Context, a *app.App, department, location string) error {
	log.Debug("Loading filter options", "department", department, "location", location)
	if _, err := a.Options.Load(ctx); err != nil {
		log.Error("Failed to load filter options", "error", err)
		return err
	}

	state := filters.NewState(a.Options, nil)
	state.SetDepartment(ctx, department)
	state.SetLocation(ctx, location)
	state.Wait()
	view := state.View()

	out := options{
		Department:  view.Selection.Department,
		Location:    view.Selection.Location,
		Departments: a.Options.Departments(),
		Locations:   view.AvailableLocations,
		Devices:     view.AvailableDevices,
	}
	if view.DevicesErr != nil {
		out.DevicesErr = view.DevicesErr.Error()
	}
	log.Info("Loaded filter options successfully", "locations", len(out.Locations), "devices", len(out.Devices))

	return a.Out.Emit(out, func(p *render.Printer) {
		p.Field("Department", out.Department)
		p.Field("Location", out.Location)
		p.Field("Departments", list(out.Departments))
		p.Field("Locations", list(out.Locations))
		if out.DevicesErr != "" {
			p.Field("Devices", "unavailable ("+out.DevicesErr+")")
			return
		}
		p.Field("Devices", list(out.Devices))
	})
}

func list(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
