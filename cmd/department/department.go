package department

import (
	"context"
	"strconv"
	"strings"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		ListCommand(),
		LocationsCommand(),
	}
}

// listing is the structured form of department list
type listing struct {
	Departments []badged            `json:"departments" yaml:"departments"`
	Summary     model.FilterSummary `json:"summary" yaml:"summary"`
}

type badged struct {
	model.DepartmentWithStats `yaml:",inline"`
	Badge                     string `json:"badge" yaml:"badge"`
}

func ListCommand() *cli.Command {
	return &cli.Command{
		Name:        "list",
		Usage:       "List departments",
		Description: "List departments with resource counts, total cost, device types and locations",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "registered",
				Usage: "List the department records instead of filter statistics",
			},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if cmd.GetBool("registered") {
				return runRegistered(ctx, a)
			}
			return runList(ctx, a)
		},
	}
}

func runList(ctx context.Context, a *app.App) error {
	log.Debug("Loading filter options")
	opts, err := a.Options.Load(ctx)
	if err != nil {
		log.Error("Failed to load departments", "error", err)
		return err
	}

	out := listing{Summary: opts.Summary, Departments: make([]badged, 0, len(opts.Departments))}
	for _, d := range opts.Departments {
		out.Departments = append(out.Departments, badged{DepartmentWithStats: d, Badge: render.BadgeColor(d.Name)})
	}
	log.Info("Listed departments successfully", "count", len(out.Departments))

	return a.Out.Emit(out, func(p *render.Printer) {
		if len(out.Departments) == 0 {
			p.Println("No departments found")
			return
		}
		rows := make([][]string, 0, len(out.Departments))
		for _, d := range out.Departments {
			rows = append(rows, []string{
				d.Name,
				d.Badge,
				strconv.Itoa(d.Stats.TotalResources),
				render.Rupees(d.Stats.TotalCost),
				strconv.Itoa(d.Stats.UniqueDevices),
				strconv.Itoa(d.Stats.LocationsCount),
			})
		}
		p.Rows([]string{"DEPARTMENT", "BADGE", "RESOURCES", "COST", "DEVICES", "LOCATIONS"}, rows)
		p.Printf("\n%d departments, %d locations, %d device types\n",
			out.Summary.TotalDepartments, out.Summary.TotalLocations, out.Summary.TotalDeviceTypes)
	})
}

func runRegistered(ctx context.Context, a *app.App) error {
	log.Debug("Listing registered departments")
	depts, err := a.Client.Departments(ctx)
	if err != nil {
		log.Error("Failed to list registered departments", "error", err)
		return err
	}

	log.Info("Listed registered departments successfully", "count", len(depts))
	return a.Out.Emit(depts, func(p *render.Printer) {
		if len(depts) == 0 {
			p.Println("No departments found")
			return
		}
		rows := make([][]string, 0, len(depts))
		for _, d := range depts {
			rows = append(rows, []string{
				d.Name,
				strconv.Itoa(d.ResourceCount),
				render.Rupees(d.TotalCost),
				strings.Join(d.Locations, ", "),
			})
		}
		p.Rows([]string{"DEPARTMENT", "RESOURCES", "COST", "LOCATIONS"}, rows)
	})
}

func LocationsCommand() *cli.Command {
	return &cli.Command{
		Name:        "locations",
		Usage:       "List locations of a department",
		Description: "List the locations registered for a department",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "name", Required: true},
		},
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return runLocations(ctx, a, cmd.GetStringArg("name"))
		},
	}
}

func runLocations(ctx context.Context, a *app.App, name string) error {
	log.Debug("Listing department locations", "department", name)
	locations, err := a.Client.DepartmentLocations(ctx, name)
	if err != nil {
		log.Error("Failed to list department locations", "department", name, "error", err)
		return err
	}

	log.Info("Listed department locations successfully", "department", name, "count", len(locations))
	return a.Out.Emit(map[string]any{"department": name, "locations": locations}, func(p *render.Printer) {
		if len(locations) == 0 {
			p.Printf("No locations in %s\n", name)
			return
		}
		p.Println(strings.Join(locations, "\n"))
	})
}
