package dashboard

import (
	"context"
	"fmt"
	"strconv"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		OverviewCommand(),
		DepartmentsCommand(),
		CostsCommand(),
		UtilizationCommand(),
	}
}

// command opens the app and hands it to run
func command(name, usage, description string, run func(context.Context, *app.App) error) *cli.Command {
	return &cli.Command{
		Name:        name,
		Usage:       usage,
		Description: description,
		Run: func(ctx context.Context, cmd *cli.Command) error {
			a, err := app.Open(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			return run(ctx, a)
		},
	}
}

func OverviewCommand() *cli.Command {
	return command("overview", "Show the asset overview",
		"Show totals, financial metrics, top performers and location utilisation across all departments",
		runDashboard)
}

func DepartmentsCommand() *cli.Command {
	return command("departments", "Show resources and value per department",
		"Show resource count, quantity and total value for each department, largest first",
		runDepartments)
}

func CostsCommand() *cli.Command {
	return command("costs", "Show asset value per device type",
		"Show total value and quantity for each device type, most valuable first",
		runCosts)
}

func UtilizationCommand() *cli.Command {
	return command("utilization", "Show device quantities and location density",
		"Show the quantity held of each device type and the number of resources at each location",
		runUtilization)
}

// runDashboard falls back to zeroed figures when the overview cannot be loaded
func runDashboard(ctx context.Context, a *app.App) error {
	log.Debug("Loading dashboard overview")
	d, err := a.Client.DashboardOverview(ctx)
	if err != nil {
		log.Error("Failed to load dashboard overview", "error", err)
		a.Out.Printf("Could not load dashboard: %s\n\n", client.Describe(err))
		d = model.EmptyDashboard()
	} else {
		log.Info("Loaded dashboard overview", "resources", d.Overview.TotalResources)
	}
	return printDashboard(a.Out, d)
}

func printDashboard(out *render.Printer, d *model.DashboardOverview) error {
	return out.Emit(d, func(p *render.Printer) {
		o, f := d.Overview, d.FinancialMetrics
		p.Println("Overview")
		p.Field("  Resources", o.TotalResources)
		p.Field("  Departments", o.TotalDepartments)
		p.Field("  Users", o.TotalUsers)
		p.Field("  Quantity", o.TotalQuantity)
		p.Field("  Devices", o.UniqueDevices)
		p.Field("  Locations", o.UniqueLocations)
		p.Field("  Added (30 days)", o.RecentAdditions30d)

		p.Println("\nFinancial")
		p.Field("  Asset value", render.Rupees(f.TotalAssetValue))
		p.Field("  Avg per item", render.Rupees(f.AverageCostPerItem))
		p.Field("  Per resource", render.Rupees(f.CostPerResource))
		p.Field("  Most expensive", render.Rupees(f.MostExpensiveItem))
		p.Field("  Least expensive", render.Rupees(f.LeastExpensiveItem))

		t := d.TopPerformers
		p.Println("\nTop performers")
		p.Field("  Leading dept", fmt.Sprintf("%s (%d resources)", render.OrNA(t.LeadingDepartment.Name), t.LeadingDepartment.ResourceCount))
		p.Field("  Priciest item", fmt.Sprintf("%s, %s (%s)", render.OrNA(t.MostExpensiveItem.DeviceName),
			render.Rupees(t.MostExpensiveItem.Cost), render.OrNA(t.MostExpensiveItem.Department)))

		u := d.UtilizationMetrics
		p.Println("\nUtilisation")
		p.Field("  Locations", u.TotalLocations)
		p.Field("  Per location", fmt.Sprintf("%.1f", u.AvgResourcesPerLocation))
		p.Field("  Most resourced", render.OrNA(u.MostResourcedLocation.Name))
		p.Field("  Most diverse", render.OrNA(u.MostDiverseLocation.Name))
	})
}

func runDepartments(ctx context.Context, a *app.App) error {
	log.Debug("Loading department analytics")
	d, err := a.Client.DepartmentAnalytics(ctx)
	if err != nil {
		log.Error("Failed to load department analytics", "error", err)
		return err
	}
	log.Info("Loaded department analytics", "departments", len(d.Departments))

	return a.Out.Emit(d, func(p *render.Printer) {
		if len(d.Departments) == 0 {
			p.Println("No department data")
			return
		}
		rows := make([][]string, 0, len(d.Departments))
		for _, dept := range d.Departments {
			name := unknown(dept.Name)
			rows = append(rows, []string{
				name,
				render.BadgeColor(name),
				strconv.Itoa(dept.Metrics.TotalResources),
				strconv.Itoa(dept.Metrics.TotalQuantity),
				render.Rupees(dept.Metrics.TotalCost),
			})
		}
		p.Rows([]string{"DEPARTMENT", "BADGE", "RESOURCES", "QUANTITY", "VALUE"}, rows)
	})
}

func runCosts(ctx context.Context, a *app.App) error {
	log.Debug("Loading cost analysis")
	c, err := a.Client.CostAnalysis(ctx)
	if err != nil {
		log.Error("Failed to load cost analysis", "error", err)
		return err
	}
	costs := c.CostAnalysis.DeviceTypeCosts
	log.Info("Loaded cost analysis", "device_types", len(costs))

	return a.Out.Emit(c, func(p *render.Printer) {
		if len(costs) == 0 {
			p.Println("No cost data")
			return
		}
		rows := make([][]string, 0, len(costs))
		for _, dc := range costs {
			rows = append(rows, []string{unknown(dc.DeviceName), render.Rupees(dc.TotalCost), strconv.Itoa(dc.TotalQuantity)})
		}
		p.Rows([]string{"DEVICE", "VALUE", "QUANTITY"}, rows)
	})
}

func runUtilization(ctx context.Context, a *app.App) error {
	log.Debug("Loading utilisation metrics")
	u, err := a.Client.UtilizationMetrics(ctx)
	if err != nil {
		log.Error("Failed to load utilisation metrics", "error", err)
		return err
	}
	m := u.Metrics
	log.Info("Loaded utilisation metrics", "devices", len(m.Devices), "locations", len(m.Locations))

	return a.Out.Emit(u, func(p *render.Printer) {
		if len(m.Devices) == 0 && len(m.Locations) == 0 {
			p.Println("No utilisation data")
			return
		}
		devices := make([][]string, 0, len(m.Devices))
		for _, d := range m.Devices {
			devices = append(devices, []string{unknown(d.DeviceName), strconv.Itoa(d.TotalQuantity)})
		}
		p.Rows([]string{"DEVICE", "QUANTITY"}, devices)

		locations := make([][]string, 0, len(m.Locations))
		for _, l := range m.Locations {
			locations = append(locations, []string{unknown(l.Location), strconv.Itoa(l.ResourceCount), unknown(l.Department)})
		}
		p.Println()
		p.Rows([]string{"LOCATION", "RESOURCES", "DEPARTMENT"}, locations)
	})
}

func unknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
