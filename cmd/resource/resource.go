package resource

import (
	"fmt"
	"strconv"

	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

func Commands() []*cli.Command {
	return []*cli.Command{
		ListCommand(),
		GetCommand(),
		AddCommand(),
		UpdateCommand(),
		DeleteCommand(),
	}
}

func printResources(out *render.Printer, page *model.ResourcesResponse) error {
	return out.Emit(page, func(p *render.Printer) {
		if len(page.Resources) == 0 {
			p.Println("No resources found")
			return
		}
		rows := make([][]string, 0, len(page.Resources))
		for _, r := range page.Resources {
			rows = append(rows, []string{
				strconv.Itoa(r.SlNo),
				r.ID,
				r.DeviceName,
				strconv.Itoa(r.Quantity),
				r.Location,
				r.Department + " [" + render.BadgeColor(r.Department) + "]",
				r.ProcurementDate,
				render.Rupees(r.Cost),
			})
		}
		p.Rows([]string{"SL", "ID", "DEVICE", "QTY", "LOCATION", "DEPARTMENT", "PROCURED", "COST"}, rows)

		pg := page.Pagination
		p.Printf("\nPage %d of %d (%d resources)\n", pg.Page, max(pg.TotalPages, 1), pg.TotalCount)
	})
}

func printResource(out *render.Printer, r *model.Resource) error {
	return out.Emit(r, func(p *render.Printer) {
		p.Field("ID", r.ID)
		p.Field("Sl No", r.SlNo)
		p.Field("Device", r.DeviceName)
		p.Field("Quantity", r.Quantity)
		p.Field("Description", render.OrNA(r.Description))
		p.Field("Procured", r.ProcurementDate)
		p.Field("Location", r.Location)
		p.Field("Cost", render.Rupees(r.Cost))
		p.Field("Department", r.Department)
		if r.CreatedBy != "" {
			p.Field("Created", fmt.Sprintf("%s by %s", r.CreatedAt, r.CreatedBy))
		}
		if r.UpdatedBy != "" {
			p.Field("Updated", fmt.Sprintf("%s by %s", r.UpdatedAt, r.UpdatedBy))
		}
	})
}
