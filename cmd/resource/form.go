package resource

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/paularlott/cli"
)

// ValidationError carries the field errors of a rejected form
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// form holds the resource flags as typed; empty means not given
type form struct {
	DeviceName  string
	Quantity    int
	Description string
	Date        string
	Location    model.Choice
	Cost        string
	Department  string
}

func formFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "device-name", Usage: "Device name", Required: required},
		&cli.IntFlag{Name: "quantity", Usage: "Quantity (at least 1)"},
		&cli.StringFlag{Name: "description", Usage: "Description"},
		&cli.StringFlag{Name: "date", Usage: "Procurement date YYYY-MM-DD (defaults to today)"},
		&cli.StringFlag{Name: "location", Usage: "Existing location of the department"},
		&cli.StringFlag{Name: "new-location", Usage: "Create a new location in the department"},
		&cli.StringFlag{Name: "cost", Usage: "Cost in rupees"},
		&cli.StringFlag{Name: "department", Usage: "Department", Required: required},
	}
}

func readForm(cmd *cli.Command) (form, error) {
	f := form{
		DeviceName:  cmd.GetString("device-name"),
		Quantity:    cmd.GetInt("quantity"),
		Description: cmd.GetString("description"),
		Date:        cmd.GetString("date"),
		Cost:        cmd.GetString("cost"),
		Department:  cmd.GetString("department"),
	}
	loc, err := locationChoice(cmd.GetString("location"), cmd.GetString("new-location"))
	if err != nil {
		return f, err
	}
	f.Location = loc
	return f, nil
}

func locationChoice(existing, draft string) (model.Choice, error) {
	existing, draft = strings.TrimSpace(existing), strings.TrimSpace(draft)
	switch {
	case existing != "" && draft != "":
		return model.Choice{}, errors.New("use either --location or --new-location, not both")
	case draft != "":
		return model.CreateNew(draft), nil
	case existing != "":
		return model.Existing(existing), nil
	}
	return model.Choice{}, nil
}

// apply overlays the given fields onto in
func (f form) apply(in *model.ResourceInput) map[string]string {
	errs := map[string]string{}
	if f.DeviceName != "" {
		in.DeviceName = f.DeviceName
	}
	if f.Quantity != 0 {
		in.Quantity = f.Quantity
	}
	if f.Description != "" {
		in.Description = f.Description
	}
	if f.Date != "" {
		in.ProcurementDate = f.Date
	}
	if f.Location.IsSet() {
		in.Location = f.Location.Name()
	}
	if f.Department != "" {
		in.Department = f.Department
	}
	if f.Cost != "" {
		cost, err := strconv.ParseFloat(strings.TrimSpace(f.Cost), 64)
		if err != nil {
			errs["cost"] = "Valid cost is required"
		} else {
			in.Cost = cost
		}
	}
	return errs
}

// checkLocation refuses an existing-location choice the department does not
// have. Unknown departments and lookup failures are left to the backend.
func checkLocation(ctx context.Context, a *app.App, department string, loc model.Choice) error {
	if !loc.IsSet() || loc.IsNew() {
		return nil
	}
	known, err := a.Client.DepartmentLocations(ctx, department)
	if err != nil {
		log.Warn("Could not check location", "department", department, "error", err)
		return nil
	}
	if len(known) > 0 && !slices.Contains(known, loc.Name()) {
		return &ValidationError{Fields: map[string]string{
			"location": fmt.Sprintf("%q is not a location of %s; use --new-location to create it", loc.Name(), department),
		}}
	}
	return nil
}

// prepare normalises and validates in, returning the combined field errors
func prepare(in *model.ResourceInput, parseErrs map[string]string, now time.Time) error {
	in.Normalize(now)
	errs := in.Validate()
	for k, v := range parseErrs {
		errs[k] = v
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// printFieldErrors lists the field errors of a local or backend rejection
func printFieldErrors(out *render.Printer, err error) {
	var ve *ValidationError
	var apiErr *client.APIError
	switch {
	case errors.As(err, &ve):
		keys := make([]string, 0, len(ve.Fields))
		for k := range ve.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.Printf("  %s: %s\n", k, ve.Fields[k])
		}
	case errors.As(err, &apiErr):
		for _, line := range apiErr.FieldErrors() {
			out.Printf("  %s\n", line)
		}
	}
}
