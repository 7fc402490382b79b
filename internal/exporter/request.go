// Package exporter downloads filtered resource reports and saves them.
package exporter

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/martinsuchenak/campusctl/internal/filters"
	"github.com/martinsuchenak/campusctl/internal/model"
)

var (
	ErrInvalidFormat    = errors.New("invalid export format: use csv, excel, pdf or json")
	ErrInvalidDateRange = errors.New("invalid date range")
)

// Format is a report format the backend renders
type Format string

const (
	CSV   Format = "csv"
	Excel Format = "excel"
	PDF   Format = "pdf"
	JSON  Format = "json"
)

// Formats lists the supported formats
var Formats = []Format{CSV, Excel, PDF, JSON}

// ParseFormat accepts a format name; "xlsx" is taken as Excel
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "xlsx" {
		return Excel, nil
	}
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidFormat, s)
}

// Extension is the file extension of a downloaded report
func (f Format) Extension() string {
	if f == Excel {
		return "xlsx"
	}
	return string(f)
}

// Request describes one export. Search text is not part of an export.
type Request struct {
	Format       Format
	Selection    filters.Selection
	DateFrom     string
	DateTo       string
	IncludeStats bool
}

// Validate checks the format and the date range
func (r Request) Validate() error {
	if _, err := ParseFormat(string(r.Format)); err != nil {
		return err
	}
	from, err := parseDate(r.DateFrom)
	if err != nil {
		return fmt.Errorf("%w: date_from %q is not YYYY-MM-DD", ErrInvalidDateRange, r.DateFrom)
	}
	to, err := parseDate(r.DateTo)
	if err != nil {
		return fmt.Errorf("%w: date_to %q is not YYYY-MM-DD", ErrInvalidDateRange, r.DateTo)
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidDateRange, r.DateFrom, r.DateTo)
	}
	return nil
}

func parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	return time.Parse(model.DateLayout, strings.TrimSpace(s))
}

// Values encodes the request. Filters at their default are left out.
func (r Request) Values() url.Values {
	sel := r.Selection
	sel.Search = ""
	v := sel.Values()
	if d := strings.TrimSpace(r.DateFrom); d != "" {
		v.Set("date_from", d)
	}
	if d := strings.TrimSpace(r.DateTo); d != "" {
		v.Set("date_to", d)
	}
	if r.IncludeStats {
		v.Set("include_stats", "true")
	}
	return v
}

// BuildQuery validates r and returns its query string
func BuildQuery(r Request) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	return r.Values().Encode(), nil
}

// ParseQuery is the inverse of BuildQuery
func ParseQuery(format Format, query string) (Request, error) {
	v, err := url.ParseQuery(query)
	if err != nil {
		return Request{}, err
	}
	sel := filters.FromValues(v)
	sel.Search = ""
	r := Request{
		Format:       format,
		Selection:    sel,
		DateFrom:     v.Get("date_from"),
		DateTo:       v.Get("date_to"),
		IncludeStats: v.Get("include_stats") == "true",
	}
	return r, r.Validate()
}

// Filename names a saved report: campus_assets_<UTC timestamp>.<ext>
func Filename(f Format, t time.Time) string {
	return "campus_assets_" + t.UTC().Format("2006-01-02T15-04-05") + "." + f.Extension()
}

// DepartmentFilename is Filename with the department folded in, so that
// reports saved in the same second do not collide
func DepartmentFilename(f Format, department string, t time.Time) string {
	return "campus_assets_" + slug(department) + "_" + t.UTC().Format("2006-01-02T15-04-05") + "." + f.Extension()
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}
