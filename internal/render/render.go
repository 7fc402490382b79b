// Package render prints command output as aligned tables, JSON or YAML.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects how command output is printed
type Format string

const (
	Table Format = "table"
	JSON  Format = "json"
	YAML  Format = "yaml"
)

// ParseFormat accepts table, json or yaml; empty means table
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", Table:
		return Table, nil
	case JSON:
		return JSON, nil
	case YAML, "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown output format %q: use table, json or yaml", s)
}

// Printer writes one command's output
type Printer struct {
	w      io.Writer
	format Format
}

func New(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Writer is where table output goes
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Structured reports whether output is JSON or YAML
func (p *Printer) Structured() bool {
	return p.format == JSON || p.format == YAML
}

// Emit encodes v for JSON and YAML, otherwise calls table
func (p *Printer) Emit(v any, table func(p *Printer)) error {
	switch p.format {
	case JSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case YAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	table(p)
	return nil
}

// Println writes a line in table mode only
func (p *Printer) Println(a ...any) {
	if !p.Structured() {
		fmt.Fprintln(p.w, a...)
	}
}

// Printf writes formatted text in table mode only
func (p *Printer) Printf(format string, a ...any) {
	if !p.Structured() {
		fmt.Fprintf(p.w, format, a...)
	}
}

// Field writes "Label:  value" with the value column aligned
func (p *Printer) Field(label string, value any) {
	p.Printf("%-18s%v\n", label+":", value)
}

// Rows writes a header and rows as tab-aligned columns
func (p *Printer) Rows(header []string, rows [][]string) {
	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r, "\t"))
	}
	tw.Flush()
}
