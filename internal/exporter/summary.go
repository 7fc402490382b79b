package exporter

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SheetSummary describes one sheet of a downloaded workbook
type SheetSummary struct {
	Name    string   `json:"name" yaml:"name"`
	Rows    int      `json:"rows" yaml:"rows"`
	Columns int      `json:"columns" yaml:"columns"`
	Headers []string `json:"headers,omitempty" yaml:"headers,omitempty"`
}

// Summarize lists the sheets of an Excel report. Rows excludes the header.
func Summarize(data []byte) ([]SheetSummary, error) {
	wb, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer wb.Close()

	var out []SheetSummary
	for _, name := range wb.GetSheetList() {
		rows, err := wb.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", name, err)
		}
		s := SheetSummary{Name: name}
		if len(rows) > 0 {
			s.Headers = rows[0]
			s.Rows = len(rows) - 1
		}
		for _, r := range rows {
			s.Columns = max(s.Columns, len(r))
		}
		out = append(out, s)
	}
	return out, nil
}
