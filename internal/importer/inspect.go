package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// TemplateColumns are the columns of the backend import template
var TemplateColumns = []string{"device_name", "quantity", "description", "procurement_date", "location", "cost"}

// Inspection is a local look at a file before it is uploaded. The backend
// still validates every row.
type Inspection struct {
	Name           string   `json:"name" yaml:"name"`
	Extension      string   `json:"extension" yaml:"extension"`
	Size           int64    `json:"size" yaml:"size"`
	Inspectable    bool     `json:"inspectable" yaml:"inspectable"`
	Sheet          string   `json:"sheet,omitempty" yaml:"sheet,omitempty"`
	Headers        []string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Rows           int      `json:"rows" yaml:"rows"`
	MissingColumns []string `json:"missing_columns,omitempty" yaml:"missing_columns,omitempty"`
}

// Inspect reads the header row and counts data rows. Legacy .xls workbooks
// are accepted for upload but not read locally.
func Inspect(f File) (*Inspection, error) {
	if !supported(f.Ext()) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, f.Name)
	}

	in := &Inspection{Name: f.Name, Extension: f.Ext(), Size: f.Size()}

	var rows [][]string
	var err error
	switch in.Extension {
	case ".csv":
		rows, err = csvRows(bytes.NewReader(f.Content))
	case ".xlsx":
		in.Sheet, rows, err = workbookRows(bytes.NewReader(f.Content))
	default:
		return in, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", f.Name, err)
	}

	in.Inspectable = true
	if len(rows) == 0 {
		in.MissingColumns = append([]string{}, TemplateColumns...)
		return in, nil
	}
	in.Headers = rows[0]
	for _, r := range rows[1:] {
		if !blank(r) {
			in.Rows++
		}
	}

	have := map[string]bool{}
	for _, h := range in.Headers {
		have[columnKey(h)] = true
	}
	for _, c := range TemplateColumns {
		if !have[c] {
			in.MissingColumns = append(in.MissingColumns, c)
		}
	}
	return in, nil
}

func csvRows(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	return reader.ReadAll()
}

func workbookRows(r io.Reader) (string, [][]string, error) {
	wb, err := excelize.OpenReader(r)
	if err != nil {
		return "", nil, err
	}
	defer wb.Close()

	sheet := wb.GetSheetName(wb.GetActiveSheetIndex())
	if sheet == "" {
		sheet = wb.GetSheetName(0)
	}
	rows, err := wb.GetRows(sheet)
	if err != nil {
		return "", nil, err
	}
	return sheet, rows, nil
}

// columnKey maps "Device Name" and "device_name" to the same key
func columnKey(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.Join(strings.Fields(h), "_")
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
