package importer

import (
	"errors"
	"slices"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestInspectCSV(t *testing.T) {
	in, err := Inspect(File{Name: "a.CSV", Content: []byte("Device Name,Quantity,Location\nLaptop,2,LabA\n,,\nMouse,5,LabB\n")})
	if err != nil {
		t.Fatal(err)
	}
	if !in.Inspectable || in.Rows != 2 || in.Extension != ".csv" {
		t.Errorf("inspection = %+v", in)
	}
	want := []string{"description", "procurement_date", "cost"}
	if !slices.Equal(in.MissingColumns, want) {
		t.Errorf("missing = %v, want %v", in.MissingColumns, want)
	}
}

func TestInspectWorkbook(t *testing.T) {
	wb := excelize.NewFile()
	defer wb.Close()
	header := []any{"device_name", "quantity", "description", "procurement_date", "location", "cost"}
	if err := wb.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	row := []any{"Laptop", 4, "", "2024-01-01", "LabA", 50000}
	if err := wb.SetSheetRow("Sheet1", "A2", &row); err != nil {
		t.Fatal(err)
	}
	buf, err := wb.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	in, err := Inspect(File{Name: "assets.xlsx", Content: buf.Bytes()})
	if err != nil {
		t.Fatal(err)
	}
	if in.Sheet != "Sheet1" || in.Rows != 1 || len(in.MissingColumns) != 0 {
		t.Errorf("inspection = %+v", in)
	}
}

func TestInspectLegacyWorkbook(t *testing.T) {
	in, err := Inspect(File{Name: "old.xls", Content: []byte{0xd0, 0xcf}})
	if err != nil {
		t.Fatal(err)
	}
	if in.Inspectable {
		t.Error(".xls should not be read locally")
	}
}

func TestInspectRejects(t *testing.T) {
	if _, err := Inspect(File{Name: "a.pdf"}); !errors.Is(err, ErrUnsupportedFile) {
		t.Errorf("err = %v", err)
	}
	if _, err := Inspect(File{Name: "broken.xlsx", Content: []byte("not a zip")}); err == nil {
		t.Error("expected error for a corrupt workbook")
	}
}
