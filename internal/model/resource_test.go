package model

import (
	"testing"
	"time"
)

func TestNormalizeTrimsAndDefaultsDate(t *testing.T) {
	in := ResourceInput{
		DeviceName: "  Projector ",
		Location:   "\tLabA",
		Department: " CSE ",
		Quantity:   1,
	}
	in.Normalize(time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC))

	if in.DeviceName != "Projector" || in.Location != "LabA" || in.Department != "CSE" {
		t.Errorf("fields not trimmed: %+v", in)
	}
	if in.ProcurementDate != "2025-01-15" {
		t.Errorf("procurement_date = %q, want 2025-01-15", in.ProcurementDate)
	}
}

func TestResourceInputValidate(t *testing.T) {
	valid := ResourceInput{DeviceName: "Laptop", Quantity: 2, Location: "LabA", Department: "CSE", ProcurementDate: "2024-02-20"}

	tests := []struct {
		name   string
		change func(*ResourceInput)
		field  string
	}{
		{"valid", func(*ResourceInput) {}, ""},
		{"blank device", func(in *ResourceInput) { in.DeviceName = "   " }, "device_name"},
		{"zero quantity", func(in *ResourceInput) { in.Quantity = 0 }, "quantity"},
		{"blank location", func(in *ResourceInput) { in.Location = " " }, "location"},
		{"negative cost", func(in *ResourceInput) { in.Cost = -1 }, "cost"},
		{"blank department", func(in *ResourceInput) { in.Department = "" }, "department"},
		{"bad date", func(in *ResourceInput) { in.ProcurementDate = "20/02/2024" }, "procurement_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.change(&in)
			errs := in.Validate()
			if tt.field == "" {
				if len(errs) != 0 {
					t.Errorf("errors = %v, want none", errs)
				}
				return
			}
			if len(errs) != 1 || errs[tt.field] == "" {
				t.Errorf("errors = %v, want only %s", errs, tt.field)
			}
		})
	}
}
