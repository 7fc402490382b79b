package model

import (
	"strings"
	"time"
)

// Resource represents one campus asset record as held by the backend
type Resource struct {
	ID              string  `json:"_id" yaml:"id"`
	SlNo            int     `json:"sl_no" yaml:"sl_no"`
	DeviceName      string  `json:"device_name" yaml:"device_name"`
	Quantity        int     `json:"quantity" yaml:"quantity"`
	Description     string  `json:"description,omitempty" yaml:"description,omitempty"`
	ProcurementDate string  `json:"procurement_date" yaml:"procurement_date"` // YYYY-MM-DD
	Location        string  `json:"location" yaml:"location"`
	Cost            float64 `json:"cost" yaml:"cost"`
	Department      string  `json:"department" yaml:"department"`
	CreatedBy       string  `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedBy       string  `json:"updated_by,omitempty" yaml:"updated_by,omitempty"`
	UpdatedAt       string  `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// ResourceInput is the body sent on create and update
type ResourceInput struct {
	DeviceName      string  `json:"device_name"`
	Quantity        int     `json:"quantity"`
	Description     string  `json:"description"`
	ProcurementDate string  `json:"procurement_date"`
	Location        string  `json:"location"`
	Cost            float64 `json:"cost"`
	Department      string  `json:"department"`
}

// DateLayout is the wire format of procurement and export dates
const DateLayout = "2006-01-02"

// Normalize trims text fields and fills the procurement date with today when empty.
func (in *ResourceInput) Normalize(now time.Time) {
	in.DeviceName = trim(in.DeviceName)
	in.Description = trim(in.Description)
	in.Location = trim(in.Location)
	in.Department = trim(in.Department)
	if trim(in.ProcurementDate) == "" {
		in.ProcurementDate = now.Format(DateLayout)
	}
}

// Validate returns field errors keyed by json field name, empty when valid.
func (in *ResourceInput) Validate() map[string]string {
	errs := map[string]string{}
	if trim(in.DeviceName) == "" {
		errs["device_name"] = "Device name is required"
	}
	if in.Quantity <= 0 {
		errs["quantity"] = "Valid quantity is required"
	}
	if trim(in.Location) == "" {
		errs["location"] = "Location is required"
	}
	if in.Cost < 0 {
		errs["cost"] = "Valid cost is required"
	}
	if trim(in.Department) == "" {
		errs["department"] = "Department is required"
	}
	if d := trim(in.ProcurementDate); d != "" {
		if _, err := time.Parse(DateLayout, d); err != nil {
			errs["procurement_date"] = "Procurement date must be YYYY-MM-DD"
		}
	}
	return errs
}

func trim(s string) string { return strings.TrimSpace(s) }

// Pagination is taken verbatim from the backend response
type Pagination struct {
	Page       int  `json:"page" yaml:"page"`
	PerPage    int  `json:"per_page" yaml:"per_page"`
	TotalCount int  `json:"total_count" yaml:"total_count"`
	TotalPages int  `json:"total_pages" yaml:"total_pages"`
	HasNext    bool `json:"has_next" yaml:"has_next"`
	HasPrev    bool `json:"has_prev" yaml:"has_prev"`
}

// ResourceFilters echoes the filters the backend applied
type ResourceFilters struct {
	Department string `json:"department,omitempty" yaml:"department,omitempty"`
	Location   string `json:"location,omitempty" yaml:"location,omitempty"`
	DeviceName string `json:"device_name,omitempty" yaml:"device_name,omitempty"`
	Search     string `json:"search,omitempty" yaml:"search,omitempty"`
}

// ResourcesResponse is one page of GET /resources
type ResourcesResponse struct {
	Resources  []Resource      `json:"resources" yaml:"resources"`
	Pagination Pagination      `json:"pagination" yaml:"pagination"`
	Filters    ResourceFilters `json:"filters" yaml:"filters"`
}
