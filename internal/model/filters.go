package model

// DepartmentStats holds the per-department aggregates of filter-options
type DepartmentStats struct {
	TotalResources int     `json:"total_resources" yaml:"total_resources"`
	TotalCost      float64 `json:"total_cost" yaml:"total_cost"`
	UniqueDevices  int     `json:"unique_devices" yaml:"unique_devices"`
	LocationsCount int     `json:"locations_count" yaml:"locations_count"`
}

// DepartmentWithStats is one node of the department -> location -> device hierarchy
type DepartmentWithStats struct {
	Name        string          `json:"name" yaml:"name"`
	Locations   []string        `json:"locations" yaml:"locations"`
	DeviceTypes []string        `json:"device_types" yaml:"device_types"`
	Stats       DepartmentStats `json:"stats" yaml:"stats"`
}

// FilterSummary counts distinct values across all departments
type FilterSummary struct {
	TotalDepartments int `json:"total_departments" yaml:"total_departments"`
	TotalLocations   int `json:"total_locations" yaml:"total_locations"`
	TotalDeviceTypes int `json:"total_device_types" yaml:"total_device_types"`
}

// FilterOptions is the response of GET /resources/filter-options
type FilterOptions struct {
	Departments []DepartmentWithStats `json:"departments" yaml:"departments"`
	Summary     FilterSummary         `json:"summary" yaml:"summary"`
}

// Department returns the named department, or nil when unknown.
func (o *FilterOptions) Department(name string) *DepartmentWithStats {
	if o == nil {
		return nil
	}
	for i := range o.Departments {
		if o.Departments[i].Name == name {
			return &o.Departments[i]
		}
	}
	return nil
}

// LocationDevice is one entry of GET /resources/filter/devices/{department}/{location}
type LocationDevice struct {
	DeviceName string `json:"device_name"`
	Count      int    `json:"count,omitempty"`
}

// LocationDevicesResponse wraps the devices available at a location
type LocationDevicesResponse struct {
	Devices []LocationDevice `json:"devices"`
}

// Department is one entry of GET /resources/departments
type Department struct {
	ID            string   `json:"_id,omitempty" yaml:"id,omitempty"`
	Name          string   `json:"name" yaml:"name"`
	Locations     []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	ResourceCount int      `json:"resource_count" yaml:"resource_count"`
	TotalCost     float64  `json:"total_cost" yaml:"total_cost"`
	CreatedAt     string   `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}
