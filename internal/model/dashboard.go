package model

// DashboardOverview is the response of GET /dashboard/overview
type DashboardOverview struct {
	Overview           OverviewTotals     `json:"overview" yaml:"overview"`
	FinancialMetrics   FinancialMetrics   `json:"financial_metrics" yaml:"financial_metrics"`
	TopPerformers      TopPerformers      `json:"top_performers" yaml:"top_performers"`
	UtilizationMetrics UtilizationMetrics `json:"utilization_metrics" yaml:"utilization_metrics"`
}

type OverviewTotals struct {
	TotalResources     int     `json:"total_resources" yaml:"total_resources"`
	TotalDepartments   int     `json:"total_departments" yaml:"total_departments"`
	TotalUsers         int     `json:"total_users" yaml:"total_users"`
	TotalValue         float64 `json:"total_value" yaml:"total_value"`
	TotalQuantity      int     `json:"total_quantity" yaml:"total_quantity"`
	UniqueDevices      int     `json:"unique_devices" yaml:"unique_devices"`
	UniqueLocations    int     `json:"unique_locations" yaml:"unique_locations"`
	RecentAdditions30d int     `json:"recent_additions_30d" yaml:"recent_additions_30d"`
}

type FinancialMetrics struct {
	TotalAssetValue    float64 `json:"total_asset_value" yaml:"total_asset_value"`
	AverageCostPerItem float64 `json:"average_cost_per_item" yaml:"average_cost_per_item"`
	MostExpensiveItem  float64 `json:"most_expensive_item" yaml:"most_expensive_item"`
	LeastExpensiveItem float64 `json:"least_expensive_item" yaml:"least_expensive_item"`
	CostPerResource    float64 `json:"cost_per_resource" yaml:"cost_per_resource"`
}

type NamedCount struct {
	Name          string `json:"name" yaml:"name"`
	ResourceCount int    `json:"resource_count,omitempty" yaml:"resource_count,omitempty"`
	DeviceTypes   int    `json:"device_types,omitempty" yaml:"device_types,omitempty"`
}

type ExpensiveItem struct {
	DeviceName string  `json:"device_name" yaml:"device_name"`
	Cost       float64 `json:"cost" yaml:"cost"`
	Department string  `json:"department" yaml:"department"`
}

type TopPerformers struct {
	LeadingDepartment NamedCount    `json:"leading_department" yaml:"leading_department"`
	MostExpensiveItem ExpensiveItem `json:"most_expensive_item" yaml:"most_expensive_item"`
}

type UtilizationMetrics struct {
	TotalLocations          int        `json:"total_locations" yaml:"total_locations"`
	AvgResourcesPerLocation float64    `json:"avg_resources_per_location" yaml:"avg_resources_per_location"`
	MostResourcedLocation   NamedCount `json:"most_resourced_location" yaml:"most_resourced_location"`
	MostDiverseLocation     NamedCount `json:"most_diverse_location" yaml:"most_diverse_location"`
}

// EmptyDashboard is shown when the overview cannot be fetched.
func EmptyDashboard() *DashboardOverview {
	na := NamedCount{Name: "N/A"}
	return &DashboardOverview{
		TopPerformers: TopPerformers{
			LeadingDepartment: na,
			MostExpensiveItem: ExpensiveItem{DeviceName: "N/A", Department: "N/A"},
		},
		UtilizationMetrics: UtilizationMetrics{
			MostResourcedLocation: na,
			MostDiverseLocation:   na,
		},
	}
}

// DepartmentAnalytics is the response of GET /dashboard/department-analytics
type DepartmentAnalytics struct {
	Departments []DepartmentAnalytic `json:"department_analytics" yaml:"department_analytics"`
}

type DepartmentAnalytic struct {
	Name    string           `json:"department_name" yaml:"department_name"`
	Metrics DepartmentMetric `json:"metrics" yaml:"metrics"`
}

type DepartmentMetric struct {
	TotalResources int     `json:"total_resources" yaml:"total_resources"`
	TotalCost      float64 `json:"total_cost" yaml:"total_cost"`
	TotalQuantity  int     `json:"total_quantity" yaml:"total_quantity"`
}

// CostAnalysis is the response of GET /dashboard/cost-analysis
type CostAnalysis struct {
	CostAnalysis struct {
		DeviceTypeCosts []DeviceTypeCost `json:"device_type_costs" yaml:"device_type_costs"`
	} `json:"cost_analysis" yaml:"cost_analysis"`
}

// DeviceTypeCost totals one device type; the backend groups by device name
// and sends it as _id.
type DeviceTypeCost struct {
	DeviceName    string  `json:"_id" yaml:"device_name"`
	TotalCost     float64 `json:"total_cost" yaml:"total_cost"`
	TotalQuantity int     `json:"total_quantity" yaml:"total_quantity"`
}

// UtilizationReport is the response of GET /dashboard/utilization-metrics
type UtilizationReport struct {
	Metrics struct {
		Devices   []DeviceUtilization `json:"device_utilization" yaml:"device_utilization"`
		Locations []LocationDensity   `json:"location_density" yaml:"location_density"`
	} `json:"utilization_metrics" yaml:"utilization_metrics"`
}

type DeviceUtilization struct {
	DeviceName    string `json:"_id" yaml:"device_name"`
	TotalQuantity int    `json:"total_quantity" yaml:"total_quantity"`
}

type LocationDensity struct {
	Location      string `json:"_id" yaml:"location"`
	ResourceCount int    `json:"resource_count" yaml:"resource_count"`
	Department    string `json:"department,omitempty" yaml:"department,omitempty"`
}
