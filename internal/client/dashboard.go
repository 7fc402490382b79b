package client

import (
	"context"

	"github.com/martinsuchenak/campusctl/internal/model"
)

// DashboardOverview fetches the dashboard metrics
func (c *Client) DashboardOverview(ctx context.Context) (*model.DashboardOverview, error) {
	var out model.DashboardOverview
	if err := c.getJSON(ctx, "/dashboard/overview", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DepartmentAnalytics fetches per-department resource counts and cost
func (c *Client) DepartmentAnalytics(ctx context.Context) (*model.DepartmentAnalytics, error) {
	var out model.DepartmentAnalytics
	if err := c.getJSON(ctx, "/dashboard/department-analytics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CostAnalysis fetches total value per device type
func (c *Client) CostAnalysis(ctx context.Context) (*model.CostAnalysis, error) {
	var out model.CostAnalysis
	if err := c.getJSON(ctx, "/dashboard/cost-analysis", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UtilizationMetrics fetches device quantities and resources per location
func (c *Client) UtilizationMetrics(ctx context.Context) (*model.UtilizationReport, error) {
	var out model.UtilizationReport
	if err := c.getJSON(ctx, "/dashboard/utilization-metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
