package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/martinsuchenak/campusctl/internal/model"
)

// AllDepartments stands for "every department" in device lookups
const AllDepartments = "all"

// FilterOptions fetches the department -> location -> device hierarchy
func (c *Client) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	var out model.FilterOptions
	if err := c.getJSON(ctx, "/resources/filter-options", c.cacheBust(nil), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DevicesForLocation lists device names present at location. department may
// be AllDepartments.
func (c *Client) DevicesForLocation(ctx context.Context, department, location string) ([]string, error) {
	if department == "" {
		department = AllDepartments
	}
	path := "/resources/filter/devices/" + escape(department) + "/" + escape(location)

	var out model.LocationDevicesResponse
	if err := c.getJSON(ctx, path, c.cacheBust(nil), &out); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(out.Devices))
	for _, d := range out.Devices {
		names = append(names, d.DeviceName)
	}
	return names, nil
}

// Departments lists departments with resource counts
func (c *Client) Departments(ctx context.Context) ([]model.Department, error) {
	var out struct {
		Departments []model.Department `json:"departments"`
	}
	if err := c.getJSON(ctx, "/resources/departments", nil, &out); err != nil {
		return nil, err
	}
	return out.Departments, nil
}

// DepartmentLocations lists the locations known for one department
func (c *Client) DepartmentLocations(ctx context.Context, department string) ([]string, error) {
	var out struct {
		Locations []string `json:"locations"`
	}
	if err := c.getJSON(ctx, "/resources/departments/"+escape(department)+"/locations", nil, &out); err != nil {
		return nil, err
	}
	return out.Locations, nil
}

// ListResources fetches one page. params are sent as given; callers omit
// default filters.
func (c *Client) ListResources(ctx context.Context, params url.Values) (*model.ResourcesResponse, error) {
	var out model.ResourcesResponse
	if err := c.getJSON(ctx, "/resources", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetResource fetches one resource by ID
func (c *Client) GetResource(ctx context.Context, id string) (*model.Resource, error) {
	var out model.Resource
	if err := c.getJSON(ctx, "/resources/"+escape(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateResource adds a resource
func (c *Client) CreateResource(ctx context.Context, in *model.ResourceInput) (*model.Resource, error) {
	var out model.Resource
	if err := c.sendJSON(ctx, http.MethodPost, "/resources", in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateResource replaces the editable fields of a resource
func (c *Client) UpdateResource(ctx context.Context, id string, in *model.ResourceInput) (*model.Resource, error) {
	var out model.Resource
	if err := c.sendJSON(ctx, http.MethodPut, "/resources/"+escape(id), in, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteResource removes a resource
func (c *Client) DeleteResource(ctx context.Context, id string) error {
	return c.sendJSON(ctx, http.MethodDelete, "/resources/"+escape(id), nil, nil, false)
}
