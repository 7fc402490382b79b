// Package filters holds the department -> location -> device hierarchy and
// the selection made against it.
package filters

import (
	"context"
	"sync"

	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
)

// All is the default value of every dimension
const All = "all"

// Source is the part of the API client the cache reads from
type Source interface {
	FilterOptions(ctx context.Context) (*model.FilterOptions, error)
	DevicesForLocation(ctx context.Context, department, location string) ([]string, error)
}

// Cache holds the last successfully fetched FilterOptions. It is shared by
// every view of one process and is safe for concurrent use.
type Cache struct {
	src Source

	mu       sync.RWMutex
	snapshot *model.FilterOptions
	lastErr  error
}

func NewCache(src Source) *Cache {
	return &Cache{src: src}
}

// Load fetches the hierarchy and replaces the snapshot. On failure the
// previous snapshot is kept and the error returned.
func (c *Cache) Load(ctx context.Context) (*model.FilterOptions, error) {
	log.Debug("Loading filter options")
	opts, err := c.src.FilterOptions(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.lastErr = err
	if err != nil {
		log.Warn("Failed to load filter options", "error", err)
		return c.snapshot, err
	}
	c.snapshot = opts
	log.Debug("Filter options loaded", "departments", len(opts.Departments))
	return opts, nil
}

// Snapshot returns the held options, nil before the first successful Load
func (c *Cache) Snapshot() *model.FilterOptions {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Err returns the error of the last Load, nil after a success
func (c *Cache) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastErr
}

// Departments lists department names in backend order
func (c *Cache) Departments() []string {
	return DepartmentNames(c.Snapshot())
}

// LocationsFor returns the locations of department, or of every department
// for All. Unknown departments have none.
func (c *Cache) LocationsFor(department string) []string {
	return LocationsIn(c.Snapshot(), department)
}

// DevicesFor returns the devices selectable for (department, location). A
// specific location needs a backend lookup; All is answered from the snapshot.
func (c *Cache) DevicesFor(ctx context.Context, department, location string) ([]string, error) {
	if isAll(location) {
		return DeviceTypesIn(c.Snapshot(), department), nil
	}
	if isAll(department) {
		department = All
	}
	return c.src.DevicesForLocation(ctx, department, location)
}

// DepartmentNames lists the departments of opts
func DepartmentNames(opts *model.FilterOptions) []string {
	if opts == nil {
		return nil
	}
	names := make([]string, 0, len(opts.Departments))
	for _, d := range opts.Departments {
		names = append(names, d.Name)
	}
	return names
}

// LocationsIn is LocationsFor over an explicit snapshot
func LocationsIn(opts *model.FilterOptions, department string) []string {
	return collect(opts, department, func(d *model.DepartmentWithStats) []string { return d.Locations })
}

// DeviceTypesIn returns the department-wide device types, or their union for All
func DeviceTypesIn(opts *model.FilterOptions, department string) []string {
	return collect(opts, department, func(d *model.DepartmentWithStats) []string { return d.DeviceTypes })
}

func collect(opts *model.FilterOptions, department string, field func(*model.DepartmentWithStats) []string) []string {
	if opts == nil {
		return []string{}
	}
	if !isAll(department) {
		d := opts.Department(department)
		if d == nil {
			return []string{}
		}
		return append([]string{}, field(d)...)
	}

	seen := map[string]bool{}
	out := []string{}
	for i := range opts.Departments {
		for _, v := range field(&opts.Departments[i]) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

func isAll(v string) bool {
	return v == "" || v == All
}
