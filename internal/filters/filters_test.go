package filters

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"sync"
	"testing"

	"github.com/martinsuchenak/campusctl/internal/model"
)

type fakeSource struct {
	mu       sync.Mutex
	opts     *model.FilterOptions
	err      error
	devices  map[string][]string
	devErr   error
	gate     chan struct{}
	lookups  []string
	optCalls int
}

func (f *fakeSource) FilterOptions(ctx context.Context) (*model.FilterOptions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.opts, nil
}

func (f *fakeSource) DevicesForLocation(ctx context.Context, department, location string) ([]string, error) {
	f.mu.Lock()
	f.lookups = append(f.lookups, department+"/"+location)
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.devErr != nil {
		return nil, f.devErr
	}
	return f.devices[department+"/"+location], nil
}

func campus() *model.FilterOptions {
	return &model.FilterOptions{Departments: []model.DepartmentWithStats{
		{Name: "CSE", Locations: []string{"LabA", "LabB"}, DeviceTypes: []string{"Laptop"}},
		{Name: "ECE", Locations: []string{"LabB", "Workshop"}, DeviceTypes: []string{"Oscilloscope", "Laptop"}},
	}}
}

func loadedCache(t *testing.T, src *fakeSource) *Cache {
	t.Helper()
	c := NewCache(src)
	if _, err := c.Load(context.Background()); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestLocationsFor(t *testing.T) {
	c := loadedCache(t, &fakeSource{opts: campus()})

	tests := []struct {
		department string
		want       []string
	}{
		{"CSE", []string{"LabA", "LabB"}},
		{All, []string{"LabA", "LabB", "Workshop"}},
		{"", []string{"LabA", "LabB", "Workshop"}},
		{"MECH", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.department, func(t *testing.T) {
			if got := c.LocationsFor(tt.department); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("LocationsFor(%q) = %v, want %v", tt.department, got, tt.want)
			}
		})
	}
}

func TestDevicesForAllLocationsUsesSnapshot(t *testing.T) {
	src := &fakeSource{opts: campus()}
	c := loadedCache(t, src)

	got, err := c.DevicesFor(context.Background(), All, All)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, []string{"Laptop", "Oscilloscope"}) {
		t.Errorf("devices = %v", got)
	}
	if len(src.lookups) != 0 {
		t.Errorf("unexpected lookups %v", src.lookups)
	}
}

func TestLoadFailureKeepsSnapshot(t *testing.T) {
	src := &fakeSource{opts: campus()}
	c := loadedCache(t, src)

	src.err = errors.New("offline")
	if _, err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := c.Departments(); !reflect.DeepEqual(got, []string{"CSE", "ECE"}) {
		t.Errorf("departments = %v", got)
	}
	if c.Err() == nil {
		t.Error("Err should report the failure")
	}
}

func TestEmptyCacheDegradesToNoOptions(t *testing.T) {
	c := NewCache(&fakeSource{err: errors.New("offline")})
	c.Load(context.Background())

	if got := c.LocationsFor(All); len(got) != 0 {
		t.Errorf("locations = %v", got)
	}
}

func TestSetDepartmentResetsDependents(t *testing.T) {
	v := NewView(campus())
	v.Selection = Selection{Department: "ECE", Location: "Workshop", Device: "Oscilloscope"}

	next, eff := Reduce(v, Action{Kind: SetDepartment, Value: "CSE"}, campus())
	if next.Selection.Location != All || next.Selection.Device != All {
		t.Errorf("selection = %+v", next.Selection)
	}
	if !reflect.DeepEqual(next.AvailableLocations, []string{"LabA", "LabB"}) {
		t.Errorf("locations = %v", next.AvailableLocations)
	}
	if !eff.Changed || eff.FetchDevices {
		t.Errorf("effect = %+v", eff)
	}
}

// Scenario A
func TestSetLocationShowsDevicesLoading(t *testing.T) {
	src := &fakeSource{
		opts:    campus(),
		devices: map[string][]string{"CSE/LabB": {"Laptop", "Projector"}},
		gate:    make(chan struct{}),
	}
	c := loadedCache(t, src)

	var changes []Selection
	s := NewState(c, func(sel Selection) { changes = append(changes, sel) })
	ctx := context.Background()

	v := s.SetDepartment(ctx, "CSE")
	if !reflect.DeepEqual(v.AvailableLocations, []string{"LabA", "LabB"}) {
		t.Fatalf("locations = %v", v.AvailableLocations)
	}

	v = s.SetLocation(ctx, "LabB")
	if !v.DevicesLoading {
		t.Error("devices should be loading")
	}
	if len(v.AvailableDevices) != 0 {
		t.Errorf("stale devices %v shown while loading", v.AvailableDevices)
	}
	if v.Selection.Device != All {
		t.Errorf("device = %q", v.Selection.Device)
	}

	close(src.gate)
	s.Wait()

	v = s.View()
	if v.DevicesLoading || !reflect.DeepEqual(v.AvailableDevices, []string{"Laptop", "Projector"}) {
		t.Errorf("after lookup: loading=%v devices=%v", v.DevicesLoading, v.AvailableDevices)
	}
	if !reflect.DeepEqual(src.lookups, []string{"CSE/LabB"}) {
		t.Errorf("lookups = %v", src.lookups)
	}
	if len(changes) != 2 {
		t.Errorf("onChange called %d times, want 2", len(changes))
	}
}

func TestStaleDeviceLookupDropped(t *testing.T) {
	src := &fakeSource{
		opts: campus(),
		devices: map[string][]string{
			"CSE/LabA": {"Router"},
			"CSE/LabB": {"Laptop", "Projector"},
		},
		gate: make(chan struct{}),
	}
	s := NewState(loadedCache(t, src), nil)
	ctx := context.Background()

	s.SetDepartment(ctx, "CSE")
	s.SetLocation(ctx, "LabA")
	s.SetLocation(ctx, "LabB")
	close(src.gate)
	s.Wait()

	if got := s.View().AvailableDevices; !reflect.DeepEqual(got, []string{"Laptop", "Projector"}) {
		t.Errorf("devices = %v, want the LabB answer", got)
	}
}

func TestDeviceLookupFailureDisablesDropdown(t *testing.T) {
	src := &fakeSource{opts: campus(), devErr: errors.New("boom")}
	s := NewState(loadedCache(t, src), nil)
	ctx := context.Background()

	s.SetLocation(ctx, "LabB")
	s.Wait()

	v := s.View()
	if v.DevicesLoading || v.DevicesErr == nil || len(v.AvailableDevices) != 0 {
		t.Errorf("view = %+v", v)
	}
}

func TestExactlyOneNotificationPerAction(t *testing.T) {
	s := NewState(loadedCache(t, &fakeSource{opts: campus()}), nil)
	calls := 0
	s.onChange = func(Selection) { calls++ }
	ctx := context.Background()

	s.SetDepartment(ctx, "ECE")
	s.SetDevice(ctx, "Laptop")
	s.SetSearch(ctx, "dell")
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}

	s.SetDepartment(ctx, "ECE")
	if calls != 3 {
		t.Errorf("re-selecting the same department notified")
	}

	s.Clear(ctx)
	if calls != 4 {
		t.Errorf("clear notified %d times", calls-3)
	}
	if got := s.Selection(); got != Default() {
		t.Errorf("selection = %+v", got)
	}

	s.Clear(ctx)
	if calls != 4 {
		t.Error("second clear should not notify")
	}
}

func TestReloadPicksUpNewDepartment(t *testing.T) {
	src := &fakeSource{opts: campus()}
	s := NewState(loadedCache(t, src), nil)

	opts := campus()
	opts.Departments = append(opts.Departments, model.DepartmentWithStats{Name: "MECH", Locations: []string{"Bay1"}})
	src.opts = opts

	if err := s.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := s.View().AvailableLocations; !reflect.DeepEqual(got, []string{"LabA", "LabB", "Workshop", "Bay1"}) {
		t.Errorf("locations = %v", got)
	}
}

func TestSelectionValuesRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		sel  Selection
		want url.Values
	}{
		{"defaults", Default(), url.Values{}},
		{"department only", Selection{Department: "CSE", Location: All, Device: All}, url.Values{"department": {"CSE"}}},
		{"blank means all", Selection{Location: "LabB"}, url.Values{"location": {"LabB"}}},
		{"everything", Selection{Department: "ECE", Location: "LabB", Device: "Laptop", Search: " dell "},
			url.Values{"department": {"ECE"}, "location": {"LabB"}, "device_name": {"Laptop"}, "search": {"dell"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.sel.Values()
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Values() = %v, want %v", got, tt.want)
			}
			if back := FromValues(got); back != tt.sel.Normalize() {
				t.Errorf("FromValues = %+v, want %+v", back, tt.sel.Normalize())
			}
		})
	}
}
