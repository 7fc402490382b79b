package filters

import (
	"context"
	"slices"
	"sync"

	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
)

// ActionKind names one transition of the selection
type ActionKind int

const (
	SetDepartment ActionKind = iota
	SetLocation
	SetDevice
	SetSearch
	Clear
	DevicesLoaded
	DevicesFailed
	OptionsReloaded
)

// Action is one input to Reduce. The lookup fields are only read for
// DevicesLoaded and DevicesFailed.
type Action struct {
	Kind    ActionKind
	Value   string
	Devices []string
	Seq     uint64
	Err     error
}

// View is the selection plus the options the dependent dropdowns offer
type View struct {
	Selection          Selection
	AvailableLocations []string
	AvailableDevices   []string
	DevicesLoading     bool
	DevicesErr         error

	// devicesSeq identifies the device lookup whose answer is still wanted
	devicesSeq uint64
}

// Effect is the work a transition asks the caller to do
type Effect struct {
	// Changed is set when the query parameters differ from before
	Changed bool

	// FetchDevices asks for the devices at (Department, Location); the
	// answer must be dispatched back with Seq.
	FetchDevices bool
	Department   string
	Location     string
	Seq          uint64
}

// NewView returns the default view over opts
func NewView(opts *model.FilterOptions) View {
	return View{
		Selection:          Default(),
		AvailableLocations: LocationsIn(opts, All),
		AvailableDevices:   DeviceTypesIn(opts, All),
	}
}

// Reduce applies a to v. It does no I/O: a device lookup is returned as an
// Effect and its answer comes back as another Action.
func Reduce(v View, a Action, opts *model.FilterOptions) (View, Effect) {
	before := v.Selection
	var eff Effect

	switch a.Kind {
	case SetDepartment:
		d := normalizeValue(a.Value)
		if d == v.Selection.Department {
			return v, eff
		}
		v.Selection.Department = d
		v.Selection.Location = All
		v.Selection.Device = All
		v.AvailableLocations = LocationsIn(opts, d)
		v.AvailableDevices = DeviceTypesIn(opts, d)
		v.DevicesLoading = false
		v.DevicesErr = nil
		v.devicesSeq++

	case SetLocation:
		l := normalizeValue(a.Value)
		if l == v.Selection.Location {
			return v, eff
		}
		v.Selection.Location = l
		v.Selection.Device = All
		v.DevicesErr = nil
		v.devicesSeq++
		if l == All {
			v.AvailableDevices = DeviceTypesIn(opts, v.Selection.Department)
			v.DevicesLoading = false
		} else {
			v.AvailableDevices = nil
			v.DevicesLoading = true
			eff.FetchDevices = true
			eff.Department = v.Selection.Department
			eff.Location = l
			eff.Seq = v.devicesSeq
		}

	case SetDevice:
		v.Selection.Device = normalizeValue(a.Value)

	case SetSearch:
		v.Selection.Search = a.Value

	case Clear:
		if v.Selection.IsDefault() {
			return v, eff
		}
		seq := v.devicesSeq + 1
		v = NewView(opts)
		v.devicesSeq = seq

	case DevicesLoaded, DevicesFailed:
		if !v.DevicesLoading || a.Seq != v.devicesSeq {
			return v, eff
		}
		v.DevicesLoading = false
		if a.Kind == DevicesFailed {
			v.AvailableDevices = []string{}
			v.DevicesErr = a.Err
		} else {
			v.AvailableDevices = append([]string{}, a.Devices...)
		}

	case OptionsReloaded:
		v.AvailableLocations = LocationsIn(opts, v.Selection.Department)
		if v.Selection.Location == All {
			v.AvailableDevices = DeviceTypesIn(opts, v.Selection.Department)
		}
	}

	v.Selection = v.Selection.Normalize()
	eff.Changed = v.Selection != before.Normalize()
	return v, eff
}

func normalizeValue(s string) string {
	return Selection{Department: s}.Normalize().Department
}

// State serialises actions through Reduce and runs their effects. onChange
// is called once per action that changed the query parameters.
type State struct {
	cache    *Cache
	onChange func(Selection)

	mu      sync.Mutex
	view    View
	pending sync.WaitGroup
}

func NewState(cache *Cache, onChange func(Selection)) *State {
	return &State{
		cache:    cache,
		onChange: onChange,
		view:     NewView(cache.Snapshot()),
	}
}

// View returns a copy of the current view
func (s *State) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.AvailableLocations = slices.Clone(v.AvailableLocations)
	v.AvailableDevices = slices.Clone(v.AvailableDevices)
	return v
}

// Selection returns the current selection
func (s *State) Selection() Selection {
	return s.View().Selection
}

// Dispatch applies a and starts any device lookup it asked for
func (s *State) Dispatch(ctx context.Context, a Action) View {
	s.mu.Lock()
	next, eff := Reduce(s.view, a, s.cache.Snapshot())
	s.view = next
	s.mu.Unlock()

	if eff.FetchDevices {
		s.pending.Add(1)
		go s.lookupDevices(ctx, eff)
	}
	if eff.Changed && s.onChange != nil {
		s.onChange(next.Selection)
	}
	return s.View()
}

func (s *State) lookupDevices(ctx context.Context, eff Effect) {
	defer s.pending.Done()

	devices, err := s.cache.DevicesFor(ctx, eff.Department, eff.Location)
	if err != nil {
		log.Warn("Failed to load devices for location", "department", eff.Department, "location", eff.Location, "error", err)
		s.Dispatch(ctx, Action{Kind: DevicesFailed, Seq: eff.Seq, Err: err})
		return
	}
	s.Dispatch(ctx, Action{Kind: DevicesLoaded, Seq: eff.Seq, Devices: devices})
}

// Wait blocks until every started device lookup has been applied or dropped
func (s *State) Wait() {
	s.pending.Wait()
}

func (s *State) SetDepartment(ctx context.Context, d string) View {
	return s.Dispatch(ctx, Action{Kind: SetDepartment, Value: d})
}

func (s *State) SetLocation(ctx context.Context, l string) View {
	return s.Dispatch(ctx, Action{Kind: SetLocation, Value: l})
}

func (s *State) SetDevice(ctx context.Context, d string) View {
	return s.Dispatch(ctx, Action{Kind: SetDevice, Value: d})
}

func (s *State) SetSearch(ctx context.Context, q string) View {
	return s.Dispatch(ctx, Action{Kind: SetSearch, Value: q})
}

func (s *State) Clear(ctx context.Context) View {
	return s.Dispatch(ctx, Action{Kind: Clear})
}

// Reload refreshes the cache and re-derives the available options. The
// selection itself is left alone.
func (s *State) Reload(ctx context.Context) error {
	_, err := s.cache.Load(ctx)
	s.Dispatch(ctx, Action{Kind: OptionsReloaded})
	return err
}
