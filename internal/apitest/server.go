// Package apitest is an in-memory stand-in for the campus asset backend,
// served over httptest for client, pipeline and command tests.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/martinsuchenak/campusctl/internal/model"
)

// Credentials accepted by POST /auth/login
const (
	Email    = "admin@campus.edu"
	Password = "secret"
	Token    = "test-token"
)

// Recorded is one request the server received
type Recorded struct {
	Method string
	Path   string
	Query  url.Values
	Auth   string
}

type failure struct {
	status  int
	message string
	details map[string]string
}

type upload struct {
	department string
	rows       [][]string
	created    bool
}

// Server is safe for concurrent use
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	token     string
	user      model.User
	options   model.FilterOptions
	devices   map[string][]string
	resources []model.Resource
	uploads   map[string]*upload
	requests  []Recorded
	failures  map[string][]failure
	gates     map[string]chan struct{}
	releases  []func()
	aiOnline  bool
}

// NewServer starts a server seeded with a small campus and stops it when the
// test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		token:    Token,
		user:     model.User{ID: "u-1", Name: "Asha Admin", Email: Email, Role: "admin", Status: "active"},
		devices:  map[string][]string{},
		uploads:  map[string]*upload{},
		failures: map[string][]failure{},
		gates:    map[string]chan struct{}{},
		aiOnline: true,
	}
	s.seed()

	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	s.Server = httptest.NewServer(s.recordMiddleware(authMiddleware(s, mux)))
	t.Cleanup(func() {
		s.mu.Lock()
		releases := s.releases
		s.mu.Unlock()
		for _, release := range releases {
			release()
		}
		s.Close()
	})
	return s
}

// APIURL is the base URL clients are configured with
func (s *Server) APIURL() string {
	return s.URL + "/api"
}

func (s *Server) seed() {
	s.options = model.FilterOptions{
		Departments: []model.DepartmentWithStats{
			{
				Name:        "CSE",
				Locations:   []string{"LabA", "LabB"},
				DeviceTypes: []string{"Laptop"},
			},
			{
				Name:        "ECE",
				Locations:   []string{"LabB", "Workshop"},
				DeviceTypes: []string{"Oscilloscope", "Laptop"},
			},
		},
	}
	s.devices["CSE/LabB"] = []string{"Laptop", "Projector"}
	s.devices["all/LabB"] = []string{"Laptop", "Projector", "Oscilloscope"}

	s.resources = []model.Resource{
		{ID: "r-1", SlNo: 1, DeviceName: "Laptop", Quantity: 10, ProcurementDate: "2024-01-10", Location: "LabA", Cost: 55000, Department: "CSE"},
		{ID: "r-2", SlNo: 2, DeviceName: "Projector", Quantity: 2, ProcurementDate: "2023-06-01", Location: "LabB", Cost: 32000, Department: "CSE"},
		{ID: "r-3", SlNo: 3, DeviceName: "Oscilloscope", Quantity: 4, ProcurementDate: "2022-08-15", Location: "LabB", Cost: 41000, Department: "ECE"},
		{ID: "r-4", SlNo: 4, DeviceName: "Laptop", Quantity: 6, ProcurementDate: "2024-02-20", Location: "Workshop", Cost: 52000, Department: "ECE"},
	}
	s.recomputeStats()
}

// recomputeStats refreshes department stats from resources; callers hold mu
func (s *Server) recomputeStats() {
	for i := range s.options.Departments {
		d := &s.options.Departments[i]
		d.Stats = model.DepartmentStats{LocationsCount: len(d.Locations)}
		devices := map[string]bool{}
		for _, r := range s.resources {
			if r.Department != d.Name {
				continue
			}
			d.Stats.TotalResources++
			d.Stats.TotalCost += r.Cost * float64(r.Quantity)
			devices[r.DeviceName] = true
		}
		d.Stats.UniqueDevices = len(devices)
	}

	locs, devs := map[string]bool{}, map[string]bool{}
	for _, d := range s.options.Departments {
		for _, l := range d.Locations {
			locs[l] = true
		}
		for _, v := range d.DeviceTypes {
			devs[v] = true
		}
	}
	s.options.Summary = model.FilterSummary{
		TotalDepartments: len(s.options.Departments),
		TotalLocations:   len(locs),
		TotalDeviceTypes: len(devs),
	}
}

// SetToken changes the token the server accepts; "" rejects every token
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// SetUser replaces the signed-in user returned by login and verify
func (s *Server) SetUser(u model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = u
}

// SetAIOnline toggles the assistant status
func (s *Server) SetAIOnline(online bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aiOnline = online
}

// SetFilterOptions replaces the hierarchy served by filter-options
func (s *Server) SetFilterOptions(opts model.FilterOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.options = opts
}

// SetDevices sets the devices served for (department, location)
func (s *Server) SetDevices(department, location string, devices []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[department+"/"+location] = devices
}

// SetResources replaces the stored resources
func (s *Server) SetResources(resources []model.Resource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resources = append([]model.Resource(nil), resources...)
	s.recomputeStats()
}

// Resources returns a copy of the stored resources
func (s *Server) Resources() []model.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Resource(nil), s.resources...)
}

// FailNext makes the next request matching route ("GET /api/resources")
// fail with status and message. Calls queue.
func (s *Server) FailNext(route string, status int, message string) {
	s.FailNextWithDetails(route, status, message, nil)
}

// FailNextWithDetails is FailNext with a field error map
func (s *Server) FailNextWithDetails(route string, status int, message string, details map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], failure{status: status, message: message, details: details})
}

// Gate makes requests matching route block until the returned function is
// called. Each call to Gate holds exactly one request.
func (s *Server) Gate(route string) (release func()) {
	ch := make(chan struct{})
	var once sync.Once
	release = func() { once.Do(func() { close(ch) }) }

	s.mu.Lock()
	s.gates[route] = ch
	s.releases = append(s.releases, release)
	s.mu.Unlock()
	return release
}

// Requests returns the requests received so far
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Count returns how many requests hit path (without query)
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent request to path
func (s *Server) Last(method, path string) (Recorded, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method && reqs[i].Path == path {
			return reqs[i], true
		}
	}
	return Recorded{}, false
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Recorded{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Auth:   r.Header.Get("Authorization"),
		})
		gate, gated := s.takeGate(r)
		s.mu.Unlock()

		if gated {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// takeGate pops the gate for r's route; callers hold mu
func (s *Server) takeGate(r *http.Request) (chan struct{}, bool) {
	route := r.Method + " " + r.URL.Path
	ch, ok := s.gates[route]
	if ok {
		delete(s.gates, route)
	}
	return ch, ok
}

// takeFailure pops the queued failure for r's route
func (s *Server) takeFailure(r *http.Request) (failure, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	route := r.Method + " " + r.URL.Path
	queue := s.failures[route]
	if len(queue) == 0 {
		return failure{}, false
	}
	s.failures[route] = queue[1:]
	return queue[0], true
}

// authMiddleware checks the bearer token on everything except login
func authMiddleware(s *Server, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if f, ok := s.takeFailure(r); ok {
			writeErrorDetails(w, f.status, f.message, f.details)
			return
		}

		if !strings.HasPrefix(r.URL.Path, "/api/") || r.URL.Path == "/api/auth/login" {
			next.ServeHTTP(w, r)
			return
		}

		s.mu.Lock()
		token := s.token
		s.mu.Unlock()

		parts := strings.Split(r.Header.Get("Authorization"), " ")
		if token == "" || len(parts) != 2 || parts[0] != "Bearer" || parts[1] != token {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, status int, message string) {
	writeErrorDetails(w, status, message, nil)
}

func writeErrorDetails(w http.ResponseWriter, status int, message string, details map[string]string) {
	body := map[string]any{"error": message}
	if len(details) > 0 {
		body["details"] = details
	}
	writeJSON(w, status, body)
}

// generateID generates a UUIDv7 for stored records
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
