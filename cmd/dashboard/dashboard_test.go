package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/campusctl/internal/apitest"
	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/config"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/render"
)

func testApp(t *testing.T) (*apitest.Server, *app.App, *bytes.Buffer) {
	t.Helper()
	srv := apitest.NewServer(t)
	out := &bytes.Buffer{}
	a, err := app.OpenWith(context.Background(), &config.Config{
		Server:    srv.APIURL(),
		DataDir:   t.TempDir(),
		Timeout:   5 * time.Second,
		PerPage:   10,
		LogLevel:  "error",
		LogFormat: "console",
		Output:    "table",
	}, out)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	if _, err := a.Client.Login(context.Background(), apitest.Email, apitest.Password); err != nil {
		t.Fatal(err)
	}
	return srv, a, out
}

func TestDashboard(t *testing.T) {
	_, a, out := testApp(t)

	if err := runDashboard(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	for _, want := range []string{"₹10,90,000.00", "Laptop, ₹55,000.00 (CSE)", "CSE (2 resources)"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestDashboardFallsBack(t *testing.T) {
	srv, a, out := testApp(t)
	srv.FailNext("GET /api/dashboard/overview", http.StatusInternalServerError, "aggregation failed")

	if err := runDashboard(context.Background(), a); err != nil {
		t.Fatalf("fallback returned %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Could not load dashboard: aggregation failed") {
		t.Errorf("error not shown:\n%s", text)
	}
	if !strings.Contains(text, "N/A (0 resources)") || !strings.Contains(text, "₹0.00") {
		t.Errorf("fallback figures missing:\n%s", text)
	}
}

func TestAnalytics(t *testing.T) {
	tests := []struct {
		name  string
		run   func(context.Context, *app.App) error
		route string
		want  []string
	}{
		{
			name:  "departments",
			run:   runDepartments,
			route: "GET /api/dashboard/department-analytics",
			want:  []string{"CSE", "₹6,14,000.00", "ECE", "₹4,76,000.00"},
		},
		{
			name:  "costs",
			run:   runCosts,
			route: "GET /api/dashboard/cost-analysis",
			want:  []string{"Laptop", "₹8,62,000.00", "Oscilloscope", "₹1,64,000.00", "Projector", "₹64,000.00"},
		},
		{
			name:  "utilization",
			run:   runUtilization,
			route: "GET /api/dashboard/utilization-metrics",
			want:  []string{"Laptop", "16", "LabB", "Workshop", "ECE"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, a, out := testApp(t)
			if err := tt.run(context.Background(), a); err != nil {
				t.Fatal(err)
			}
			text := out.String()
			for _, want := range tt.want {
				if !strings.Contains(text, want) {
					t.Errorf("output missing %q:\n%s", want, text)
				}
			}

			srv.FailNext(tt.route, http.StatusInternalServerError, "aggregation failed")
			if err := tt.run(context.Background(), a); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCostsOrderedByValue(t *testing.T) {
	_, a, out := testApp(t)

	if err := runCosts(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	laptop, scope, projector := strings.Index(text, "Laptop"), strings.Index(text, "Oscilloscope"), strings.Index(text, "Projector")
	if !(laptop < scope && scope < projector) {
		t.Errorf("device types out of order:\n%s", text)
	}
}

func TestUtilizationJSON(t *testing.T) {
	_, a, out := testApp(t)
	a.Out = render.New(out, render.JSON)

	if err := runUtilization(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	var got model.UtilizationReport
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	locs := got.Metrics.Locations
	if len(locs) != 3 || locs[0].Location != "LabB" || locs[0].ResourceCount != 2 {
		t.Errorf("locations = %+v", locs)
	}
	if len(got.Metrics.Devices) != 3 || got.Metrics.Devices[0].TotalQuantity != 16 {
		t.Errorf("devices = %+v", got.Metrics.Devices)
	}
}
