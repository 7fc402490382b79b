package department

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/campusctl/internal/apitest"
	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/config"
	"github.com/martinsuchenak/campusctl/internal/render"
)

func testApp(t *testing.T, output string) (*app.App, *bytes.Buffer) {
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
		Output:    output,
	}, out)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { a.Close() })
	if _, err := a.Client.Login(context.Background(), apitest.Email, apitest.Password); err != nil {
		t.Fatal(err)
	}
	return a, out
}

func TestListShowsStatsAndBadges(t *testing.T) {
	a, out := testApp(t, "table")

	if err := runList(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	for _, want := range []string{"CSE", "ECE", render.BadgeColor("CSE"), "₹6,14,000.00", "₹4,76,000.00"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}

func TestListJSON(t *testing.T) {
	a, out := testApp(t, "json")

	if err := runList(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	var got struct {
		Departments []struct {
			Name  string `json:"name"`
			Badge string `json:"badge"`
		} `json:"departments"`
	}
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if len(got.Departments) != 2 || got.Departments[1].Badge != render.BadgeColor("ECE") {
		t.Errorf("departments = %+v", got.Departments)
	}
}

func TestLocations(t *testing.T) {
	a, out := testApp(t, "table")

	if err := runLocations(context.Background(), a, "ECE"); err != nil {
		t.Fatal(err)
	}
	if out.String() != "LabB\nWorkshop\n" {
		t.Errorf("output = %q", out.String())
	}
	if err := runLocations(context.Background(), a, "MECH"); err == nil {
		t.Error("unknown department accepted")
	}
}

func TestRegistered(t *testing.T) {
	a, out := testApp(t, "table")

	if err := runRegistered(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	for _, want := range []string{"CSE", "ECE", "₹4,76,000.00", "LabB, Workshop"} {
		if !strings.Contains(text, want) {
			t.Errorf("output missing %q:\n%s", want, text)
		}
	}
}
