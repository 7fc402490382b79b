package ai

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/campusctl/internal/apitest"
	"github.com/martinsuchenak/campusctl/internal/app"
	"github.com/martinsuchenak/campusctl/internal/assistant"
	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/config"
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

func TestStatus(t *testing.T) {
	srv, a, out := testApp(t)

	runStatus(context.Background(), a)
	if !strings.Contains(out.String(), "online") {
		t.Errorf("output = %q", out.String())
	}

	srv.SetAIOnline(false)
	out.Reset()
	runStatus(context.Background(), a)
	if !strings.Contains(out.String(), "offline") {
		t.Errorf("output = %q", out.String())
	}
}

func TestChatSingleQuery(t *testing.T) {
	_, a, out := testApp(t)

	if err := runChat(context.Background(), a, "how many laptops in CSE", nil); err != nil {
		t.Fatal(err)
	}
	text := out.String()
	if !strings.Contains(text, "Found 2 matching resources.") || !strings.Contains(text, "Projector x2 at LabB") {
		t.Errorf("output = %s", text)
	}
}

func TestChatInteractiveKeepsSession(t *testing.T) {
	srv, a, out := testApp(t)
	srv.FailNext("POST /api/ai/chat", http.StatusInternalServerError, "model overloaded")

	in := strings.NewReader("what is in ECE\n\nand CSE?\nexit\nignored\n")
	if err := runChat(context.Background(), a, "list CSE", in); err != nil {
		t.Fatal(err)
	}

	text := out.String()
	if !strings.Contains(text, "I encountered an error while processing your request: model overloaded") {
		t.Errorf("failure not shown:\n%s", text)
	}
	if srv.Count(http.MethodPost, "/api/ai/chat") != 3 {
		t.Errorf("chat requests = %d, want 3", srv.Count(http.MethodPost, "/api/ai/chat"))
	}
}

func TestChatOffline(t *testing.T) {
	srv, a, _ := testApp(t)
	srv.SetAIOnline(false)

	if err := runChat(context.Background(), a, "anything", nil); !errors.Is(err, ErrOffline) {
		t.Errorf("err = %v, want ErrOffline", err)
	}
	if srv.Count(http.MethodPost, "/api/ai/chat") != 0 {
		t.Error("query sent while offline")
	}
}

func TestSignedOutIsNotOffline(t *testing.T) {
	_, a, _ := testApp(t)
	ctx := context.Background()
	if err := a.Session.Clear(ctx); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		run  func() error
	}{
		{"status", func() error { return runStatus(ctx, a) }},
		{"chat", func() error { return runChat(ctx, a, "anything", nil) }},
		{"crud", func() error { return runCRUD(ctx, a, "add a lathe", "CSE") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, client.ErrNotAuthenticated) {
				t.Errorf("err = %v, want ErrNotAuthenticated", err)
			}
			if errors.Is(err, ErrOffline) {
				t.Error("signed-out user reported as offline")
			}
		})
	}
}

func TestChatRequiresQuery(t *testing.T) {
	_, a, _ := testApp(t)
	if err := runChat(context.Background(), a, "  ", nil); !errors.Is(err, assistant.ErrEmptyQuery) {
		t.Errorf("err = %v, want ErrEmptyQuery", err)
	}
}

func TestCRUD(t *testing.T) {
	tests := []struct {
		name        string
		instruction string
		department  string
		want        string
		wantErr     bool
	}{
		{"applied", "add 3 projectors to LabA", "CSE", "[CREATE] Applied", false},
		{"unknown department", "add a lathe", "MECH", "Operation failed: Department not found: MECH", true},
		{"blank department", "add a lathe", " ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, a, out := testApp(t)
			err := runCRUD(context.Background(), a, tt.instruction, tt.department)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output = %q, want %q", out.String(), tt.want)
			}
		})
	}
}
