package auth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/campusctl/internal/apitest"
	"github.com/martinsuchenak/campusctl/internal/app"
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
	return srv, a, out
}

func TestLoginThenWhoami(t *testing.T) {
	_, a, out := testApp(t)
	ctx := context.Background()

	if err := runLogin(ctx, a, apitest.Email, apitest.Password); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Asha Admin") || !strings.Contains(out.String(), "admin") {
		t.Errorf("login output = %s", out.String())
	}
	if a.Session.Token() != apitest.Token {
		t.Errorf("token = %q", a.Session.Token())
	}

	out.Reset()
	if err := runWhoami(ctx, a); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), apitest.Email) || !strings.Contains(out.String(), a.Client.BaseURL()) {
		t.Errorf("whoami output = %s", out.String())
	}
}

func TestLoginRejected(t *testing.T) {
	_, a, _ := testApp(t)

	err := runLogin(context.Background(), a, apitest.Email, "wrong")
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Invalid email or password" {
		t.Fatalf("err = %v", err)
	}
	if a.Session.Authenticated() {
		t.Error("session authenticated after a rejected login")
	}
}

func TestWhoamiAfterRevocation(t *testing.T) {
	srv, a, _ := testApp(t)
	ctx := context.Background()
	runLogin(ctx, a, apitest.Email, apitest.Password)
	srv.SetToken("rotated")

	if err := runWhoami(ctx, a); err == nil {
		t.Fatal("revoked token verified")
	}
	if a.Session.Authenticated() {
		t.Error("revoked token kept")
	}
	if err := runWhoami(ctx, a); !errors.Is(err, client.ErrNotAuthenticated) {
		t.Errorf("second whoami err = %v, want ErrNotAuthenticated", err)
	}
}
