package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	ss, err := NewStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	t.Cleanup(func() { ss.Close() })
	return ss
}

func TestMigrationsAreIdempotent(t *testing.T) {
	ss := newTestStorage(t)

	if err := ss.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
	if got := ss.currentVersion(); got != 3 {
		t.Errorf("currentVersion() = %d, want 3", got)
	}
}

func TestTokenLifecycle(t *testing.T) {
	ss := newTestStorage(t)
	ctx := context.Background()

	if _, _, err := ss.LoadToken(ctx); !errors.Is(err, ErrNoToken) {
		t.Fatalf("LoadToken() on empty store error = %v, want ErrNoToken", err)
	}

	user := &model.User{ID: "u1", Name: "Asha", Role: "admin"}
	if err := ss.SaveToken(ctx, "tok-1", user); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	if err := ss.SaveToken(ctx, "tok-2", nil); err != nil {
		t.Fatalf("SaveToken() overwrite error = %v", err)
	}

	token, got, err := ss.LoadToken(ctx)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if token != "tok-2" {
		t.Errorf("token = %q, want tok-2", token)
	}
	if got != nil {
		t.Errorf("user = %+v, want nil after overwrite without user", got)
	}

	if err := ss.ClearToken(ctx); err != nil {
		t.Fatalf("ClearToken() error = %v", err)
	}
	if err := ss.ClearToken(ctx); err != nil {
		t.Fatalf("ClearToken() twice error = %v", err)
	}
	if _, _, err := ss.LoadToken(ctx); !errors.Is(err, ErrNoToken) {
		t.Errorf("LoadToken() after clear error = %v, want ErrNoToken", err)
	}
}

func TestTokenKeepsUser(t *testing.T) {
	ss := newTestStorage(t)
	ctx := context.Background()

	if err := ss.SaveToken(ctx, "tok", &model.User{ID: "u1", Role: "viewer"}); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	_, user, err := ss.LoadToken(ctx)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if user == nil || user.ID != "u1" || user.Role != "viewer" {
		t.Errorf("user = %+v, want u1/viewer", user)
	}
}

func TestUnreadableUserIsLogged(t *testing.T) {
	ss := newTestStorage(t)
	ctx := context.Background()

	var logs bytes.Buffer
	log.SetOutput(&logs)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	if err := ss.SaveToken(ctx, "tok", &model.User{ID: "u1"}); err != nil {
		t.Fatalf("SaveToken() error = %v", err)
	}
	if _, err := ss.db.ExecContext(ctx, `UPDATE session SET user_json = '{not json' WHERE id = 1`); err != nil {
		t.Fatal(err)
	}

	token, user, err := ss.LoadToken(ctx)
	if err != nil {
		t.Fatalf("LoadToken() error = %v", err)
	}
	if token != "tok" || user != nil {
		t.Errorf("LoadToken() = %q, %+v, want tok and no user", token, user)
	}
	if !strings.Contains(logs.String(), "Ignoring unreadable stored user") {
		t.Errorf("no warning logged: %q", logs.String())
	}
}

func TestRunsNewestFirst(t *testing.T) {
	ss := newTestStorage(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	runs := []*Run{
		{Kind: KindImport, Status: "committed", Department: "CSE", CreatedAt: base},
		{Kind: KindExport, Status: "saved", Target: "campus_assets.csv", CreatedAt: base.Add(time.Minute)},
		{Kind: KindImport, Status: "failed", Detail: "bad header", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, r := range runs {
		if err := ss.RecordRun(ctx, r); err != nil {
			t.Fatalf("RecordRun() error = %v", err)
		}
		if r.ID == "" {
			t.Fatal("RecordRun() did not assign an ID")
		}
	}

	got, err := ss.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len(ListRuns) = %d, want 2", len(got))
	}
	if got[0].Status != "failed" || got[1].Kind != KindExport {
		t.Errorf("ListRuns order = %+v", got)
	}
	if got[0].Detail != "bad header" {
		t.Errorf("Detail = %q, want bad header", got[0].Detail)
	}
}
