// Package app wires configuration, storage, session and API client together
// for one command invocation.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/martinsuchenak/campusctl/internal/client"
	"github.com/martinsuchenak/campusctl/internal/config"
	"github.com/martinsuchenak/campusctl/internal/filters"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/render"
	"github.com/martinsuchenak/campusctl/internal/session"
	"github.com/martinsuchenak/campusctl/internal/storage"
)

// ErrAdminRequired is returned for admin-only flows when the signed-in user
// is known not to be an admin
var ErrAdminRequired = errors.New("this operation requires an admin account")

type App struct {
	Config  *config.Config
	Store   *storage.SQLiteStorage
	Session *session.Session
	Client  *client.Client
	Options *filters.Cache
	Out     *render.Printer
}

// Open builds an App from the parsed flags, writing output to stdout
func Open(ctx context.Context) (*App, error) {
	return OpenWith(ctx, config.Load(), os.Stdout)
}

// OpenWith builds an App from cfg, writing output to out
func OpenWith(ctx context.Context, cfg *config.Config, out io.Writer) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, err := render.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}
	log.Configure(cfg.LogLevel, cfg.LogFormat)

	store, err := storage.NewStorage(cfg.DataDir)
	if err != nil {
		log.Error("Failed to initialize storage", "error", err)
		return nil, err
	}
	log.Debug("Storage initialized", "backend", "SQLite", "path", cfg.DataDir)

	sess := session.New(store, func() {
		log.Warn("Session expired or was revoked; sign in again with 'campusctl auth login'")
	})
	if err := sess.Restore(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("restoring session: %w", err)
	}

	c := client.New(cfg.Server, sess, client.WithTimeout(cfg.Timeout))
	return &App{
		Config:  cfg,
		Store:   store,
		Session: sess,
		Client:  c,
		Options: filters.NewCache(c),
		Out:     render.New(out, format),
	}, nil
}

func (a *App) Close() error {
	return a.Store.Close()
}

// RequireAdmin refuses admin-only flows for users known not to be admins.
// When the role is unknown the backend decides.
func (a *App) RequireAdmin() error {
	u := a.Session.User()
	if u != nil && !u.IsAdmin() {
		return fmt.Errorf("%w (signed in as %s, role %s)", ErrAdminRequired, u.Email, u.Role)
	}
	return nil
}

// Record stores a run in the local history. Failures are only logged.
func (a *App) Record(ctx context.Context, run *storage.Run) {
	if err := a.Store.RecordRun(ctx, run); err != nil {
		log.Warn("Failed to record run history", "kind", run.Kind, "error", err)
	}
}
