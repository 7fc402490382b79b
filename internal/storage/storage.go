package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/martinsuchenak/campusctl/internal/log"
	"github.com/martinsuchenak/campusctl/internal/model"
	"github.com/martinsuchenak/campusctl/internal/session"

	_ "modernc.org/sqlite"
)

// DBFileName is the database file created inside the data directory
const DBFileName = "campusctl.db"

// ErrNoToken is returned by LoadToken when nobody is signed in
var ErrNoToken = session.ErrNoToken

// Run kinds
const (
	KindImport = "import"
	KindExport = "export"
)

// Run is one recorded import or export
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	Kind       string    `json:"kind" yaml:"kind"`
	Status     string    `json:"status" yaml:"status"`
	Department string    `json:"department,omitempty" yaml:"department,omitempty"`
	Target     string    `json:"target,omitempty" yaml:"target,omitempty"`
	Detail     string    `json:"detail,omitempty" yaml:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// SQLiteStorage persists the session token and the run history
type SQLiteStorage struct {
	db *sql.DB
}

// NewStorage opens (creating if needed) the database in dataDir and migrates it
func NewStorage(dataDir string) (*SQLiteStorage, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dsn := filepath.Join(dataDir, DBFileName) + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)

	ss := &SQLiteStorage{db: db}
	if err := ss.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return ss, nil
}

// Close releases the database handle
func (ss *SQLiteStorage) Close() error {
	return ss.db.Close()
}

// LoadToken returns the stored token and user. The user is nil when it was
// never saved.
func (ss *SQLiteStorage) LoadToken(ctx context.Context) (string, *model.User, error) {
	var token string
	var userJSON sql.NullString
	err := ss.db.QueryRowContext(ctx, `SELECT token, user_json FROM session WHERE id = 1`).Scan(&token, &userJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil, ErrNoToken
	}
	if err != nil {
		return "", nil, fmt.Errorf("loading token: %w", err)
	}

	var user *model.User
	if userJSON.Valid && userJSON.String != "" {
		user = &model.User{}
		if err := json.Unmarshal([]byte(userJSON.String), user); err != nil {
			log.Warn("Ignoring unreadable stored user", "error", err)
			return token, nil, nil
		}
	}
	return token, user, nil
}

// SaveToken replaces the stored token
func (ss *SQLiteStorage) SaveToken(ctx context.Context, token string, user *model.User) error {
	var userJSON sql.NullString
	if user != nil {
		data, err := json.Marshal(user)
		if err != nil {
			return fmt.Errorf("encoding user: %w", err)
		}
		userJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := ss.db.ExecContext(ctx, `
		INSERT INTO session (id, token, user_json, saved_at) VALUES (1, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET token = excluded.token, user_json = excluded.user_json, saved_at = excluded.saved_at
	`, token, userJSON)
	if err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

// ClearToken removes the stored token; clearing an empty store is not an error
func (ss *SQLiteStorage) ClearToken(ctx context.Context) error {
	if _, err := ss.db.ExecContext(ctx, `DELETE FROM session WHERE id = 1`); err != nil {
		return fmt.Errorf("clearing token: %w", err)
	}
	return nil
}

// RecordRun stores a run, assigning an ID and timestamp when missing
func (ss *SQLiteStorage) RecordRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generating UUIDv7 for run: %w", err)
		}
		run.ID = id.String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := ss.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, status, department, target, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Kind, run.Status, run.Department, run.Target, run.Detail, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs first
func (ss *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := ss.db.QueryContext(ctx, `
		SELECT id, kind, status, COALESCE(department, ''), COALESCE(target, ''), COALESCE(detail, ''), created_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Kind, &r.Status, &r.Department, &r.Target, &r.Detail, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
