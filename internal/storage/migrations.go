package storage

import (
	"fmt"
)

// migrate brings the schema up to date, one version at a time
func (ss *SQLiteStorage) migrate() error {
	steps := []func() error{
		ss.MigrateToV1,
		ss.MigrateToV2,
		ss.MigrateToV3,
	}
	for i, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("migrating to v%d: %w", i+1, err)
		}
	}
	return nil
}

// currentVersion returns 0 when schema_migrations does not exist yet
func (ss *SQLiteStorage) currentVersion() int {
	var version int
	err := ss.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0
	}
	return version
}

// MigrateToV1 creates the migrations table and the single-row session table
// holding the bearer token.
func (ss *SQLiteStorage) MigrateToV1() error {
	if ss.currentVersion() >= 1 {
		return nil // Already migrated
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS session (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			token TEXT NOT NULL,
			saved_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating session table: %w", err)
	}

	_, err = tx.Exec(`INSERT OR IGNORE INTO schema_migrations (version) VALUES (1)`)
	if err != nil {
		return fmt.Errorf("setting migration version: %w", err)
	}

	return tx.Commit()
}

// MigrateToV2 creates the runs table recording import and export pipelines
func (ss *SQLiteStorage) MigrateToV2() error {
	if ss.currentVersion() >= 2 {
		return nil // Already migrated
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			status TEXT NOT NULL,
			department TEXT,
			target TEXT,
			detail TEXT,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating runs table: %w", err)
	}

	_, err = tx.Exec(`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`)
	if err != nil {
		return fmt.Errorf("creating runs index: %w", err)
	}

	_, err = tx.Exec(`INSERT OR IGNORE INTO schema_migrations (version) VALUES (2)`)
	if err != nil {
		return fmt.Errorf("setting migration version: %w", err)
	}

	return tx.Commit()
}

// MigrateToV3 stores the signed-in user next to the token so the role is
// known without a round trip.
func (ss *SQLiteStorage) MigrateToV3() error {
	if ss.currentVersion() >= 3 {
		return nil // Already migrated
	}

	tx, err := ss.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var columnExists bool
	err = tx.QueryRow(`
		SELECT COUNT(*) > 0 FROM pragma_table_info('session')
		WHERE name='user_json'
	`).Scan(&columnExists)

	if err == nil && !columnExists {
		_, err = tx.Exec(`ALTER TABLE session ADD COLUMN user_json TEXT`)
		if err != nil {
			return fmt.Errorf("adding user_json column: %w", err)
		}
	}

	_, err = tx.Exec(`INSERT OR IGNORE INTO schema_migrations (version) VALUES (3)`)
	if err != nil {
		return fmt.Errorf("setting migration version: %w", err)
	}

	return tx.Commit()
}
