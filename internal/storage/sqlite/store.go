// Package sqlite is the embedded structured store. One connection, every
// operation serialized through the shared queue, schema managed by versioned
// migrations.
package sqlite

import (
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/iankellyUW/relaxed-point-planner/internal/logger"
	"github.com/iankellyUW/relaxed-point-planner/internal/migration"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage"
	"github.com/iankellyUW/relaxed-point-planner/migrations"
)

// expectedActivityColumns is the column count of preset_activities in the
// current schema. Databases from before schema versioning are detected by a
// mismatch here and their preset tables rebuilt.
const expectedActivityColumns = 10

type Store struct {
	path  string
	db    *sql.DB
	queue *storage.Queue
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Init opens or creates the database file, repairs pre-versioning preset
// tables, applies migrations, and seeds the points singleton. Failure to
// open the connection is an initialization error; the caller is expected to
// run the session on the key-value fallback.
func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("%w: failed to create config directory: %v", storage.ErrInitialization, err)
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=foreign_keys(1)")
	if err != nil {
		return fmt.Errorf("%w: failed to open database: %v", storage.ErrInitialization, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("%w: failed to connect to database: %v", storage.ErrInitialization, err)
	}
	s.db = db
	s.queue = storage.NewQueue()

	return s.queue.Do(func() error {
		if err := s.repairLegacySchema(); err != nil {
			return fmt.Errorf("failed to repair legacy schema: %w", err)
		}
		if err := s.runMigrations(); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		if err := s.seedPoints(); err != nil {
			return fmt.Errorf("failed to seed points tracking: %w", err)
		}
		return nil
	})
}

func (s *Store) Close() error {
	if s.queue != nil {
		s.queue.Close()
	}
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// tableExists checks if a table exists, case-insensitively to match
// SQLite's behavior.
func (s *Store) tableExists(tableName string) (bool, error) {
	var count int
	row := s.db.QueryRow("SELECT count(*) FROM sqlite_master WHERE type='table' AND name COLLATE NOCASE = ?", tableName)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// repairLegacySchema handles databases created before schema versioning.
// Those have preset tables but no schema_version table; if the activity
// table's column count does not match the current schema, the preset tables
// are dropped so the initial migration can recreate them. Runs at most once
// per database: after the first migration the version table exists.
func (s *Store) repairLegacySchema() error {
	versioned, err := s.tableExists("schema_version")
	if err != nil {
		return err
	}
	if versioned {
		return nil
	}

	exists, err := s.tableExists("preset_activities")
	if err != nil || !exists {
		return err
	}

	rows, err := s.db.Query("PRAGMA table_info(preset_activities)")
	if err != nil {
		return err
	}
	defer rows.Close()
	columns := 0
	for rows.Next() {
		columns++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if columns == expectedActivityColumns {
		return nil
	}

	logger.Warn("rebuilding preset tables from legacy schema", "columns", columns)
	for _, stmt := range []string{
		"DROP TABLE IF EXISTS preset_activities",
		"DROP TABLE IF EXISTS presets",
	} {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) runner(logFn migration.LogFunc) (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		return nil, fmt.Errorf("failed to access sqlite migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.SQLite, logFn), nil
}

func (s *Store) runMigrations() error {
	runner, err := s.runner(logger.Debug)
	if err != nil {
		return err
	}
	_, err = runner.Apply()
	return err
}

// SchemaVersion reports the applied and latest bundled schema versions.
func (s *Store) SchemaVersion() (current, latest int, err error) {
	err = s.queue.Do(func() error {
		runner, err := s.runner(nil)
		if err != nil {
			return err
		}
		if current, err = runner.CurrentVersion(); err != nil {
			return err
		}
		latest, err = runner.LatestVersion()
		return err
	})
	return current, latest, err
}

// ApplyMigrations runs pending migrations and returns how many were applied.
func (s *Store) ApplyMigrations(logFn func(msg string, keyvals ...interface{})) (int, error) {
	var applied int
	err := s.queue.Do(func() error {
		runner, err := s.runner(logFn)
		if err != nil {
			return err
		}
		applied, err = runner.Apply()
		return err
	})
	return applied, err
}

// seedPoints inserts the points singleton row if absent.
func (s *Store) seedPoints() error {
	_, err := s.db.Exec(`
		INSERT INTO points_tracking (id, total_points, daily_points, last_activity_date, updated_at)
		VALUES (1, 0, 0, NULL, ?)
		ON CONFLICT(id) DO NOTHING`,
		time.Now().Format(time.RFC3339))
	return err
}

// ClearAll empties every table while keeping the schema and its version.
func (s *Store) ClearAll() error {
	return s.queue.Do(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		for _, stmt := range []string{
			"DELETE FROM preset_activities",
			"DELETE FROM presets",
			"DELETE FROM completed_tasks",
		} {
			if _, err := tx.Exec(stmt); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(
			"UPDATE points_tracking SET total_points = 0, daily_points = 0, last_activity_date = NULL, updated_at = ? WHERE id = 1",
			time.Now().Format(time.RFC3339),
		); err != nil {
			return err
		}
		return tx.Commit()
	})
}
