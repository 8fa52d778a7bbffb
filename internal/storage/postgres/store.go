// Package postgres is the alternative structured store for users pointing
// the planner at a shared PostgreSQL instance instead of the embedded
// database. Same contract as the sqlite store, $n placeholders and a
// dedicated schema.
package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	pq "github.com/lib/pq"

	"github.com/iankellyUW/relaxed-point-planner/internal/constants"
	"github.com/iankellyUW/relaxed-point-planner/internal/logger"
	"github.com/iankellyUW/relaxed-point-planner/internal/migration"
	"github.com/iankellyUW/relaxed-point-planner/internal/storage"
	"github.com/iankellyUW/relaxed-point-planner/migrations"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

type Store struct {
	connStr string
	db      *sql.DB
	queue   *storage.Queue
}

func New(connStr string) *Store {
	s := &Store{connStr: connStr}
	s.ensureSearchPath()
	return s
}

// ensureSearchPath scopes every session to the planner schema unless the
// caller already set one.
func (s *Store) ensureSearchPath() {
	if strings.HasPrefix(s.connStr, "postgres://") || strings.HasPrefix(s.connStr, "postgresql://") {
		u, err := url.Parse(s.connStr)
		if err != nil {
			logger.Warn("failed to parse connection string", "error", err)
			return
		}
		q := u.Query()
		if q.Get("search_path") == "" {
			q.Set("search_path", constants.AppName)
			u.RawQuery = q.Encode()
			s.connStr = u.String()
		}
		return
	}
	// DSN format, space-separated key=value pairs
	for _, part := range strings.Fields(s.connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "search_path") {
			return
		}
	}
	s.connStr = strings.TrimSpace(s.connStr) + " search_path=" + constants.AppName
}

// ValidateConnString checks that connStr is a parseable PostgreSQL
// connection string (URI or DSN) with no embedded password. Passwords
// belong in ~/.pgpass or the environment, not in config files.
func ValidateConnString(connStr string) (bool, error) {
	if strings.TrimSpace(connStr) == "" {
		return false, fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := u.User.Password(); isSet {
			return false, ErrEmbeddedCredentials
		}
	} else {
		for _, pair := range strings.Fields(connStr) {
			parts := strings.SplitN(pair, "=", 2)
			if len(parts) == 2 && strings.EqualFold(strings.TrimSpace(parts[0]), "password") {
				return false, ErrEmbeddedCredentials
			}
		}
	}
	return true, nil
}

func (s *Store) Init() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("%w: failed to open database: %v", storage.ErrInitialization, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		db.Close()
		return fmt.Errorf("%w: failed to create schema: %v", storage.ErrInitialization, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("%w: failed to connect to database: %v", storage.ErrInitialization, err)
	}
	s.db = db
	s.queue = storage.NewQueue()

	return s.queue.Do(func() error {
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
	return s.connStr
}

func (s *Store) runner(logFn migration.LogFunc) (*migration.Runner, error) {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to access postgres migrations: %w", err)
	}
	return migration.NewRunner(s.db, subFS, migration.Postgres, logFn), nil
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

func (s *Store) seedPoints() error {
	_, err := s.db.Exec(`
		INSERT INTO points_tracking (id, total_points, daily_points, last_activity_date, updated_at)
		VALUES (1, 0, 0, NULL, $1)
		ON CONFLICT (id) DO NOTHING`,
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
			"UPDATE points_tracking SET total_points = 0, daily_points = 0, last_activity_date = NULL, updated_at = $1 WHERE id = 1",
			time.Now().Format(time.RFC3339),
		); err != nil {
			return err
		}
		return tx.Commit()
	})
}
