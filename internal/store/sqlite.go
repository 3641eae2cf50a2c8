// ABOUTME: SQLite implementation of the Store interface using modernc.org/sqlite
// ABOUTME: Provides gateway persistence with automatic schema creation

package store

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"database/sql"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store at the given path.
// The schema is automatically created if it doesn't exist.
// Parent directories are created if needed.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable WAL mode for better concurrent performance
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// createSchema creates the database tables if they don't exist
func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS profiles (
			id               TEXT PRIMARY KEY,
			project_id       TEXT NOT NULL UNIQUE,
			enable_tools     INTEGER NOT NULL DEFAULT 1,
			enable_prompts   INTEGER NOT NULL DEFAULT 1,
			enable_resources INTEGER NOT NULL DEFAULT 1,
			created_at       TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_profiles_project ON profiles(project_id);

		CREATE TABLE IF NOT EXISTS connections (
			id          TEXT PRIMARY KEY,
			profile_id  TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
			name        TEXT NOT NULL,
			transport   TEXT NOT NULL,
			status      TEXT NOT NULL DEFAULT 'ACTIVE',
			enc_command TEXT,
			enc_args    TEXT,
			enc_env     TEXT,
			enc_url     TEXT,
			provenance  TEXT NOT NULL DEFAULT 'custom',
			external_id TEXT,
			description TEXT NOT NULL DEFAULT '',
			created_at  TEXT NOT NULL,

			CHECK (transport IN ('stdio', 'streamable_http', 'sse')),
			CHECK (status IN ('ACTIVE', 'INACTIVE')),
			CHECK (provenance IN ('custom', 'registry', 'community'))
		);

		CREATE INDEX IF NOT EXISTS idx_connections_profile ON connections(profile_id);
		CREATE INDEX IF NOT EXISTS idx_connections_status ON connections(profile_id, status);

		CREATE TABLE IF NOT EXISTS capabilities (
			id            TEXT PRIMARY KEY,
			connection_id TEXT NOT NULL REFERENCES connections(id) ON DELETE CASCADE,
			kind          TEXT NOT NULL,
			name          TEXT NOT NULL,
			description   TEXT NOT NULL DEFAULT '',
			schema_json   TEXT,
			enabled       INTEGER NOT NULL DEFAULT 1,
			created_at    TEXT NOT NULL,

			UNIQUE (connection_id, kind, name),
			CHECK (kind IN ('tool', 'prompt', 'resource', 'resource_template'))
		);

		CREATE INDEX IF NOT EXISTS idx_capabilities_connection ON capabilities(connection_id);
		CREATE INDEX IF NOT EXISTS idx_capabilities_lookup ON capabilities(kind, name);

		CREATE TABLE IF NOT EXISTS api_keys (
			id         TEXT PRIMARY KEY,
			project_id TEXT NOT NULL,
			name       TEXT NOT NULL,
			prefix     TEXT NOT NULL UNIQUE,
			salt       TEXT NOT NULL,
			hash       TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_api_keys_project ON api_keys(project_id);
		CREATE INDEX IF NOT EXISTS idx_api_keys_prefix ON api_keys(prefix);

		CREATE TABLE IF NOT EXISTS install_records (
			connection_id TEXT PRIMARY KEY REFERENCES connections(id) ON DELETE CASCADE,
			command       TEXT NOT NULL,
			args_json     TEXT NOT NULL DEFAULT '[]',
			install_dir   TEXT NOT NULL,
			installed_at  TEXT NOT NULL
		);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// isConstraintViolation checks if the error is a SQLite constraint violation
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// nullString returns nil for empty strings, otherwise the string itself
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ptrToNull converts a *string to a sql-ready value.
func ptrToNull(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// boolToInt converts a bool to the 0/1 integer SQLite stores.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure SQLiteStore implements the aggregate Store interface
var _ Store = (*SQLiteStore)(nil)
