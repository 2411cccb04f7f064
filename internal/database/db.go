// Package database provides database connection and initialization functionality.
package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGO SQLite driver ("sqlite3")
	_ "modernc.org/sqlite"          // Pure Go SQLite driver ("sqlite")
)

//go:embed schemas/*.sql
var schemaFS embed.FS

// Driver names accepted by Config.Driver
const (
	DriverModernc = "sqlite"
	DriverCGO     = "sqlite3"
)

// DatabaseProfile defines different configuration profiles for databases
type DatabaseProfile string

const (
	// ProfileCache - Maximum speed for ephemeral data
	ProfileCache DatabaseProfile = "cache"
	// ProfileStandard - Balanced configuration
	ProfileStandard DatabaseProfile = "standard"
)

// DB wraps the database connection
type DB struct {
	conn    *sql.DB
	path    string
	driver  string
	profile DatabaseProfile
	name    string // Database name for logging
}

// Config holds database configuration
type Config struct {
	Path    string
	Driver  string // DriverModernc (default) or DriverCGO
	Profile DatabaseProfile
	Name    string // Friendly name for logging and schema lookup (e.g. "cache")
}

// New opens a database and verifies the connection
func New(cfg Config) (*DB, error) {
	// file: URIs (in-memory databases) are used as-is
	if !strings.HasPrefix(cfg.Path, "file:") {
		absPath, err := filepath.Abs(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve database path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		cfg.Path = absPath
	}

	if cfg.Profile == "" {
		cfg.Profile = ProfileStandard
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}

	var connStr string
	switch cfg.Driver {
	case DriverModernc:
		connStr = buildModerncConnectionString(cfg.Path, cfg.Profile)
	case DriverCGO:
		connStr = buildCGOConnectionString(cfg.Path, cfg.Profile)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	conn, err := sql.Open(cfg.Driver, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", cfg.Name, err)
	}

	configureConnectionPool(conn, cfg.Path, cfg.Profile)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database %s: %w", cfg.Name, err)
	}

	return &DB{
		conn:    conn,
		path:    cfg.Path,
		driver:  cfg.Driver,
		profile: cfg.Profile,
		name:    cfg.Name,
	}, nil
}

func separator(path string) string {
	if strings.Contains(path, "?") {
		return "&"
	}
	return "?"
}

// buildModerncConnectionString creates a modernc connection string with profile-specific PRAGMAs
func buildModerncConnectionString(path string, profile DatabaseProfile) string {
	connStr := path + separator(path) + "_pragma=journal_mode(WAL)"

	switch profile {
	case ProfileCache:
		connStr += "&_pragma=synchronous(OFF)"   // No fsync (it's cache!)
		connStr += "&_pragma=temp_store(MEMORY)" // Temp tables in RAM
	default:
		connStr += "&_pragma=synchronous(NORMAL)"
	}

	connStr += "&_pragma=busy_timeout(5000)"
	connStr += "&_pragma=wal_autocheckpoint(1000)"
	return connStr
}

// buildCGOConnectionString creates a mattn/go-sqlite3 DSN with the same settings
func buildCGOConnectionString(path string, profile DatabaseProfile) string {
	connStr := path + separator(path) + "_journal_mode=WAL&_busy_timeout=5000"

	switch profile {
	case ProfileCache:
		connStr += "&_synchronous=OFF"
	default:
		connStr += "&_synchronous=NORMAL"
	}
	return connStr
}

// configureConnectionPool sets up the connection pool.
// In-memory databases are private to a connection, so they get exactly one.
func configureConnectionPool(conn *sql.DB, path string, profile DatabaseProfile) {
	if strings.Contains(path, ":memory:") {
		conn.SetMaxOpenConns(1)
		conn.SetMaxIdleConns(1)
		conn.SetConnMaxLifetime(0)
		return
	}

	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(24 * time.Hour)
	conn.SetConnMaxIdleTime(30 * time.Minute)

	if profile == ProfileCache {
		conn.SetMaxOpenConns(10)
		conn.SetMaxIdleConns(2)
	}
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying sql.DB connection
// Used by repositories to execute queries
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Name returns the database name for logging
func (db *DB) Name() string {
	return db.name
}

// Driver returns the SQL driver name in use
func (db *DB) Driver() string {
	return db.driver
}

// Profile returns the database profile
func (db *DB) Profile() DatabaseProfile {
	return db.profile
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Migrate applies the embedded schema matching the database name.
// Unknown names are left untouched. Schemas are idempotent.
func (db *DB) Migrate() error {
	content, err := schemaFS.ReadFile("schemas/" + db.name + "_schema.sql")
	if err != nil {
		return nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction for schema %s: %w", db.name, err)
	}
	if _, err := tx.Exec(string(content)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to execute schema for %s: %w", db.name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema for %s: %w", db.name, err)
	}
	return nil
}

// QuickCheck performs a quick health check (just ping, no integrity check)
func (db *DB) QuickCheck(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// WALStatus reports the current WAL size in frames and how many were checkpointed
func (db *DB) WALStatus() (frames, checkpointed int, err error) {
	var busy int
	err = db.conn.QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
	if err != nil {
		return 0, 0, fmt.Errorf("WAL status query failed for %s: %w", db.name, err)
	}
	return frames, checkpointed, nil
}

// WALCheckpoint forces a WAL checkpoint to prevent bloat
func (db *DB) WALCheckpoint(mode string) error {
	// Modes: PASSIVE, FULL, RESTART, TRUNCATE
	if mode == "" {
		mode = "TRUNCATE"
	}

	query := fmt.Sprintf("PRAGMA wal_checkpoint(%s)", mode)
	if _, err := db.conn.Exec(query); err != nil {
		return fmt.Errorf("WAL checkpoint failed for %s: %w", db.name, err)
	}
	return nil
}
