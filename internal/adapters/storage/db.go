package storage

import (
	"database/sql"
	"fmt"
)

// Supported SQL dialects.
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

// DriverName maps a dialect to its database/sql driver name.
func DriverName(dialect string) (string, error) {
	switch dialect {
	case DialectSQLite:
		return "sqlite", nil
	case DialectPostgres:
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported database dialect %q", dialect)
	}
}

// migration is one forward-only schema step. Statements are portable between SQLite
// and Postgres: text keys, RFC3339 text timestamps, YYYY-MM-DD text dates, decimal
// text amounts and 0/1 integer flags.
type migration struct {
	version    int
	statements []string
}

var migrations = []migration{
	{version: 1, statements: []string{
		`CREATE TABLE IF NOT EXISTS facility (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			logo_url TEXT NOT NULL DEFAULT '',
			timezone TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS facility_subscription (
			id TEXT PRIMARY KEY,
			facility_id TEXT NOT NULL REFERENCES facility(id),
			plan_name TEXT NOT NULL,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS plan (
			id TEXT PRIMARY KEY,
			facility_id TEXT NOT NULL REFERENCES facility(id),
			name TEXT NOT NULL,
			duration_days INTEGER NOT NULL,
			price TEXT NOT NULL DEFAULT '0'
		)`,
		`CREATE TABLE IF NOT EXISTS member (
			id TEXT PRIMARY KEY,
			facility_id TEXT NOT NULL REFERENCES facility(id),
			name TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			photo_url TEXT NOT NULL DEFAULT '',
			balance TEXT NOT NULL DEFAULT '0',
			date_of_birth TEXT NOT NULL DEFAULT '',
			joined_date TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS membership (
			id TEXT PRIMARY KEY,
			member_id TEXT NOT NULL REFERENCES member(id),
			plan_id TEXT,
			start_date TEXT NOT NULL,
			end_date TEXT NOT NULL,
			status TEXT NOT NULL,
			is_disabled INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS payment_transaction (
			id TEXT PRIMARY KEY,
			facility_id TEXT NOT NULL REFERENCES facility(id),
			member_id TEXT NOT NULL REFERENCES member(id),
			membership_id TEXT,
			type TEXT NOT NULL,
			amount TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
	}},
	{version: 2, statements: []string{
		"CREATE INDEX IF NOT EXISTS idx_facility_owner ON facility(owner_id)",
		"CREATE INDEX IF NOT EXISTS idx_subscription_facility ON facility_subscription(facility_id, start_date)",
		"CREATE INDEX IF NOT EXISTS idx_plan_facility ON plan(facility_id)",
		"CREATE INDEX IF NOT EXISTS idx_member_facility ON member(facility_id)",
		"CREATE INDEX IF NOT EXISTS idx_membership_member ON membership(member_id, start_date)",
		"CREATE INDEX IF NOT EXISTS idx_transaction_facility_created ON payment_transaction(facility_id, created_at)",
	}},
}

// LatestSchemaVersion returns the version MigrateDB migrates to.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// InitDB prepares the connection and brings the schema to the latest version.
// PRE: db is a valid database connection opened with the driver for dialect
// POST: SQLite runs in WAL mode with foreign keys on; schema is at LatestSchemaVersion
func InitDB(db *sql.DB, dialect string) error {
	if dialect == DialectSQLite {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			return fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return MigrateDB(db, dialect)
}

// MigrateDB applies every migration newer than the recorded schema version.
// Each migration runs in its own transaction together with its version bump.
// PRE: db is a valid database connection
// POST: schema_version holds LatestSchemaVersion
func MigrateDB(db *sql.DB, dialect string) error {
	if _, err := db.Exec("CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)"); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}
	current, err := SchemaVersion(db, dialect)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, dialect, m); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
	}
	return nil
}

func applyMigration(db *sql.DB, dialect string, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range m.statements {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	if _, err := tx.Exec(Rebind(dialect, "INSERT INTO schema_version (version) VALUES (?)"), m.version); err != nil {
		return err
	}
	return tx.Commit()
}

// SchemaVersion returns the recorded schema version, or 0 for an untracked database.
func SchemaVersion(db *sql.DB, dialect string) (int, error) {
	var exists int
	q := "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'schema_version'"
	if dialect == DialectPostgres {
		q = "SELECT COUNT(*) FROM information_schema.tables WHERE table_name = 'schema_version'"
	}
	if err := db.QueryRow(q).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to inspect schema_version: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}

	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema_version: %w", err)
	}
	return version, nil
}
