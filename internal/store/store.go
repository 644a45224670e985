package store

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS genomes (
	subject_id   TEXT PRIMARY KEY,
	doc          TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS contents (
	content_id   TEXT PRIMARY KEY,
	subject_id   TEXT NOT NULL,
	status       TEXT NOT NULL,
	doc          TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_contents_subject ON contents(subject_id, status);

CREATE TABLE IF NOT EXISTS units (
	unit_id      TEXT PRIMARY KEY,
	subject_id   TEXT NOT NULL,
	status       TEXT NOT NULL,
	enabled      INTEGER NOT NULL,
	auto_post    INTEGER NOT NULL,
	next_post_at TEXT NOT NULL,
	doc          TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_units_due ON units(status, next_post_at);

CREATE TABLE IF NOT EXISTS approvals (
	content_id   TEXT PRIMARY KEY,
	status       TEXT NOT NULL,
	updated_at   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decision_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	kind         TEXT NOT NULL,
	subject_id   TEXT NOT NULL,
	target_id    TEXT,
	action       TEXT NOT NULL,
	allowed      INTEGER NOT NULL,
	code         TEXT,
	reason       TEXT,
	detail_json  TEXT,
	created_at   TEXT NOT NULL
);
`
// #endregion schema

// #region store-struct
// Store backs every repository with one SQLite database. Entities are
// kept as JSON documents with the queryable fields lifted into columns,
// so the core stays storage-agnostic behind the narrow repo interfaces.
type Store struct {
	db *sql.DB
}
// #endregion store-struct

// #region constructor
// Open opens a SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}
// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
// #endregion close

// #region db-accessor
// DB returns the underlying *sql.DB for use by other packages (e.g. logging).
func (s *Store) DB() *sql.DB {
	return s.db
}
// #endregion db-accessor
