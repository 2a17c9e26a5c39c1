package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/crosstab-org/crosstab/pivot"
)

// ============================================================================
// SQLITE STORE — Durable Persistence
// ============================================================================
// A single key-value table holding JSON envelopes, plus a schema_version
// table so future migrations can run deterministically. UPSERT semantics
// give last-write-wins under concurrent writers.
// ============================================================================

// SQLiteStore persists entries in a SQLite database.
// Implements both ConfigStore and CalculatedFieldStore.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and if needed creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SavePivotConfig stores a pivot configuration under the given key.
func (s *SQLiteStore) SavePivotConfig(key string, cfg pivot.Config) error {
	return s.put("config", key, configEnvelope{Version: SchemaVersion, Config: cfg})
}

// LoadPivotConfig retrieves a pivot configuration.
func (s *SQLiteStore) LoadPivotConfig(key string) (pivot.Config, bool, error) {
	var env configEnvelope
	found, err := s.get("config", key, &env)
	if err != nil || !found || env.Version != SchemaVersion {
		return pivot.Config{}, false, err
	}
	return env.Config, true, nil
}

// DeletePivotConfig removes a stored configuration.
func (s *SQLiteStore) DeletePivotConfig(key string) error {
	_, err := s.db.Exec("DELETE FROM entries WHERE kind = 'config' AND key = ?", key)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	return nil
}

// SaveCalculatedFields stores calculated-field definitions under the key.
func (s *SQLiteStore) SaveCalculatedFields(key string, defs []pivot.CalculatedField) error {
	return s.put("calcfields", key, fieldsEnvelope{Version: SchemaVersion, Fields: defs})
}

// LoadCalculatedFields retrieves calculated-field definitions.
func (s *SQLiteStore) LoadCalculatedFields(key string) ([]pivot.CalculatedField, bool, error) {
	var env fieldsEnvelope
	found, err := s.get("calcfields", key, &env)
	if err != nil || !found || env.Version != SchemaVersion {
		return nil, false, err
	}
	return env.Fields, true, nil
}

func (s *SQLiteStore) put(kind, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO entries (kind, key, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, kind, key, string(b), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) get(kind, key string, out any) (bool, error) {
	var payload string
	err := s.db.QueryRow("SELECT payload FROM entries WHERE kind = ? AND key = ?", kind, key).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading entry: %w", err)
	}
	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return false, fmt.Errorf("parse payload: %w", err)
	}
	return true, nil
}

// ============================================================================
// SCHEMA
// ============================================================================

func openDB(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating parent directories: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	if err := migrateSchema(db, dbPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func migrateSchema(db *sql.DB, dbPath string) error {
	var tableName string
	err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableName)

	var current int
	if err == sql.ErrNoRows {
		current = 0
	} else if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	} else {
		err = db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&current)
		if err == sql.ErrNoRows {
			current = 0
		} else if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	if current > SchemaVersion {
		return fmt.Errorf(
			"database schema version %d is newer than this build supports (max: %d); delete %s to start fresh",
			current, SchemaVersion, dbPath,
		)
	}

	if current < SchemaVersion {
		if err := migrateV0ToV1(db); err != nil {
			return fmt.Errorf("migration v0→v1: %w", err)
		}
	}
	return nil
}

func migrateV0ToV1(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (1)"); err != nil {
		return fmt.Errorf("inserting schema version: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS entries (
			kind       TEXT NOT NULL,
			key        TEXT NOT NULL,
			payload    TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (kind, key)
		)
	`); err != nil {
		return fmt.Errorf("creating entries table: %w", err)
	}

	return tx.Commit()
}
