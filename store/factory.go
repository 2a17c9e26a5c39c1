package store

import (
	"log"
	"os"
	"path/filepath"
	"strings"
)

// ============================================================================
// STORE FACTORY
// ============================================================================

// NewSessionStore returns the session-lifetime configuration store, for
// embedding hosts that keep a live pivot UI around. A one-shot CLI run has
// no session to scope it to.
func NewSessionStore() ConfigStore {
	return NewMemoryStore()
}

// NewCalculatedFieldStore returns the durable calculated-field store backed
// by SQLite at dbPath. An empty path, or a SQLite failure, falls back to an
// in-memory store — persistence degrades, the application keeps working.
// The second return reports whether the store is actually durable.
func NewCalculatedFieldStore(dbPath string) (CalculatedFieldStore, bool) {
	if dbPath == "" {
		return NewMemoryStore(), false
	}

	s, err := NewSQLiteStore(expandTilde(dbPath))
	if err != nil {
		log.Printf("WARNING: SQLite storage unavailable (%v), falling back to in-memory store", err)
		return NewMemoryStore(), false
	}
	return s, true
}

func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
