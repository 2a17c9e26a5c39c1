package store

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/crosstab-org/crosstab/pivot"
)

// ============================================================================
// CONFIG STORE — Persistence Ports for Pivot Configuration
// ============================================================================
// Two independent lifetimes, two injected ports:
//
//   ConfigStore          — pivot field assignments, scoped to the working
//                          session (MemoryStore).
//   CalculatedFieldStore — calculated-field definitions, durable across
//                          sessions (SQLiteStore, memory fallback).
//
// Entries are plain JSON under string keys derived from the dataset's
// field-name set, wrapped in a versioned envelope. Concurrent writes to the
// same key resolve last-write-wins — losing a stored configuration only
// degrades to an empty pivot state.
// ============================================================================

// SchemaVersion tags every persisted payload so future shape changes can
// migrate or reject old records deterministically.
const SchemaVersion = 1

// ConfigStore persists pivot configurations for the current session.
type ConfigStore interface {
	SavePivotConfig(key string, cfg pivot.Config) error
	LoadPivotConfig(key string) (pivot.Config, bool, error)
	DeletePivotConfig(key string) error
}

// CalculatedFieldStore persists calculated-field definitions durably.
type CalculatedFieldStore interface {
	SaveCalculatedFields(key string, defs []pivot.CalculatedField) error
	LoadCalculatedFields(key string) ([]pivot.CalculatedField, bool, error)
}

// configEnvelope wraps a persisted configuration with its schema version.
type configEnvelope struct {
	Version int          `json:"version"`
	Config  pivot.Config `json:"config"`
}

// fieldsEnvelope wraps persisted calculated-field definitions.
type fieldsEnvelope struct {
	Version int                     `json:"version"`
	Fields  []pivot.CalculatedField `json:"fields"`
}

// maxKeyBody bounds the readable portion of a storage key.
const maxKeyBody = 120

// GenerateStorageKey derives a deterministic key from a dataset's column
// name set. Sorted and case-folded so column order never matters; truncated
// with a hash suffix so distinct shapes still get distinct keys.
func GenerateStorageKey(columnNames []string) string {
	names := make([]string, 0, len(columnNames))
	for _, n := range columnNames {
		n = strings.ToLower(strings.TrimSpace(n))
		if n != "" {
			names = append(names, n)
		}
	}
	sort.Strings(names)
	joined := strings.Join(names, "|")

	h := fnv.New32a()
	h.Write([]byte(joined))

	body := joined
	if len(body) > maxKeyBody {
		body = body[:maxKeyBody]
	}
	return fmt.Sprintf("pivot:%s:%08x", body, h.Sum32())
}

// IsConfigValidForFields reports whether a restored configuration is
// compatible with the current dataset: every concrete field it references
// must exist. Calculated-field references ("calc:") are always valid —
// their definitions live outside the dataset.
func IsConfigValidForFields(cfg pivot.Config, fieldNames []string) bool {
	known := make(map[string]bool, len(fieldNames))
	for _, f := range fieldNames {
		known[f] = true
	}
	for _, f := range cfg.ConcreteFields() {
		if !known[f] {
			return false
		}
	}
	return true
}
