package store

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/crosstab-org/crosstab/pivot"
)

// ============================================================================
// MEMORY STORE — Session-Scoped Persistence
// ============================================================================
// Backs both ports. Values are stored as serialized JSON, not live structs,
// so loads always round-trip through the same envelope as durable backends.
// ============================================================================

// MemoryStore is an in-memory key-value store. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]byte)}
}

// SavePivotConfig stores a pivot configuration under the given key.
func (s *MemoryStore) SavePivotConfig(key string, cfg pivot.Config) error {
	return s.put(key, configEnvelope{Version: SchemaVersion, Config: cfg})
}

// LoadPivotConfig retrieves a pivot configuration. found is false when the
// key is absent or the stored payload has an unknown schema version.
func (s *MemoryStore) LoadPivotConfig(key string) (pivot.Config, bool, error) {
	var env configEnvelope
	found, err := s.get(key, &env)
	if err != nil || !found || env.Version != SchemaVersion {
		return pivot.Config{}, false, err
	}
	return env.Config, true, nil
}

// DeletePivotConfig removes a stored configuration.
func (s *MemoryStore) DeletePivotConfig(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// SaveCalculatedFields stores calculated-field definitions under the key.
func (s *MemoryStore) SaveCalculatedFields(key string, defs []pivot.CalculatedField) error {
	return s.put("calc:"+key, fieldsEnvelope{Version: SchemaVersion, Fields: defs})
}

// LoadCalculatedFields retrieves calculated-field definitions.
func (s *MemoryStore) LoadCalculatedFields(key string) ([]pivot.CalculatedField, bool, error) {
	var env fieldsEnvelope
	found, err := s.get("calc:"+key, &env)
	if err != nil || !found || env.Version != SchemaVersion {
		return nil, false, err
	}
	return env.Fields, true, nil
}

func (s *MemoryStore) put(key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = b
	return nil
}

func (s *MemoryStore) get(key string, out any) (bool, error) {
	s.mu.RLock()
	b, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return false, fmt.Errorf("parse payload: %w", err)
	}
	return true, nil
}
