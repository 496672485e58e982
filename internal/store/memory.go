package store

import (
	"fmt"
	"sort"
	"sync"
)

// Memory keeps definitions and manifests in process memory using the same
// record encoding as DB. It backs cache-less runs and tests.
type Memory struct {
	mu          sync.RWMutex
	definitions map[string][]byte
	manifests   map[string][]byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		definitions: make(map[string][]byte),
		manifests:   make(map[string][]byte),
	}
}

// PutDefinition implements the definition cache.
func (m *Memory) PutDefinition(key string, data []byte) error {
	record, _, err := encodeRecord(data)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions[key] = record
	return nil
}

// GetDefinition implements the definition cache.
func (m *Memory) GetDefinition(key string) ([]byte, error) {
	m.mu.RLock()
	record, ok := m.definitions[key]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("definition %q: %w", key, ErrNotFound)
	}
	plain, _, err := decodeRecord(record)
	return plain, err
}

// PutManifest stores a manifest under id.
func (m *Memory) PutManifest(id string, data []byte) (Digest, error) {
	record, digest, err := encodeRecord(data)
	if err != nil {
		return Digest{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.manifests[id] = record
	return digest, nil
}

// GetManifest returns the manifest stored under id.
func (m *Memory) GetManifest(id string) ([]byte, Digest, error) {
	m.mu.RLock()
	record, ok := m.manifests[id]
	m.mu.RUnlock()
	if !ok {
		return nil, Digest{}, fmt.Errorf("manifest %q: %w", id, ErrNotFound)
	}
	return decodeRecord(record)
}

// ManifestIDs returns the stored manifest ids in ascending order.
func (m *Memory) ManifestIDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.manifests))
	for id := range m.manifests {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
