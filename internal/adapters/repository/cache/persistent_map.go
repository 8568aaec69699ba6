package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
)

// KeyCodec converts map keys to and from their document form
type KeyCodec[K comparable] struct {
	Encode func(K) string
	Decode func(string) (K, error)
}

// StringKeys is the identity codec
var StringKeys = KeyCodec[string]{
	Encode: func(s string) string { return s },
	Decode: func(s string) (string, error) { return s, nil },
}

// PersistentMap is a key/value map backed by a single JSON document. The document
// is read once when the map is created; every Set and Delete writes through to
// disk. A map created without a path lives in memory only.
type PersistentMap[K comparable, V any] struct {
	path   string
	codec  KeyCodec[K]
	log    *slog.Logger
	memory map[K]V
}

// NewPersistentMap loads path (if it exists) into a new map
func NewPersistentMap[K comparable, V any](path string, codec KeyCodec[K], log *slog.Logger) (*PersistentMap[K, V], error) {
	m := &PersistentMap[K, V]{
		path:   path,
		codec:  codec,
		log:    log,
		memory: make(map[K]V),
	}
	if err := m.load(); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMemoryMap creates a map that never touches disk
func NewMemoryMap[K comparable, V any](codec KeyCodec[K], log *slog.Logger) *PersistentMap[K, V] {
	return &PersistentMap[K, V]{
		codec:  codec,
		log:    log,
		memory: make(map[K]V),
	}
}

// Path returns the backing document, empty for memory-only maps
func (m *PersistentMap[K, V]) Path() string {
	return m.path
}

// IsPersistent reports whether writes reach disk
func (m *PersistentMap[K, V]) IsPersistent() bool {
	return m.path != ""
}

func (m *PersistentMap[K, V]) Get(key K) (V, bool) {
	v, ok := m.memory[key]
	return v, ok
}

func (m *PersistentMap[K, V]) Has(key K) bool {
	_, ok := m.memory[key]
	return ok
}

func (m *PersistentMap[K, V]) Len() int {
	return len(m.memory)
}

// Set stores value in memory and writes it through to the document
func (m *PersistentMap[K, V]) Set(key K, value V) error {
	if m.IsPersistent() {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", m.codec.Encode(key), err)
		}
		err = m.update(func(doc map[string]json.RawMessage) {
			doc[m.codec.Encode(key)] = raw
		})
		if err != nil {
			return err
		}
	}
	m.memory[key] = value
	return nil
}

// Delete removes key from memory and from the document. Missing keys are not an error.
func (m *PersistentMap[K, V]) Delete(key K) error {
	if m.IsPersistent() {
		err := m.update(func(doc map[string]json.RawMessage) {
			delete(doc, m.codec.Encode(key))
		})
		if err != nil {
			return err
		}
	}
	delete(m.memory, key)
	return nil
}

// Keys returns a snapshot of the keys ordered by their document form
func (m *PersistentMap[K, V]) Keys() iter.Seq[K] {
	keys := slices.Collect(maps.Keys(m.memory))
	slices.SortFunc(keys, func(a, b K) int {
		ea, eb := m.codec.Encode(a), m.codec.Encode(b)
		switch {
		case ea < eb:
			return -1
		case ea > eb:
			return 1
		}
		return 0
	})
	return slices.Values(keys)
}

// ClearMemory drops the in-memory overlay and leaves the document untouched
func (m *PersistentMap[K, V]) ClearMemory() {
	clear(m.memory)
}

// Clear drops the overlay and removes the document
func (m *PersistentMap[K, V]) Clear() error {
	m.ClearMemory()
	if !m.IsPersistent() {
		return nil
	}
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", m.path, err)
	}
	return nil
}

func (m *PersistentMap[K, V]) load() error {
	if !m.IsPersistent() {
		return nil
	}
	doc, err := m.readDocument()
	if err != nil {
		return err
	}
	for rawKey, rawValue := range doc {
		key, err := m.codec.Decode(rawKey)
		if err != nil {
			m.log.Warn("skipping cache entry with invalid key", "file", m.path, "key", rawKey, "error", err)
			continue
		}
		var value V
		if err := json.Unmarshal(rawValue, &value); err != nil {
			m.log.Warn("skipping corrupt cache entry", "file", m.path, "key", rawKey, "error", err)
			continue
		}
		m.memory[key] = value
	}
	return nil
}

// update applies fn to the current on-disk document and saves the result
func (m *PersistentMap[K, V]) update(fn func(doc map[string]json.RawMessage)) error {
	doc, err := m.readDocument()
	if err != nil {
		return err
	}
	fn(doc)
	return m.writeDocument(doc)
}

func (m *PersistentMap[K, V]) readDocument() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(m.path)
	if errors.Is(err, os.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", m.path, err)
	}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		m.log.Warn("ignoring unreadable cache document", "file", m.path, "error", err)
		return make(map[string]json.RawMessage), nil
	}
	return doc, nil
}

func (m *PersistentMap[K, V]) writeDocument(doc map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", m.path, err)
	}

	// Write to temp file first
	tmpPath := m.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmpPath, err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, m.path); err != nil {
		return fmt.Errorf("failed to save %s: %w", m.path, err)
	}
	return nil
}
