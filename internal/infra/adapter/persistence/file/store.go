// Package file provides a CacheStore backend that keeps each namespace in one
// JSON document on disk. Every write rewrites the document through a temporary
// file and a rename, so a crash never leaves a half-written cache behind.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"place-digest/internal/repository"
)

// Store is a file-backed CacheStore for one namespace.
type Store[V any] struct {
	mu      sync.RWMutex
	path    string
	records map[string]json.RawMessage
}

var _ repository.CacheStore[int] = (*Store[int])(nil)

// NewStore opens (or prepares) the document for namespace under dir.
// A missing directory is created; a missing document means an empty store.
func NewStore[V any](dir string, namespace repository.Namespace) (*Store[V], error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	s := &Store[V]{
		path:    filepath.Join(dir, string(namespace)+".json"),
		records: make(map[string]json.RawMessage),
	}

	// #nosec G304 -- path is built from the configured cache dir and a fixed namespace
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache file: %w", err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.records); err != nil {
			return nil, fmt.Errorf("parse cache file %s: %w", s.path, err)
		}
	}
	return s, nil
}

// Path returns the location of the namespace document.
func (s *Store[V]) Path() string { return s.path }

func (s *Store[V]) Read(_ context.Context, key string) (*V, error) {
	s.mu.RLock()
	raw, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("Read: decode %q: %w", key, err)
	}
	return &v, nil
}

func (s *Store[V]) Write(ctx context.Context, key string, record V) error {
	return s.WriteBatch(ctx, map[string]V{key: record})
}

func (s *Store[V]) WriteBatch(_ context.Context, records map[string]V) error {
	encoded, err := encodeAll(records)
	if err != nil {
		return fmt.Errorf("WriteBatch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]json.RawMessage, len(s.records)+len(encoded))
	for key, raw := range s.records {
		next[key] = raw
	}
	for key, raw := range encoded {
		next[key] = raw
	}

	if err := s.persist(next); err != nil {
		return fmt.Errorf("WriteBatch: %w", err)
	}
	s.records = next
	return nil
}

// ReplaceAll rewrites the document with exactly records.
func (s *Store[V]) ReplaceAll(_ context.Context, records map[string]V) error {
	encoded, err := encodeAll(records)
	if err != nil {
		return fmt.Errorf("ReplaceAll: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.persist(encoded); err != nil {
		return fmt.Errorf("ReplaceAll: %w", err)
	}
	s.records = encoded
	return nil
}

func encodeAll[V any](records map[string]V) (map[string]json.RawMessage, error) {
	encoded := make(map[string]json.RawMessage, len(records))
	for key, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", key, err)
		}
		encoded[key] = data
	}
	return encoded, nil
}

func (s *Store[V]) ReadAll(_ context.Context) ([]V, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.records))
	for key := range s.records {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]V, 0, len(keys))
	for _, key := range keys {
		var v V
		if err := json.Unmarshal(s.records[key], &v); err != nil {
			return nil, fmt.Errorf("ReadAll: decode %q: %w", key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// persist writes records to a temp file in the same directory and renames it over the document.
func (s *Store[V]) persist(records map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}
