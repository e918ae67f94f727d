// Package memory provides an in-process CacheStore backend.
// Records are kept JSON-encoded so callers never share memory with the store
// and the round-trip behaves exactly like the durable backends.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"place-digest/internal/repository"
)

type Store[V any] struct {
	mu      sync.RWMutex
	records map[string][]byte
}

// NewStore creates an empty store.
func NewStore[V any]() *Store[V] {
	return &Store[V]{records: make(map[string][]byte)}
}

var _ repository.CacheStore[int] = (*Store[int])(nil)

func (s *Store[V]) Read(_ context.Context, key string) (*V, error) {
	s.mu.RLock()
	data, ok := s.records[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("Read: decode %q: %w", key, err)
	}
	return &v, nil
}

func (s *Store[V]) Write(_ context.Context, key string, record V) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("Write: encode %q: %w", key, err)
	}

	s.mu.Lock()
	s.records[key] = data
	s.mu.Unlock()
	return nil
}

func (s *Store[V]) WriteBatch(_ context.Context, records map[string]V) error {
	encoded, err := encodeAll(records)
	if err != nil {
		return fmt.Errorf("WriteBatch: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, data := range encoded {
		s.records[key] = data
	}
	return nil
}

func (s *Store[V]) ReplaceAll(_ context.Context, records map[string]V) error {
	encoded, err := encodeAll(records)
	if err != nil {
		return fmt.Errorf("ReplaceAll: %w", err)
	}

	s.mu.Lock()
	s.records = encoded
	s.mu.Unlock()
	return nil
}

func encodeAll[V any](records map[string]V) (map[string][]byte, error) {
	encoded := make(map[string][]byte, len(records))
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
