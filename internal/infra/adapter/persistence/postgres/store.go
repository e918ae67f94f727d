// Package postgres provides a CacheStore backend on PostgreSQL.
// All namespaces share the cache_records table created by db.MigrateUp;
// payloads are stored as JSONB.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"

	"place-digest/internal/observability/metrics"
	"place-digest/internal/repository"
)

const upsertQuery = `
INSERT INTO cache_records (namespace, key, payload, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (namespace, key) DO UPDATE SET
    payload    = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at`

const deleteNamespaceQuery = `DELETE FROM cache_records WHERE namespace = $1`

type Store[V any] struct {
	db        *sqlx.DB
	namespace repository.Namespace
	now       func() time.Time
}

var _ repository.CacheStore[int] = (*Store[int])(nil)

// NewStore binds a store to namespace on db.
func NewStore[V any](db *sqlx.DB, namespace repository.Namespace) *Store[V] {
	return &Store[V]{db: db, namespace: namespace, now: time.Now}
}

type cacheRow struct {
	Key     string `db:"key"`
	Payload []byte `db:"payload"`
}

func (s *Store[V]) Read(ctx context.Context, key string) (*V, error) {
	const query = `
SELECT payload
FROM cache_records
WHERE namespace = $1 AND key = $2
LIMIT 1`
	start := time.Now()
	var payload []byte
	err := s.db.GetContext(ctx, &payload, query, string(s.namespace), key)
	metrics.RecordDBQuery("cache_read", time.Since(start))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Read: %w", err)
	}

	var v V
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("Read: decode %q: %w", key, err)
	}
	return &v, nil
}

func (s *Store[V]) Write(ctx context.Context, key string, record V) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("Write: encode %q: %w", key, err)
	}

	start := time.Now()
	_, err = s.db.ExecContext(ctx, upsertQuery, string(s.namespace), key, payload, s.now())
	metrics.RecordDBQuery("cache_write", time.Since(start))
	if err != nil {
		return fmt.Errorf("Write: ExecContext: %w", err)
	}
	return nil
}

// WriteBatch upserts every record in one transaction, in key order.
func (s *Store[V]) WriteBatch(ctx context.Context, records map[string]V) error {
	if err := s.upsertAll(ctx, records, false); err != nil {
		return fmt.Errorf("WriteBatch: %w", err)
	}
	return nil
}

// ReplaceAll deletes the namespace and inserts records in the same transaction.
func (s *Store[V]) ReplaceAll(ctx context.Context, records map[string]V) error {
	if err := s.upsertAll(ctx, records, true); err != nil {
		return fmt.Errorf("ReplaceAll: %w", err)
	}
	return nil
}

func (s *Store[V]) upsertAll(ctx context.Context, records map[string]V, replace bool) (err error) {
	keys := make([]string, 0, len(records))
	payloads := make(map[string][]byte, len(records))
	for key, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode %q: %w", key, err)
		}
		keys = append(keys, key)
		payloads[key] = data
	}
	sort.Strings(keys)

	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("cache_write_batch", time.Since(start))
		stats := s.db.Stats()
		metrics.UpdateDBConnectionStats(stats.InUse, stats.Idle)
	}()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("BeginTxx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if replace {
		if _, err = tx.ExecContext(ctx, deleteNamespaceQuery, string(s.namespace)); err != nil {
			return fmt.Errorf("delete namespace: %w", err)
		}
	}

	now := s.now()
	for _, key := range keys {
		if _, err = tx.ExecContext(ctx, upsertQuery, string(s.namespace), key, payloads[key], now); err != nil {
			return fmt.Errorf("ExecContext %q: %w", key, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("Commit: %w", err)
	}
	return nil
}

func (s *Store[V]) ReadAll(ctx context.Context) ([]V, error) {
	const query = `
SELECT key, payload
FROM cache_records
WHERE namespace = $1
ORDER BY key ASC`
	start := time.Now()
	var rows []cacheRow
	err := s.db.SelectContext(ctx, &rows, query, string(s.namespace))
	metrics.RecordDBQuery("cache_read_all", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("ReadAll: %w", err)
	}

	out := make([]V, 0, len(rows))
	for _, r := range rows {
		var v V
		if err := json.Unmarshal(r.Payload, &v); err != nil {
			return nil, fmt.Errorf("ReadAll: decode %q: %w", r.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}
