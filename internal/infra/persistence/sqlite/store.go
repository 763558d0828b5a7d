// Package sqlite persists registry snapshots to a single SQLite table as
// JSON blobs, one bucket per row.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"seedcore/pkg/genome"
	"seedcore/pkg/registry"
)

// Store writes the full snapshot after every save and hydrates it at open.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// NewStore opens (or creates) the database file and ensures the state table.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "seedcore.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

var sqliteBuckets = []string{"seeds", "reserved", "flags", "succession"}

// Load hydrates the latest snapshot, or returns a zero value when the table
// is empty.
func (s *Store) Load(ctx context.Context) (registry.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx, `SELECT bucket, payload FROM state`)
	if err != nil {
		return registry.Snapshot{}, fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap registry.Snapshot
	found := false
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return registry.Snapshot{}, fmt.Errorf("scan state: %w", err)
		}
		if len(payload) == 0 {
			continue
		}
		found = true
		if err := decodeBucket(&snap, bucket, payload); err != nil {
			return registry.Snapshot{}, err
		}
	}
	if err := rows.Err(); err != nil {
		return registry.Snapshot{}, fmt.Errorf("iterate state: %w", err)
	}
	if !found {
		return registry.Snapshot{}, nil
	}
	return snap, nil
}

// Save replaces the stored snapshot inside one transaction.
func (s *Store) Save(ctx context.Context, snap registry.Snapshot) (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		data, err := encodeBucket(snap, bucket)
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

func encodeBucket(snap registry.Snapshot, bucket string) ([]byte, error) {
	var v any
	switch bucket {
	case "seeds":
		v = snap.Seeds
	case "reserved":
		v = snap.Reserved
	case "flags":
		v = snap.Flags
	case "succession":
		v = snap.Succession
	default:
		return nil, fmt.Errorf("unknown bucket %s", bucket)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", bucket, err)
	}
	return data, nil
}

func decodeBucket(snap *registry.Snapshot, bucket string, payload []byte) error {
	var target any
	switch bucket {
	case "seeds":
		if snap.Seeds == nil {
			snap.Seeds = make(map[uint64]registry.Seed)
		}
		target = &snap.Seeds
	case "reserved":
		if snap.Reserved == nil {
			snap.Reserved = []genome.Fingerprint{}
		}
		target = &snap.Reserved
	case "flags":
		target = &snap.Flags
	case "succession":
		target = &snap.Succession
	default:
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
