// Package memory provides an ephemeral snapshot store for tests and
// deployments that opt out of durability.
package memory

import (
	"context"
	"sync"

	"seedcore/pkg/registry"
)

// Store keeps the latest snapshot in process memory.
type Store struct {
	mu   sync.Mutex
	snap registry.Snapshot
	set  bool
}

// NewStore constructs an empty in-memory snapshot store.
func NewStore() *Store {
	return &Store{}
}

// Load returns the last saved snapshot, or a zero value when none was saved.
func (s *Store) Load(_ context.Context) (registry.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.set {
		return registry.Snapshot{}, nil
	}
	return s.snap.Clone(), nil
}

// Save replaces the stored snapshot.
func (s *Store) Save(_ context.Context, snap registry.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap.Clone()
	s.set = true
	return nil
}

// Close is a no-op.
func (s *Store) Close() error { return nil }
