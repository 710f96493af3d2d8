// Package memory provides an in-memory implementation of the hermeticity
// ledger store.
//
// This implementation is suitable for development, testing, and single-node
// deployments where persistence across restarts is not required.
package memory

import (
	"context"
	"sync"

	"github.com/gigainfosystems/buffi/registry/store"
)

// Store is an in-memory implementation of the store.Store interface.
// It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	runs map[string]*store.Run
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]*store.Run)}
}

// SaveRun stores or replaces the run recorded under run.InputDigest.
func (s *Store) SaveRun(ctx context.Context, run *store.Run) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *run
	cp.Files = append([]store.FileDigest(nil), run.Files...)
	s.runs[run.InputDigest] = &cp
	return nil
}

// GetRun retrieves the run recorded for digest.
func (s *Store) GetRun(ctx context.Context, digest string) (*store.Run, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[digest]
	if !ok {
		return nil, store.ErrNotFound
	}
	return run, nil
}

// DeleteRun removes the run recorded for digest.
func (s *Store) DeleteRun(ctx context.Context, digest string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[digest]; !ok {
		return store.ErrNotFound
	}
	delete(s.runs, digest)
	return nil
}

// ListRuns returns every recorded run.
func (s *Store) ListRuns(ctx context.Context) ([]*store.Run, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*store.Run, 0, len(s.runs))
	for _, run := range s.runs {
		out = append(out, run)
	}
	return out, nil
}
