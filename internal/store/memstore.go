package store

import (
	"context"
	"sync"
	"time"

	"github.com/vaak-ai/voxengine/internal/voxerr"
)

var _ Store = (*MemStore)(nil)

// MemStore is the non-distributed implementation: a mutex-guarded map,
// nothing survives a process restart. ListActiveSessions always returns
// empty: there is nothing to recover after restart.
type MemStore struct {
	mu    sync.RWMutex
	store map[string]Metadata
}

// NewMemStore constructs an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{store: make(map[string]Metadata)}
}

func (s *MemStore) StoreMetadata(_ context.Context, meta Metadata) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[meta.SessionID] = meta
	return nil
}

func (s *MemStore) GetMetadata(_ context.Context, sessionID string) (Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	meta, ok := s.store[sessionID]
	if !ok {
		return Metadata{}, voxerr.New(voxerr.NotFound, "store.GetMetadata", nil)
	}
	return meta, nil
}

func (s *MemStore) DeleteMetadata(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.store, sessionID)
	return nil
}

func (s *MemStore) ListIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.store))
	for id := range s.store {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *MemStore) Touch(_ context.Context, sessionID string, updatedAt, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta, ok := s.store[sessionID]
	if !ok {
		return voxerr.New(voxerr.NotFound, "store.Touch", nil)
	}
	meta.UpdatedAt = updatedAt
	meta.ExpiresAt = expiresAt
	s.store[sessionID] = meta
	return nil
}

func (s *MemStore) ListActiveSessions(_ context.Context, _ int) ([]Metadata, error) {
	return nil, nil
}

func (s *MemStore) IsDistributed() bool { return false }
