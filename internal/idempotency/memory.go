package idempotency

import (
	"context"
	"sync"
)

// memoryStore is a development-only in-memory store of seen progress event
// ids. WARNING: not suitable for production; seen ids are lost on restart
// and are not shared across activity instances, so redelivered events would
// double-apply.
type memoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func newMemoryStore() *memoryStore {
	return &memoryStore{seen: make(map[string]struct{})}
}

func (s *memoryStore) Check(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[eventID]; ok {
		return true, nil
	}
	s.seen[eventID] = struct{}{}
	return false, nil
}
