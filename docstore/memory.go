package docstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process [Store] for tests, examples, and single-node
// deployments. It performs no TTL reaping of its own: expired documents stay
// until the adapter's read-time expiry check deletes them, which also makes
// it a convenient store for exercising that path.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Record
}

// NewMemoryStore creates an empty [MemoryStore].
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Record)}
}

// Get fetches the document stored under key.
func (s *MemoryStore) Get(_ context.Context, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.docs[key]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec, nil
}

// Set replaces the document stored under key with rec.
func (s *MemoryStore) Set(_ context.Context, key string, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.docs[key] = rec
	return nil
}

// Delete removes the document stored under key, if present.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.docs, key)
	return nil
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.docs)
}
