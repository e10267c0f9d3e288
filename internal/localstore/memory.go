package localstore

import "sync"

// MemoryStore is an in-memory implementation of the local store.
// Used in tests and as the degraded fallback when file storage is
// unavailable.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// Ensure MemoryStore implements the interface
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a new in-memory local store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
	}
}

func (s *MemoryStore) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	if !ok {
		return "", ErrKeyNotFound
	}
	return value, nil
}

func (s *MemoryStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *MemoryStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}
