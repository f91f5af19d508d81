package recordstore

import (
	"context"
	"sync"
)

// MemoryStore is a process-local Store used by tests and by the CLI when no
// remote store is configured. ScanAll returns records in insertion order.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Record
	keyOrder    map[string][]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		collections: make(map[string]map[string]Record),
		keyOrder:    make(map[string][]string),
	}
}

func (s *MemoryStore) Get(_ context.Context, collection, key string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.collections[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	return record.Clone(), nil
}

func (s *MemoryStore) ScanAll(_ context.Context, collection string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]Record, 0, len(s.collections[collection]))
	for _, key := range s.keyOrder[collection] {
		if record, ok := s.collections[collection][key]; ok {
			records = append(records, record.Clone())
		}
	}
	return records, nil
}

func (s *MemoryStore) Put(_ context.Context, collection, key string, record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Record)
	}
	if _, exists := s.collections[collection][key]; !exists {
		s.keyOrder[collection] = append(s.keyOrder[collection], key)
	}
	s.collections[collection][key] = record.Clone()
	return nil
}

func (s *MemoryStore) UpdateFields(_ context.Context, collection, key string, fields Record) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.collections[collection][key]
	if !ok {
		return nil, ErrNotFound
	}
	for field, value := range fields {
		record[field] = value
	}
	return fields.Clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, collection, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][key]; !ok {
		return nil
	}
	delete(s.collections[collection], key)
	for i, k := range s.keyOrder[collection] {
		if k == key {
			s.keyOrder[collection] = append(s.keyOrder[collection][:i], s.keyOrder[collection][i+1:]...)
			break
		}
	}
	return nil
}
