// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package docstore

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore keeps collections in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]Document)}
}

func (s *MemoryStore) Query(ctx context.Context, collection, orderBy string, dir Direction) ([]Record, error) {
	if err := validateField(orderBy); err != nil {
		return nil, err
	}

	s.mu.RLock()
	records := make([]Record, 0, len(s.collections[collection]))
	for id, doc := range s.collections[collection] {
		records = append(records, Record{ID: id, Data: clone(doc)})
	}
	s.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		c := compareValues(records[i].Data[orderBy], records[j].Data[orderBy])
		if c == 0 {
			c = compareValues(records[i].ID, records[j].ID)
		}
		if dir == Desc {
			return c > 0
		}
		return c < 0
	})
	return records, nil
}

func (s *MemoryStore) Get(ctx context.Context, collection, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return Record{ID: id, Data: clone(doc)}, nil
}

func (s *MemoryStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]Document)
	}
	s.collections[collection][id] = clone(data)
	return id, nil
}

func (s *MemoryStore) Update(ctx context.Context, collection, id string, patch Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	for k, v := range clone(patch) {
		doc[k] = v
	}
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.collections[collection], id)
	return nil
}

func (s *MemoryStore) Increment(ctx context.Context, collection, id, fieldPath string, delta int64) error {
	path, err := splitPath(fieldPath)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return ErrNotFound
	}
	addAt(doc, path, delta)
	return nil
}
