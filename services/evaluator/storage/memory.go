// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package storage

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/Rich-Data-F/superlinked/services/evaluator/vector"
)

// MemoryStore is an in-memory vector store. It counts reads so tests can
// assert that a code path performed no storage access.
//
// Thread Safety: safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	vectors map[string]vector.Vector
	loads   atomic.Int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{vectors: make(map[string]vector.Vector)}
}

// Load implements Manager.
func (s *MemoryStore) Load(ctx context.Context, key Key) (vector.Vector, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.loads.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()
	vec, ok := s.vectors[key.String()]
	if !ok {
		return nil, false, nil
	}
	return vec.Clone(), true, nil
}

// Store implements Writer.
func (s *MemoryStore) Store(ctx context.Context, key Key, vec vector.Vector) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors[key.String()] = vec.Clone()
	return nil
}

// LoadCount returns how many Load calls the store has served.
func (s *MemoryStore) LoadCount() int64 {
	return s.loads.Load()
}

// Len returns the number of stored vectors.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}
