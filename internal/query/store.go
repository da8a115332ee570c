package query

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Entry is one cached query result.
type Entry struct {
	Data      json.RawMessage `json:"data"`
	FetchedAt time.Time       `json:"fetchedAt"`
	Stale     bool            `json:"stale,omitempty"`
}

// Fresh reports whether the entry can be served without refetching.
func (e Entry) Fresh(now time.Time, staleTime time.Duration) bool {
	if e.Stale {
		return false
	}
	if staleTime == Infinite {
		return true
	}
	return now.Sub(e.FetchedAt) < staleTime
}

// Store holds entries partitioned by scope (one scope per session).
type Store interface {
	Get(ctx context.Context, scope string, key Key) (Entry, bool, error)
	Set(ctx context.Context, scope string, key Key, e Entry) error
	// Invalidate marks every entry under prefix stale and returns how many
	// entries were affected.
	Invalidate(ctx context.Context, scope string, prefix Key) (int, error)
	// Clear drops every entry of the scope.
	Clear(ctx context.Context, scope string) error
}

// MemoryStore keeps entries in process. Invalidation keeps the data and only
// flips the stale flag.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string]Entry)}
}

func (s *MemoryStore) Get(_ context.Context, scope string, key Key) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[scope][key.String()]
	return e, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, scope string, key Key, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.entries[scope]
	if !ok {
		m = make(map[string]Entry)
		s.entries[scope] = m
	}
	m[key.String()] = e
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context, scope string, prefix Key) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k, e := range s.entries[scope] {
		if !ParseKey(k).HasPrefix(prefix) {
			continue
		}
		e.Stale = true
		s.entries[scope][k] = e
		n++
	}
	return n, nil
}

func (s *MemoryStore) Clear(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, scope)
	return nil
}
