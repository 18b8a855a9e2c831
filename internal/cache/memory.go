package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore keeps entries in-process with per-entry TTLs. Expired
// entries are dropped lazily on read and during prefix scans.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
}

// NewMemoryStore constructs an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	entry, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.items, key)
		s.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) SetEx(_ context.Context, key, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.items[key] = memoryEntry{value: value, expiresAt: expiresAt}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Del(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	_, ok := s.items[key]
	delete(s.items, key)
	s.mu.Unlock()
	return ok, nil
}

func (s *MemoryStore) InvalidatePrefix(_ context.Context, prefix string) (int, error) {
	now := time.Now()
	affected := 0
	s.mu.Lock()
	for key, entry := range s.items {
		expired := !entry.expiresAt.IsZero() && now.After(entry.expiresAt)
		if expired || strings.HasPrefix(key, prefix) {
			delete(s.items, key)
			if !expired {
				affected++
			}
		}
	}
	s.mu.Unlock()
	return affected, nil
}
