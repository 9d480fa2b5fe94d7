package cache

import (
	"context"
	"sync"
	"time"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

type memoryLock struct {
	entry     QueueEntry
	expiresAt time.Time
}

// MemoryStore is the process-local Store. The queue guarantee holds within
// one process only.
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	locks map[string]memoryLock
	items map[string]memoryItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:   time.Now,
		locks: map[string]memoryLock{},
		items: map[string]memoryItem{},
	}
}

// WithClock replaces the time source. Intended for tests.
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.mu.Lock()
	s.now = now
	s.mu.Unlock()
	return s
}

func (s *MemoryStore) InFlight(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[key]
	if !ok {
		return false, nil
	}
	if !l.expiresAt.IsZero() && !s.now().Before(l.expiresAt) {
		delete(s.locks, key)
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) TryAcquire(ctx context.Context, key string, entry QueueEntry, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if l, ok := s.locks[key]; ok {
		if l.expiresAt.IsZero() || now.Before(l.expiresAt) {
			return false, nil
		}
	}
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	if entry.StartTime.IsZero() {
		entry.StartTime = now
	}
	s.locks[key] = memoryLock{entry: entry, expiresAt: exp}
	return true, nil
}

func (s *MemoryStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.locks, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, ok := s.items[key]
	if !ok {
		return nil, false, nil
	}
	if !it.expiresAt.IsZero() && !s.now().Before(it.expiresAt) {
		delete(s.items, key)
		return nil, false, nil
	}
	out := make([]byte, len(it.value))
	copy(out, it.value)
	return out, true, nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	s.mu.Lock()
	defer s.mu.Unlock()
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}
	s.items[key] = memoryItem{value: buf, expiresAt: exp}
	return nil
}

// Sweep drops expired cache entries and stale locks. It returns how many
// entries were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for k, it := range s.items {
		if !it.expiresAt.IsZero() && !now.Before(it.expiresAt) {
			delete(s.items, k)
			removed++
		}
	}
	for k, l := range s.locks {
		if !l.expiresAt.IsZero() && !now.Before(l.expiresAt) {
			delete(s.locks, k)
			removed++
		}
	}
	return removed
}
