package cache

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestMemoryStoreQueueExclusivity(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.TryAcquire(ctx, "user_1_idea_9", QueueEntry{Checksum: "abc"}, time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire should succeed: ok=%v err=%v", ok, err)
	}
	ok, _ = s.TryAcquire(ctx, "user_1_idea_9", QueueEntry{}, time.Minute)
	if ok {
		t.Fatalf("second acquire should fail while held")
	}
	inFlight, _ := s.InFlight(ctx, "user_1_idea_9")
	if !inFlight {
		t.Fatalf("expected key in flight")
	}
	if err := s.Release(ctx, "user_1_idea_9"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	ok, _ = s.TryAcquire(ctx, "user_1_idea_9", QueueEntry{}, time.Minute)
	if !ok {
		t.Fatalf("acquire after release should succeed")
	}
}

func TestMemoryStoreConcurrentAcquire(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.TryAcquire(ctx, "k", QueueEntry{}, time.Minute); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if wins != 1 {
		t.Fatalf("expected exactly one winner, got %d", wins)
	}
}

func TestMemoryStoreCacheTTL(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore().WithClock(clock.Now)

	if err := s.Put(ctx, "sum", []byte(`{"a":1}`), time.Hour); err != nil {
		t.Fatalf("Put: %v", err)
	}
	clock.Advance(59 * time.Minute)
	v, ok, _ := s.Get(ctx, "sum")
	if !ok || string(v) != `{"a":1}` {
		t.Fatalf("expected hit before expiry, got ok=%v v=%s", ok, v)
	}
	clock.Advance(time.Minute)
	if _, ok, _ := s.Get(ctx, "sum"); ok {
		t.Fatalf("entry should expire at exactly one hour")
	}
}

func TestMemoryStoreStaleLockAndSweep(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s := NewMemoryStore().WithClock(clock.Now)

	_, _ = s.TryAcquire(ctx, "stale", QueueEntry{}, 2*time.Minute)
	_ = s.Put(ctx, "old", []byte("x"), time.Minute)
	_ = s.Put(ctx, "fresh", []byte("y"), time.Hour)

	clock.Advance(3 * time.Minute)
	if removed := s.Sweep(); removed != 2 {
		t.Fatalf("expected 2 removed entries, got %d", removed)
	}
	if _, ok, _ := s.Get(ctx, "fresh"); !ok {
		t.Fatalf("fresh entry should survive the sweep")
	}
	if ok, _ := s.TryAcquire(ctx, "stale", QueueEntry{}, time.Minute); !ok {
		t.Fatalf("stale lock should be reacquirable")
	}
}
