package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTTLCacheGetOrLoad(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[[]float32](30*time.Minute, 0)
	c.SetClock(clock.Now)

	var calls int32
	load := func(context.Context) ([]float32, error) {
		atomic.AddInt32(&calls, 1)
		return []float32{0.1, 0.2}, nil
	}

	for i := 0; i < 3; i++ {
		v, err := c.GetOrLoad(context.Background(), "query", load)
		if err != nil || len(v) != 2 {
			t.Fatalf("GetOrLoad: v=%v err=%v", v, err)
		}
	}
	if calls != 1 {
		t.Fatalf("expected one load, got %d", calls)
	}

	clock.Advance(31 * time.Minute)
	if _, err := c.GetOrLoad(context.Background(), "query", load); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after ttl, got %d loads", calls)
	}
}

func TestTTLCacheDoesNotCacheErrors(t *testing.T) {
	c := NewTTLCache[string](time.Minute, 0)
	boom := errors.New("boom")
	if _, err := c.GetOrLoad(context.Background(), "k", func(context.Context) (string, error) { return "", boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Len() != 0 {
		t.Fatalf("errors must not be cached")
	}
}

func TestTTLCacheSharesConcurrentLoads(t *testing.T) {
	c := NewTTLCache[int](time.Minute, 0)
	var calls int32
	release := make(chan struct{})
	load := func(context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 7, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.GetOrLoad(context.Background(), "k", load)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	if calls != 1 {
		t.Fatalf("expected a single shared load, got %d", calls)
	}
}

func TestTTLCacheMaxEntries(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	c := NewTTLCache[int](time.Minute, 2)
	c.SetClock(clock.Now)
	c.Set("a", 1)
	clock.Advance(time.Second)
	c.Set("b", 2)
	clock.Advance(time.Second)
	c.Set("c", 3)
	if c.Len() != 2 {
		t.Fatalf("expected cap of 2, got %d", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Fatalf("oldest entry should have been evicted")
	}
}
