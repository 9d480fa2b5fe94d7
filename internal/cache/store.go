// Package cache holds the report generation queue and result cache, and a
// small generic TTL cache for in-process memoization.
package cache

import (
	"context"
	"time"
)

// QueueEntry marks a report generation in flight for one (user, idea) pair.
type QueueEntry struct {
	StartTime time.Time `json:"start_time"`
	Checksum  string    `json:"checksum"`
	Owner     string    `json:"owner,omitempty"`
}

// Store backs the report queue and cache. TryAcquire is atomic: at most one
// caller holds a key until Release or until the lock TTL passes.
type Store interface {
	InFlight(ctx context.Context, key string) (bool, error)
	TryAcquire(ctx context.Context, key string, entry QueueEntry, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Sweeper is implemented by in-process stores that need periodic eviction.
type Sweeper interface {
	Sweep() int
}
