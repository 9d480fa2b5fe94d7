package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ideavault/ideavault-backend/internal/clients/redis"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// RedisClient is the part of the redis client RedisStore needs.
type RedisClient interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Exists(ctx context.Context, key string) (bool, error)
	DelIfValue(ctx context.Context, key, value string) (bool, error)
}

var _ RedisClient = (*redis.Client)(nil)

const (
	lockPrefix  = "ideavault:report:queue:"
	cachePrefix = "ideavault:report:cache:"
)

// RedisStore shares the queue and cache across processes. Locks carry an
// owner token so a release never deletes a lock taken over after expiry.
type RedisStore struct {
	log    *logger.Logger
	client RedisClient

	mu     sync.Mutex
	tokens map[string]string
}

func NewRedisStore(log *logger.Logger, client RedisClient) *RedisStore {
	return &RedisStore{
		log:    log.With("store", "RedisReportStore"),
		client: client,
		tokens: map[string]string{},
	}
}

func (s *RedisStore) InFlight(ctx context.Context, key string) (bool, error) {
	return s.client.Exists(ctx, lockPrefix+key)
}

func (s *RedisStore) TryAcquire(ctx context.Context, key string, entry QueueEntry, ttl time.Duration) (bool, error) {
	if entry.StartTime.IsZero() {
		entry.StartTime = time.Now().UTC()
	}
	entry.Owner = uuid.NewString()
	raw, err := json.Marshal(entry)
	if err != nil {
		return false, err
	}
	ok, err := s.client.SetNX(ctx, lockPrefix+key, string(raw), ttl)
	if err != nil || !ok {
		return false, err
	}
	s.mu.Lock()
	s.tokens[key] = string(raw)
	s.mu.Unlock()
	return true, nil
}

func (s *RedisStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	val, ok := s.tokens[key]
	delete(s.tokens, key)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	deleted, err := s.client.DelIfValue(ctx, lockPrefix+key, val)
	if err != nil {
		return err
	}
	if !deleted {
		s.log.Warn("Report queue lock already expired or taken over", "key", key)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.client.Get(ctx, cachePrefix+key)
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, cachePrefix+key, value, ttl)
}
