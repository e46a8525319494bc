// Package cache memoizes intent extraction results.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spigell/alumni-matcher/internal/utils"
)

// Store is the key/value backend of the cache. Get reports a miss with ok=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisOptions configures the Redis store.
type RedisOptions struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password" json:"-"`
	DB       int    `mapstructure:"db"`
}

// RedisStore keeps entries in Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and checks the connection.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}

	return &RedisStore{client: client}, nil
}

// NewRedisStoreFromClient wraps an existing client.
func NewRedisStoreFromClient(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

type memoryEntry struct {
	value   string
	expires time.Time
}

// DefaultMemoryEntries bounds a MemoryStore built with NewMemoryStore.
const DefaultMemoryEntries = 4096

// MemoryStore is an in-process Store used when Redis is not configured.
// Expired entries are swept on Set. When MaxEntries is reached the entry
// closest to expiry is evicted.
type MemoryStore struct {
	MaxEntries int

	mu      sync.Mutex
	clock   utils.Clock
	entries map[string]memoryEntry
}

func NewMemoryStore(clock utils.Clock) *MemoryStore {
	if clock == nil {
		clock = utils.SystemClock()
	}
	return &MemoryStore{MaxEntries: DefaultMemoryEntries, clock: clock, entries: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return "", false, nil
	}
	if !entry.expires.IsZero() && !s.clock.Now().Before(entry.expires) {
		delete(s.entries, key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expires = now.Add(ttl)
	}

	if _, ok := s.entries[key]; !ok {
		s.sweep(now)
		if s.MaxEntries > 0 && len(s.entries) >= s.MaxEntries {
			s.evictOne()
		}
	}
	s.entries[key] = entry
	return nil
}

// Len reports the number of stored entries, expired ones included until the next sweep.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) sweep(now time.Time) {
	for key, entry := range s.entries {
		if !entry.expires.IsZero() && !now.Before(entry.expires) {
			delete(s.entries, key)
		}
	}
}

// evictOne drops the entry expiring first. Entries without a ttl go last.
func (s *MemoryStore) evictOne() {
	var (
		victim  string
		soonest time.Time
		found   bool
	)
	for key, entry := range s.entries {
		switch {
		case !found:
		case entry.expires.IsZero():
			continue
		case !soonest.IsZero() && !entry.expires.Before(soonest):
			continue
		}
		victim, soonest, found = key, entry.expires, true
	}
	if found {
		delete(s.entries, victim)
	}
}
