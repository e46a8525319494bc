package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
)

type countingExtractor struct {
	intent *ai.ExtractedIntent
	calls  int
}

func (e *countingExtractor) Extract(context.Context, string) *ai.ExtractedIntent {
	e.calls++
	return e.intent
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- c.Now().Add(d)
	return ch
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, errors.New("connection refused")
}

func (brokenStore) Set(context.Context, string, string, time.Duration) error {
	return errors.New("connection refused")
}

func TestIntentCacheHitAndMiss(t *testing.T) {
	t.Parallel()

	next := &countingExtractor{intent: ai.NewIntent("Berlin", "", "", "")}
	cache := NewIntentCache(next, NewMemoryStore(nil), "gemini-2.5-flash", time.Minute, zap.NewNop())

	first := cache.Extract(context.Background(), "Alumni in  Berlin")
	second := cache.Extract(context.Background(), "alumni in berlin ")

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, "Berlin", *second.Location)
	assert.Nil(t, second.Industry)
	assert.Equal(t, 1, next.calls)

	cache.Extract(context.Background(), "designers")
	assert.Equal(t, 2, next.calls)
}

func TestIntentCacheSkipsNilIntents(t *testing.T) {
	t.Parallel()

	next := &countingExtractor{}
	cache := NewIntentCache(next, NewMemoryStore(nil), "m", 0, nil)

	assert.Nil(t, cache.Extract(context.Background(), "anything"))
	assert.Nil(t, cache.Extract(context.Background(), "anything"))
	assert.Equal(t, 2, next.calls)
}

func TestIntentCacheKeyIncludesModel(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	next := &countingExtractor{intent: ai.NewIntent("", "Fintech", "", "")}

	NewIntentCache(next, store, "model-a", 0, nil).Extract(context.Background(), "fintech")
	NewIntentCache(next, store, "model-b", 0, nil).Extract(context.Background(), "fintech")
	assert.Equal(t, 2, next.calls)
}

func TestIntentCacheExpiry(t *testing.T) {
	t.Parallel()

	clock := &stepClock{now: time.Unix(1000, 0)}
	next := &countingExtractor{intent: ai.NewIntent("", "", "Engineer", "")}
	cache := NewIntentCache(next, NewMemoryStore(clock), "m", time.Minute, nil)

	cache.Extract(context.Background(), "engineers")
	clock.advance(59 * time.Second)
	cache.Extract(context.Background(), "engineers")
	assert.Equal(t, 1, next.calls)

	clock.advance(time.Second)
	cache.Extract(context.Background(), "engineers")
	assert.Equal(t, 2, next.calls)
}

func TestMemoryStoreSweepsExpiredOnSet(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &stepClock{now: time.Unix(1000, 0)}
	store := NewMemoryStore(clock)

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, key, key, time.Minute))
	}
	require.NoError(t, store.Set(ctx, "forever", "x", 0))
	assert.Equal(t, 4, store.Len())

	clock.advance(time.Minute)
	require.NoError(t, store.Set(ctx, "d", "d", time.Minute))
	assert.Equal(t, 2, store.Len())

	_, ok, err := store.Get(ctx, "forever")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreBounded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clock := &stepClock{now: time.Unix(1000, 0)}
	store := NewMemoryStore(clock)
	store.MaxEntries = 2

	require.NoError(t, store.Set(ctx, "long", "1", time.Hour))
	require.NoError(t, store.Set(ctx, "short", "2", time.Minute))
	require.NoError(t, store.Set(ctx, "new", "3", time.Hour))
	assert.Equal(t, 2, store.Len())

	_, ok, _ := store.Get(ctx, "short")
	assert.False(t, ok, "entry closest to expiry is evicted")
	_, ok, _ = store.Get(ctx, "long")
	assert.True(t, ok)

	// overwriting an existing key never evicts
	require.NoError(t, store.Set(ctx, "new", "4", time.Hour))
	assert.Equal(t, 2, store.Len())
	got, ok, _ := store.Get(ctx, "new")
	assert.True(t, ok)
	assert.Equal(t, "4", got)
}

func TestIntentCacheStoreFailureFallsThrough(t *testing.T) {
	t.Parallel()

	next := &countingExtractor{intent: ai.NewIntent("London", "", "", "")}
	cache := NewIntentCache(next, brokenStore{}, "m", 0, nil)

	got := cache.Extract(context.Background(), "london")
	require.NotNil(t, got)
	assert.Equal(t, "London", *got.Location)
}

func TestMemoryStoreCorruptEntry(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(nil)
	next := &countingExtractor{intent: ai.NewIntent("Paris", "", "", "")}
	cache := NewIntentCache(next, store, "m", 0, nil)

	require.NoError(t, store.Set(context.Background(), cache.key("paris"), "{not json", 0))

	got := cache.Extract(context.Background(), "paris")
	require.NotNil(t, got)
	assert.Equal(t, 1, next.calls)
}

func TestNewRedisStoreRequiresAddr(t *testing.T) {
	t.Parallel()

	_, err := NewRedisStore(context.Background(), RedisOptions{})
	require.Error(t, err)
}
