package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/alumni-matcher/internal/ai"
)

const (
	// DefaultTTL applies when no TTL is configured.
	DefaultTTL = time.Hour

	keyPrefix = "alumni-matcher:intent:"
)

// IntentCache wraps an extractor and remembers the intents it produced. Only
// non-nil intents are stored, so degraded extractions are retried.
type IntentCache struct {
	next   ai.IntentExtractor
	store  Store
	ttl    time.Duration
	model  string
	logger *zap.Logger
}

// NewIntentCache keys entries by model and normalized query.
func NewIntentCache(next ai.IntentExtractor, store Store, model string, ttl time.Duration, logger *zap.Logger) *IntentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntentCache{next: next, store: store, ttl: ttl, model: model, logger: logger}
}

func (c *IntentCache) Extract(ctx context.Context, text string) *ai.ExtractedIntent {
	key := c.key(text)

	if cached, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("intent cache lookup failed", zap.Error(err))
	} else if ok {
		var intent ai.ExtractedIntent
		if err := json.Unmarshal([]byte(cached), &intent); err == nil {
			c.logger.Debug("intent cache hit", zap.String("key", key))
			return intent.Normalize()
		}
		c.logger.Warn("dropping unreadable intent cache entry", zap.String("key", key))
	}

	intent := c.next.Extract(ctx, text)
	if intent == nil {
		return nil
	}

	encoded, err := json.Marshal(intent)
	if err != nil {
		return intent
	}
	if err := c.store.Set(ctx, key, string(encoded), c.ttl); err != nil {
		c.logger.Warn("intent cache store failed", zap.Error(err))
	}
	return intent
}

func (c *IntentCache) key(text string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	sum := sha256.Sum256([]byte(c.model + "\x00" + normalized))
	return keyPrefix + hex.EncodeToString(sum[:])
}
