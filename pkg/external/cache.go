package external

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/triage-routing-engine/internal/domain"
)

// ExplanationCache is a two-tier cache for explanation-service
// responses: an in-memory LRU hot tier backed by an optional Redis warm
// tier. Identical (tier, symptoms, department) contexts reuse the same
// explanation, which keeps the optional service cheap under spikes.
type ExplanationCache struct {
	logger *logrus.Logger
	memory *lru.Cache[string, *domain.Explanation]
	redis  *redis.Client
	ttl    time.Duration
}

// NewExplanationCache creates the cache. Redis is optional: when cfg
// disables it or the connection cannot be established the cache runs
// memory-only.
func NewExplanationCache(logger *logrus.Logger, cfg domain.CacheConfig) (*ExplanationCache, error) {
	entries := cfg.MemoryEntries
	if entries <= 0 {
		entries = 512
	}
	memory, err := lru.New[string, *domain.Explanation](entries)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}

	cache := &ExplanationCache{
		logger: logger,
		memory: memory,
		ttl:    cfg.DefaultTTL,
	}
	if cache.ttl <= 0 {
		cache.ttl = time.Hour
	}

	if cfg.RedisEnabled {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		opts.PoolSize = cfg.PoolSize
		opts.PoolTimeout = cfg.PoolTimeout
		opts.MaxRetries = cfg.MaxRetries

		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Warn("Redis unavailable, explanation cache runs memory-only")
		} else {
			cache.redis = client
		}
	}

	return cache, nil
}

// Get returns a cached explanation for the context, if present.
func (c *ExplanationCache) Get(ctx context.Context, ec *domain.ExplanationContext) (*domain.Explanation, bool) {
	key := cacheKey(ec)

	if cached, ok := c.memory.Get(key); ok {
		return cached, true
	}

	if c.redis == nil {
		return nil, false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).Debug("Explanation cache read failed")
		return nil, false
	}

	var explanation domain.Explanation
	if err := json.Unmarshal([]byte(val), &explanation); err != nil {
		c.logger.WithError(err).Debug("Explanation cache entry corrupt")
		return nil, false
	}
	c.memory.Add(key, &explanation)
	return &explanation, true
}

// Put stores an explanation in both tiers.
func (c *ExplanationCache) Put(ctx context.Context, ec *domain.ExplanationContext, explanation *domain.Explanation) {
	key := cacheKey(ec)
	c.memory.Add(key, explanation)

	if c.redis == nil {
		return
	}
	payload, err := json.Marshal(explanation)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.WithError(err).Debug("Explanation cache write failed")
	}
}

// Close releases the Redis connection, if any.
func (c *ExplanationCache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}

// cacheKey hashes the explanation context. Vitals are excluded: the
// narrative depends on tier, symptoms and department, and including
// per-patient vitals would make every entry unique.
func cacheKey(ec *domain.ExplanationContext) string {
	h := sha256.Sum256([]byte(fmt.Sprintf(
		"%s|%s|%s", ec.Tier, strings.Join(ec.Symptoms, ","), ec.Department,
	)))
	return fmt.Sprintf("triage:explain:%x", h[:16])
}
