// Package cache stores search results in Redis, scoped by corpus generation so
// a swap never serves results computed against an older index. Concurrent
// identical queries share one computation.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/herbal-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/herbal-search/pkg/resilience"
)

const keyPrefix = "search:"

// Backend is the key-value store behind the cache. *redis.Client satisfies it.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	DeletePrefix(ctx context.Context, prefix string) (int64, error)
}

// QueryCache is safe for concurrent use. A nil *QueryCache is a valid,
// disabled cache: every lookup misses and computes directly.
type QueryCache struct {
	backend Backend
	ttl     time.Duration
	group   singleflight.Group
	breaker *resilience.CircuitBreaker
	metrics *metrics.Metrics
	logger  *slog.Logger
	hits    atomic.Int64
	misses  atomic.Int64
}

// New creates a cache over backend. m may be nil.
func New(backend Backend, ttl time.Duration, m *metrics.Metrics) *QueryCache {
	return &QueryCache{
		backend: backend,
		ttl:     ttl,
		breaker: resilience.NewCircuitBreaker("query-cache", resilience.CircuitBreakerConfig{
			FailureThreshold: 5,
			ResetTimeout:     15 * time.Second,
		}),
		metrics: m,
		logger:  logger.Component("query-cache"),
	}
}

// Get returns a cached result for (generationID, normalized query, limit).
func (c *QueryCache) Get(ctx context.Context, generationID, query string, limit int) (*executor.SearchResult, bool) {
	if c == nil {
		return nil, false
	}
	key := buildKey(generationID, query, limit)
	var data []byte
	var found bool
	err := c.breaker.Execute(func() error {
		var err error
		data, found, err = c.backend.Get(ctx, key)
		return err
	})
	if err != nil {
		if !errors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.miss()
		return nil, false
	}
	if !found {
		c.miss()
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.miss()
		return nil, false
	}
	c.hit()
	c.logger.Debug("cache hit", "query", query, "key", key)
	return &result, true
}

// Set stores result. Failures are logged and otherwise ignored.
func (c *QueryCache) Set(ctx context.Context, generationID, query string, limit int, result *executor.SearchResult) {
	if c == nil {
		return
	}
	key := buildKey(generationID, query, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	err = c.breaker.Execute(func() error {
		return c.backend.Set(ctx, key, data, c.ttl)
	})
	if err != nil && !errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or runs computeFn once for all
// concurrent callers with the same key. The bool reports a cache hit. The
// shared computation runs on a context detached from the first caller's
// cancellation, since its result is handed to every waiting caller.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	generationID, query string,
	limit int,
	computeFn func(ctx context.Context) (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if c == nil {
		result, err := computeFn(ctx)
		return result, false, err
	}
	if result, ok := c.Get(ctx, generationID, query, limit); ok {
		return result, true, nil
	}
	key := buildKey(generationID, query, limit)
	shared := context.WithoutCancel(ctx)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		result, err := computeFn(shared)
		if err != nil {
			return nil, err
		}
		c.Set(shared, generationID, query, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*executor.SearchResult), false, nil
}

// Invalidate drops every cached result.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	return c.deletePrefix(ctx, keyPrefix)
}

// InvalidateGeneration drops the results cached for one generation.
func (c *QueryCache) InvalidateGeneration(ctx context.Context, generationID string) (int64, error) {
	return c.deletePrefix(ctx, keyPrefix+generationID+":")
}

func (c *QueryCache) deletePrefix(ctx context.Context, prefix string) (int64, error) {
	if c == nil {
		return 0, nil
	}
	deleted, err := c.backend.DeletePrefix(ctx, prefix)
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidated", "prefix", prefix, "keys_deleted", deleted)
	return deleted, nil
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Enabled bool    `json:"enabled"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Breaker string  `json:"breaker,omitempty"`
}

func (c *QueryCache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	s := Stats{
		Enabled: true,
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Breaker: c.breaker.State().String(),
	}
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}

func (c *QueryCache) hit() {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

// buildKey hashes the query so arbitrary input yields bounded, safe keys. The
// generation id stays readable so one generation can be dropped by prefix.
func buildKey(generationID, query string, limit int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s\x00limit=%d", query, limit)))
	return fmt.Sprintf("%s%s:%x", keyPrefix, generationID, sum[:16])
}
