package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/suitetest-api/internal/repository"
)

// ResultsCache stores per-test result listings in Redis. A nil client disables caching.
type ResultsCache struct {
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewResultsCache builds the cache.
func NewResultsCache(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *ResultsCache {
	return &ResultsCache{
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "results_cache").Logger(),
	}
}

func resultsCacheKey(testID uint) string {
	return fmt.Sprintf("results:test:%d", testID)
}

// Get returns the cached listing and whether it was found.
func (c *ResultsCache) Get(ctx context.Context, testID uint) ([]repository.ResultRow, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	cached, err := c.client.Get(ctx, resultsCacheKey(testID)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn().Err(err).Uint("test_id", testID).Msg("failed to read results cache")
		}
		return nil, false
	}

	var rows []repository.ResultRow
	if err := json.Unmarshal([]byte(cached), &rows); err != nil {
		c.logger.Warn().Err(err).Uint("test_id", testID).Msg("discarding malformed results cache entry")
		return nil, false
	}
	return rows, true
}

// Set stores the listing for the configured TTL.
func (c *ResultsCache) Set(ctx context.Context, testID uint, rows []repository.ResultRow) {
	if c == nil || c.client == nil {
		return
	}

	payload, err := json.Marshal(rows)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, resultsCacheKey(testID), payload, c.ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("test_id", testID).Msg("failed to store results cache")
	}
}

// Invalidate drops the cached listing of the test.
func (c *ResultsCache) Invalidate(ctx context.Context, testID uint) {
	if c == nil || c.client == nil {
		return
	}

	if err := c.client.Del(ctx, resultsCacheKey(testID)).Err(); err != nil {
		c.logger.Warn().Err(err).Uint("test_id", testID).Msg("failed to invalidate results cache")
	}
}
