// Package redis caches range query results in Redis (or Valkey).
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/quentinrf/sensor-data-pipeline/internal/config"
	"github.com/quentinrf/sensor-data-pipeline/internal/domain"
)

const keyPrefix = "readings:range:"

// ResultCache implements domain.ResultCache. Every failure is logged and
// reported as a miss so the query falls through to the database.
type ResultCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewClient connects to the configured Redis and verifies it answers
func NewClient(ctx context.Context, cfg config.CacheConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s unavailable: %w", cfg.RedisAddr, err)
	}
	return rdb, nil
}

// NewResultCache creates a cache whose entries live for ttl
func NewResultCache(rdb redis.Cmdable, ttl time.Duration) *ResultCache {
	return &ResultCache{rdb: rdb, ttl: ttl}
}

// Key returns the cache key for a resolved range
func Key(r domain.DateRange) string {
	from, to := r.Bounds()
	return keyPrefix + from + ":" + to
}

// Get returns the cached rows for r
func (c *ResultCache) Get(ctx context.Context, r domain.DateRange) ([]domain.ReadingRow, bool) {
	data, err := c.rdb.Get(ctx, Key(r)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", Key(r)).Msg("cache read failed")
		}
		return nil, false
	}

	var rows []domain.ReadingRow
	if err := json.Unmarshal(data, &rows); err != nil {
		log.Warn().Err(err).Str("key", Key(r)).Msg("discarding corrupt cache entry")
		return nil, false
	}
	return rows, true
}

// Put stores rows for r
func (c *ResultCache) Put(ctx context.Context, r domain.DateRange, rows []domain.ReadingRow) {
	data, err := json.Marshal(rows)
	if err != nil {
		log.Warn().Err(err).Msg("failed to encode cache entry")
		return
	}
	if err := c.rdb.Set(ctx, Key(r), data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", Key(r)).Msg("cache write failed")
	}
}
