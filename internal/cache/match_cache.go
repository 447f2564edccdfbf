// Package cache keeps matching query results in Redis. Results are
// keyed by (day, version, minimum minutes); bumping a day's version
// counter invalidates every cached result for that day without key
// scans.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const dayFormat = "2006-01-02"

type MatchCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewMatchCache(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *MatchCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &MatchCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Get returns the cached candidate ids for (day, minMinutes). Redis
// failures count as misses so matching still answers when the cache
// is down.
func (c *MatchCache) Get(ctx context.Context, day time.Time, minMinutes int) ([]string, bool) {
	ver, err := c.version(ctx, day)
	if err != nil {
		c.logger.Warn("match cache version read failed", "err", err)
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, c.resultKey(day, ver, minMinutes)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("match cache read failed", "err", err)
		return nil, false
	}
	var ids []string
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		c.logger.Warn("match cache payload corrupt", "err", err)
		return nil, false
	}
	return ids, true
}

func (c *MatchCache) Put(ctx context.Context, day time.Time, minMinutes int, ids []string) {
	ver, err := c.version(ctx, day)
	if err != nil {
		c.logger.Warn("match cache version read failed", "err", err)
		return
	}
	payload, err := json.Marshal(ids)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.resultKey(day, ver, minMinutes), payload, c.ttl).Err(); err != nil {
		c.logger.Warn("match cache write failed", "err", err)
	}
}

// Invalidate bumps the day's version so every cached result for that
// day goes stale.
func (c *MatchCache) Invalidate(ctx context.Context, day time.Time) {
	if err := c.rdb.Incr(ctx, c.versionKey(day)).Err(); err != nil {
		c.logger.Warn("match cache invalidation failed", "err", err, "day", day.UTC().Format(dayFormat))
	}
}

// InvalidateRange invalidates every UTC day the [start, end) span
// touches.
func (c *MatchCache) InvalidateRange(ctx context.Context, start, end time.Time) {
	day := time.Date(start.UTC().Year(), start.UTC().Month(), start.UTC().Day(), 0, 0, 0, 0, time.UTC)
	for day.Before(end) {
		c.Invalidate(ctx, day)
		day = day.AddDate(0, 0, 1)
	}
}

func (c *MatchCache) version(ctx context.Context, day time.Time) (int64, error) {
	v, err := c.rdb.Get(ctx, c.versionKey(day)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *MatchCache) versionKey(day time.Time) string {
	return "match:v:" + day.UTC().Format(dayFormat)
}

func (c *MatchCache) resultKey(day time.Time, version int64, minMinutes int) string {
	return fmt.Sprintf("match:r:%s:%d:%d", day.UTC().Format(dayFormat), version, minMinutes)
}

// ReadyCheck adapts the Redis client into a /readyz dependency check.
func ReadyCheck(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}
