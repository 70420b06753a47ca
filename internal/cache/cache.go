package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/web3-frozen/whirlpool-monitor/internal/position"
)

const keyPrefix = "whirlpool:records:"

// SnapshotCache keeps the most recent record page in Redis so that many
// dashboard clients polling the same endpoint hit the database once per TTL.
type SnapshotCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// New creates a SnapshotCache backed by Redis.
func New(redisURL, password string, ttl time.Duration) (*SnapshotCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, err
	}
	return &SnapshotCache{rdb: rdb, ttl: ttl}, nil
}

// Close shuts down the Redis connection.
func (c *SnapshotCache) Close() error {
	return c.rdb.Close()
}

// Ping checks the Redis connection.
func (c *SnapshotCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Get returns the cached page for limit. ok is false on a miss; err is set
// only when Redis failed or the entry could not be decoded.
func (c *SnapshotCache) Get(ctx context.Context, limit int) (snaps []position.Snapshot, ok bool, err error) {
	data, err := c.rdb.Get(ctx, key(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached records: %w", err)
	}
	if err := json.Unmarshal(data, &snaps); err != nil {
		return nil, false, fmt.Errorf("decode cached records: %w", err)
	}
	return snaps, true, nil
}

// Set stores the page for limit with the configured TTL.
func (c *SnapshotCache) Set(ctx context.Context, limit int, snaps []position.Snapshot) error {
	data, err := json.Marshal(snaps)
	if err != nil {
		return fmt.Errorf("encode records: %w", err)
	}
	if err := c.rdb.Set(ctx, key(limit), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached records: %w", err)
	}
	return nil
}

func key(limit int) string {
	return fmt.Sprintf("%s%d", keyPrefix, limit)
}
