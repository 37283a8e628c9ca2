package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Registry remembers which user ids have been seen and when.
type Registry interface {
	Touch(ctx context.Context, userID string) error
}

// NopRegistry is used when no Redis is configured.
type NopRegistry struct{}

func (NopRegistry) Touch(context.Context, string) error { return nil }

// RedisRegistry stores the last-seen unix time of each user under
// user:<id>:seen, expiring after ttl of inactivity.
type RedisRegistry struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisRegistry(rdb *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{rdb: rdb, ttl: ttl}
}

func seenKey(userID string) string { return fmt.Sprintf("user:%s:seen", userID) }

func (r *RedisRegistry) Touch(ctx context.Context, userID string) error {
	return r.rdb.Set(ctx, seenKey(userID), time.Now().Unix(), r.ttl).Err()
}
