// Package dedup suppresses repeated deliveries of the same workflow failure.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/telhawk-systems/telhawk-notify/internal/models"
)

const keyPrefix = "notify:sent:"

// Guard decides whether an event may be delivered.
type Guard interface {
	// Acquire returns true if the caller owns the key and should deliver.
	Acquire(ctx context.Context, key string) (bool, error)
	// Release frees a key after a failed delivery so the event can be sent again.
	Release(ctx context.Context, key string) error
}

// Key identifies an event by workflow and exception ID. The workflow is
// length-prefixed so separators inside either field cannot make two events
// share a key.
func Key(event *models.FailureEvent) string {
	return fmt.Sprintf("%s%d:%s:%s", keyPrefix, len(event.Workflow), event.Workflow, event.ExcID)
}

// NoopGuard lets every event through.
type NoopGuard struct{}

func (NoopGuard) Acquire(context.Context, string) (bool, error) { return true, nil }
func (NoopGuard) Release(context.Context, string) error         { return nil }

// RedisGuard holds one key per delivered event for ttl.
type RedisGuard struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisGuard creates a Redis-backed guard.
func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{redis: client, ttl: ttl}
}

// Acquire sets key if absent.
func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.redis.SetNX(ctx, key, time.Now().Unix(), g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire dedup key: %w", err)
	}
	return ok, nil
}

// Release deletes key.
func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.redis.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to release dedup key: %w", err)
	}
	return nil
}

// NewRedisClient connects to the Redis server at url and verifies the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
