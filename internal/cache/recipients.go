package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RecipientCachePrefix is the key prefix for per-user recipient sets
	RecipientCachePrefix = "recipients:user:"

	// RecipientCacheTTL bounds staleness when an invalidation event is lost
	RecipientCacheTTL = 24 * time.Hour
)

// RecipientCache caches the set of user IDs that should be notified when a
// given user raises a panic alert (emergency contacts + entity
// co-subscribers). Resolving that set hits two tables with joins, and the
// fan-out path is latency-sensitive, so the worker keeps it in a Redis set.
//
// Using an interface enables testing with mocks and potential future backends.
type RecipientCache interface {
	// Get returns the cached recipient IDs for a user.
	// found=false means the set must be rebuilt from the repositories.
	Get(ctx context.Context, userID int64) (recipientIDs []int64, found bool, err error)

	// Put replaces a user's recipient set. An empty set is stored as a
	// sentinel member so "no recipients" is still a cache hit.
	Put(ctx context.Context, userID int64, recipientIDs []int64) error

	// Invalidate drops a user's recipient set.
	Invalidate(ctx context.Context, userID int64) error
}

// RedisRecipientCache implements RecipientCache using Redis Sets.
type RedisRecipientCache struct {
	client *redis.Client
}

// NewRecipientCache creates a new RecipientCache backed by Redis.
func NewRecipientCache(client *redis.Client) RecipientCache {
	return &RedisRecipientCache{client: client}
}

// emptyMarker keeps an empty recipient set distinguishable from a miss.
const emptyMarker = "-"

func recipientKey(userID int64) string {
	return fmt.Sprintf("%s%d", RecipientCachePrefix, userID)
}

func (c *RedisRecipientCache) Get(ctx context.Context, userID int64) ([]int64, bool, error) {
	members, err := c.client.SMembers(ctx, recipientKey(userID)).Result()
	if err != nil {
		return nil, false, fmt.Errorf("smembers: %w", err)
	}
	if len(members) == 0 {
		return nil, false, nil
	}

	ids := make([]int64, 0, len(members))
	for _, m := range members {
		if m == emptyMarker {
			continue
		}
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			return nil, false, fmt.Errorf("parse cached recipient %q: %w", m, err)
		}
		ids = append(ids, id)
	}
	return ids, true, nil
}

// Put replaces the set atomically: DEL + SADD + EXPIRE in one pipeline.
func (c *RedisRecipientCache) Put(ctx context.Context, userID int64, recipientIDs []int64) error {
	key := recipientKey(userID)

	members := make([]interface{}, 0, len(recipientIDs)+1)
	for _, id := range recipientIDs {
		members = append(members, strconv.FormatInt(id, 10))
	}
	if len(members) == 0 {
		members = append(members, emptyMarker)
	}

	pipe := c.client.Pipeline()
	pipe.Del(ctx, key)
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, RecipientCacheTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("put recipient set: %w", err)
	}
	return nil
}

func (c *RedisRecipientCache) Invalidate(ctx context.Context, userID int64) error {
	if err := c.client.Del(ctx, recipientKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate recipient set: %w", err)
	}
	return nil
}
