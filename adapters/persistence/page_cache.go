package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/khoahotran/talent-match/internal/domain/feed"
)

// RedisPageCache holds preloaded recommendation pages for a feed session.
type RedisPageCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisPageCache(rdb *redis.Client, ttl time.Duration) *RedisPageCache {
	return &RedisPageCache{rdb: rdb, ttl: ttl}
}

func pageKey(userID, epoch uuid.UUID, page int) string {
	return fmt.Sprintf("feed:preload:%s:%s:%d", userID, epoch, page)
}

func (c *RedisPageCache) Get(ctx context.Context, userID, epoch uuid.UUID, page int) (*feed.Page, error) {
	raw, err := c.rdb.Get(ctx, pageKey(userID, epoch, page)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read preloaded page: %w", err)
	}
	var p feed.Page
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("failed to decode preloaded page: %w", err)
	}
	return &p, nil
}

func (c *RedisPageCache) Put(ctx context.Context, userID, epoch uuid.UUID, p feed.Page) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode preloaded page: %w", err)
	}
	if err := c.rdb.Set(ctx, pageKey(userID, epoch, p.Number), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store preloaded page: %w", err)
	}
	return nil
}

// Delete drops a consumed page so it is not served twice.
func (c *RedisPageCache) Delete(ctx context.Context, userID, epoch uuid.UUID, page int) error {
	return c.rdb.Del(ctx, pageKey(userID, epoch, page)).Err()
}
