// Package rediscache stores catalog items in Redis as JSON values with a TTL.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/phenrril/stockroom/internal/domain"
)

const defaultTTL = 5 * time.Minute

type ItemCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewItemCache(rdb redis.Cmdable, ttl time.Duration) *ItemCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &ItemCache{rdb: rdb, ttl: ttl}
}

func key(id uuid.UUID) string { return "item:" + id.String() }

func (c *ItemCache) Get(ctx context.Context, ids []uuid.UUID) ([]domain.Item, []uuid.UUID, error) {
	if len(ids) == 0 {
		return nil, nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, nil, fmt.Errorf("rediscache: mget: %w", err)
	}

	var found []domain.Item
	var missing []uuid.UUID
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for i, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		raw, ok := vals[i].(string)
		if !ok {
			missing = append(missing, id)
			continue
		}
		var it domain.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			missing = append(missing, id)
			continue
		}
		found = append(found, it)
	}
	return found, missing, nil
}

func (c *ItemCache) Put(ctx context.Context, items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, it := range items {
		b, err := json.Marshal(it)
		if err != nil {
			return fmt.Errorf("rediscache: encode %s: %w", it.ID, err)
		}
		pipe.Set(ctx, key(it.ID), b, c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("rediscache: set: %w", err)
	}
	return nil
}

func (c *ItemCache) Invalidate(ctx context.Context, ids ...uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("rediscache: del: %w", err)
	}
	return nil
}
