package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

type viewStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartViewKey(userID string) string
}

// RedisViewCache keeps each user's assembled cart as JSON under qm:cart_view:<user>.
type RedisViewCache struct {
	store viewStore
	ttl   time.Duration
}

func NewRedisViewCache(store viewStore, ttl time.Duration) *RedisViewCache {
	return &RedisViewCache{store: store, ttl: ttl}
}

func (c *RedisViewCache) Get(ctx context.Context, userID uuid.UUID) ([]StoreGroup, bool, error) {
	raw, err := c.store.Get(ctx, c.store.CartViewKey(userID.String()))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var groups []StoreGroup
	if err := json.Unmarshal([]byte(raw), &groups); err != nil {
		// corrupt entries behave as a miss and get overwritten
		return nil, false, nil
	}
	return groups, true, nil
}

func (c *RedisViewCache) Set(ctx context.Context, userID uuid.UUID, groups []StoreGroup, maxAge time.Duration) error {
	ttl := c.ttl
	if maxAge > 0 && (ttl <= 0 || maxAge < ttl) {
		ttl = maxAge
	}
	payload, err := json.Marshal(groups)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.CartViewKey(userID.String()), payload, ttl)
}

// Invalidate drops the cached views of every given user.
func (c *RedisViewCache) Invalidate(ctx context.Context, userIDs ...uuid.UUID) error {
	if len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, c.store.CartViewKey(id.String()))
	}
	return c.store.Del(ctx, keys...)
}
