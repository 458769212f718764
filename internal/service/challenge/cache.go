package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quizduel/internal/domain"
)

// generationTTL outlives any status entry; an expired counter restarts at 0 only after
// every entry written under the old numbering is gone.
const generationTTL = time.Hour

// statusCache caches challenge rows for status polling. Entries are keyed by a
// per-challenge generation that every transition bumps, so a read that loaded the row
// before a transition can only fill an entry no later reader will look up.
type statusCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func newStatusCache(client *redis.Client, ttl time.Duration) *statusCache {
	if client == nil {
		return nil
	}
	return &statusCache{redis: client, ttl: ttl}
}

func generationKey(id uuid.UUID) string {
	return "challenge:" + id.String() + ":gen"
}

func statusCacheKey(id uuid.UUID, gen int64) string {
	return fmt.Sprintf("challenge:%s:status:%d", id, gen)
}

func (c *statusCache) generation(ctx context.Context, id uuid.UUID) (int64, error) {
	gen, err := c.redis.Get(ctx, generationKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func (c *statusCache) get(ctx context.Context, id uuid.UUID, gen int64) (*domain.Challenge, bool) {
	data, err := c.redis.Get(ctx, statusCacheKey(id, gen)).Bytes()
	if err != nil {
		return nil, false
	}
	var ch domain.Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return nil, false
	}
	return &ch, true
}

func (c *statusCache) set(ctx context.Context, id uuid.UUID, gen int64, ch *domain.Challenge) error {
	data, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return c.redis.Set(ctx, statusCacheKey(id, gen), data, c.ttl).Err()
}

func (c *statusCache) invalidate(ctx context.Context, id uuid.UUID) error {
	pipe := c.redis.TxPipeline()
	pipe.Incr(ctx, generationKey(id))
	pipe.Expire(ctx, generationKey(id), generationTTL)
	_, err := pipe.Exec(ctx)
	return err
}
