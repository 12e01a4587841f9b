package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/stockroom/internal/domain"
)

// Redis is a Locker shared by every instance talking to the same Redis.
// Acquire retries until ctx is done or, without a deadline, until ttl elapses.
type Redis struct {
	client *redislock.Client
	ttl    time.Duration
	retry  redislock.RetryStrategy
}

func NewRedis(rdb redislock.RedisClient, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{
		client: redislock.New(rdb),
		ttl:    ttl,
		retry:  redislock.LinearBackoff(50 * time.Millisecond),
	}
}

func (r *Redis) Acquire(ctx context.Context, key string) (func(), error) {
	lk, err := r.client.Obtain(ctx, "lock:"+key, r.ttl, &redislock.Options{RetryStrategy: r.retry})
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, domain.ErrLocationBusy
	}
	if err != nil {
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			if err := lk.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				log.Warn().Err(err).Str("key", key).Msg("release redis lock")
			}
		})
	}, nil
}
