package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const tagKeyPrefix = "cachetag:"

// Redis is the Store used when a redis address is configured. Each tag
// is a redis SET holding the member keys, so invalidation is a
// SMEMBERS + DEL rather than a key scan.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration, tags ...string) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	if err := r.rdb.Set(ctx, key, value, ttl).Err(); err != nil {
		return err
	}

	for _, tag := range tags {
		tagKey := tagKeyPrefix + tag
		if err := r.rdb.SAdd(ctx, tagKey, key).Err(); err != nil {
			return err
		}
		// The tag set only needs to outlive its newest member.
		if err := r.rdb.Expire(ctx, tagKey, ttl).Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		tagKey := tagKeyPrefix + tag

		keys, err := r.rdb.SMembers(ctx, tagKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		if len(keys) > 0 {
			if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if err := r.rdb.Del(ctx, tagKey).Err(); err != nil {
			return err
		}
	}
	return nil
}
