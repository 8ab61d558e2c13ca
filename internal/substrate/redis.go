package substrate

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisSubstrate stores each blob under a plain Redis string key. GET/SET of
// the whole value preserves the read-modify-write granularity the history
// store is specified against.
type RedisSubstrate struct {
	rdb *redis.Client
}

func NewRedisSubstrate(rdb *redis.Client) *RedisSubstrate {
	return &RedisSubstrate{rdb: rdb}
}

func (s *RedisSubstrate) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *RedisSubstrate) Set(ctx context.Context, key string, value string) error {
	if err := s.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RedisSubstrate) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
