package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrStoreUnavailable = errors.New("otp: used code store unavailable")

var _ UsedCodeStore = (*RedisUsedCodes)(nil)

// RedisUsedCodes keeps used codes in Redis so several verifier processes
// share one replay guard. Entries expire on their own, so Purge is a no-op.
type RedisUsedCodes struct {
	redis  redis.UniversalClient
	prefix string
}

func NewRedisUsedCodes(client redis.UniversalClient, prefix string) *RedisUsedCodes {
	if prefix == "" {
		prefix = "otp:used:"
	}
	return &RedisUsedCodes{redis: client, prefix: prefix}
}

func (s *RedisUsedCodes) key(k string) string {
	return s.prefix + k
}

func (s *RedisUsedCodes) Purge(context.Context, int64) error {
	return nil
}

func (s *RedisUsedCodes) Contains(ctx context.Context, key string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

func (s *RedisUsedCodes) Add(ctx context.Context, key string, step int64, ttl time.Duration) (bool, error) {
	ok, err := s.redis.SetNX(ctx, s.key(key), step, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return ok, nil
}
