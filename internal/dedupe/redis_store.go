package dedupe

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/bookflow/internal/errors"
)

const (
	reservationKeyPrefix = "bookflow:dedupe:"
	attemptsKeyPrefix    = "bookflow:attempts:"
)

// RedisStore implements Store on redis. Reservations use SETNX so concurrent
// consumers racing on the same event id agree on a single winner; attempt
// counters use INCR. Both carry a TTL.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a redis-backed store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

// Reserve claims the key with SETNX.
func (s *RedisStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, reservationKeyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, apperrors.Wrap(err, "failed to reserve dedupe key")
	}
	return ok, nil
}

// Release deletes the claim.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, reservationKeyPrefix+key).Err(); err != nil {
		return apperrors.Wrap(err, "failed to release dedupe key")
	}
	return nil
}

// IncrAttempts increments the attempt counter and refreshes its TTL.
func (s *RedisStore) IncrAttempts(ctx context.Context, key string, ttl time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, attemptsKeyPrefix+key)
	pipe.Expire(ctx, attemptsKeyPrefix+key, ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, apperrors.Wrap(err, "failed to increment attempt counter")
	}
	return int(incr.Val()), nil
}
