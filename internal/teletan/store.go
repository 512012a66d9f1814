package teletan

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks issued TeleTAN codes by digest. A code is valid while its
// digest is present and disappears when it expires or is consumed.
type Store interface {
	Save(ctx context.Context, codeHash string, ttl time.Duration) error
	Exists(ctx context.Context, codeHash string) (bool, error)
	Delete(ctx context.Context, codeHash string) error
}

// RedisStore implements Store using Redis. Codes are stored as
// "<prefix><codeHash>" with TTL, so expiry needs no sweeper.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a Redis-backed TeleTAN store. Prefix may be empty.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "teletan:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(codeHash string) string {
	return s.prefix + codeHash
}

func (s *RedisStore) Save(ctx context.Context, codeHash string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, s.key(codeHash), "1", ttl).Err()
}

func (s *RedisStore) Exists(ctx context.Context, codeHash string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(codeHash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisStore) Delete(ctx context.Context, codeHash string) error {
	return s.client.Del(ctx, s.key(codeHash)).Err()
}
