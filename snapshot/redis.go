// Package snapshot persists cache entries in Redis so a restarted gateway can
// serve stale data immediately instead of blanking every dashboard.
package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "maintdeck:q:"

// DefaultTTL bounds how long a snapshot survives without a refresh. Warmed
// entries are always served stale, so an old snapshot is only a placeholder
// until the first live fetch.
const DefaultTTL = 24 * time.Hour

// RedisStore implements cache.SnapshotStore on a Redis connection.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	return s.client.Set(ctx, keyPrefix+key, data, s.ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

// Flush drops persisted snapshots under the given key prefix; an empty
// prefix drops them all.
func (s *RedisStore) Flush(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, keyPrefix+prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
