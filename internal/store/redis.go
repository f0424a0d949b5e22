package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "records:"

// RedisStore keeps each collection under a single Redis string key.
type RedisStore struct {
	client *redis.Client
}

var _ Store = &RedisStore{} // RedisStore is-a Store.

// NewRedisStore returns a RedisStore using client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Load reads the collection key.
func (r *RedisStore) Load(ctx context.Context, collection string) ([]byte, error) {
	data, err := r.client.Get(ctx, redisKey(collection)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotExist
	} else if err != nil {
		return nil, errors.WithMessage(err, "redis get")
	}
	return data, nil
}

// Save overwrites the collection key without expiry.
func (r *RedisStore) Save(ctx context.Context, collection string, data []byte) error {
	if err := r.client.Set(ctx, redisKey(collection), data, 0).Err(); err != nil {
		return errors.WithMessage(err, "redis set")
	}
	return nil
}

func redisKey(collection string) string { return redisKeyPrefix + collection }
