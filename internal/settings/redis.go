package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const defaultRedisKey = "rulekeeper:settings"

type redisBackend struct {
	client *redis.Client
	key    string
}

// NewRedis constructs a backend storing all settings in one redis hash.
func NewRedis(cfg RedisConfig) (Backend, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close() //nolint:errcheck
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	key := cfg.Key
	if key == "" {
		key = defaultRedisKey
	}
	return &redisBackend{client: client, key: key}, nil
}

func (r *redisBackend) Load(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Apply runs the batch inside MULTI/EXEC.
func (r *redisBackend) Apply(ctx context.Context, b Batch) error {
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if len(b.Set) > 0 {
			args := make([]any, 0, 2*len(b.Set))
			for k, v := range b.Set {
				args = append(args, k, v)
			}
			pipe.HSet(ctx, r.key, args...)
		}
		if len(b.Delete) > 0 {
			pipe.HDel(ctx, r.key, b.Delete...)
		}
		return nil
	})
	return err
}

func (r *redisBackend) Close() error {
	return r.client.Close()
}
