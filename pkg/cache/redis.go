package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"workspace-hub/pkg/utils"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// KVStore is the shared expiring key-value collaborator. The OAuth flow
// keeps its CSRF state here so any server instance can complete a
// callback started by another.
type KVStore interface {
	SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, bool, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

type redisStore struct {
	client *redis.Client
	log    *zap.Logger
}

// InitRedis connects to Redis and verifies the connection.
func InitRedis(config utils.RedisConfig, log *zap.Logger) (KVStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis at %s: %w", config.Addr, err)
	}

	return &redisStore{
		client: client,
		log:    log.With(zap.String("component", "cache")),
	}, nil
}

func (s *redisStore) SetWithExpiry(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.log.Error("Failed to set key", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Get returns the value and whether the key exists. Missing keys are not
// an error.
func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		s.log.Error("Failed to get key", zap.Error(err), zap.String("key", key))
		return "", false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.log.Error("Failed to delete key", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
