package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store is the minimal key-value contract the response caches need.
// Implementations must degrade to misses and dropped writes rather
// than surfacing backing-store failures.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, key string) error
	Close() error
}

type RedisStore struct {
	client *redis.Client
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	return data, err
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// NoOpStore stands in when caching is disabled or Redis is down; every
// get is a miss and every write is dropped.
type NoOpStore struct{}

func NewNoOpStore() *NoOpStore {
	return &NoOpStore{}
}

func (s *NoOpStore) Get(ctx context.Context, key string) ([]byte, error) {
	return nil, nil
}

func (s *NoOpStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return nil
}

func (s *NoOpStore) Del(ctx context.Context, key string) error {
	return nil
}

func (s *NoOpStore) Close() error {
	return nil
}
