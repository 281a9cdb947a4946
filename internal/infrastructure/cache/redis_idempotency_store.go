package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/config"
)

const defaultPingTimeout = 5 * time.Second

// RedisIdempotencyStore holds scan claims in Redis, so every instance
// pointing at the same server sees the same claims.
type RedisIdempotencyStore struct {
	client    *redis.Client
	namespace string
}

// RedisOption configures a RedisIdempotencyStore
type RedisOption func(*redisSettings)

type redisSettings struct {
	namespace   string
	pingTimeout time.Duration
}

// WithNamespace prefixes every key written by the store
func WithNamespace(ns string) RedisOption {
	return func(s *redisSettings) { s.namespace = ns }
}

// WithPingTimeout bounds the connectivity check run by NewRedisIdempotencyStore
func WithPingTimeout(d time.Duration) RedisOption {
	return func(s *redisSettings) { s.pingTimeout = d }
}

// NewRedisIdempotencyStore dials Redis and fails when the server does not
// answer a PING.
func NewRedisIdempotencyStore(cfg config.RedisConfig, opts ...RedisOption) (*RedisIdempotencyStore, error) {
	settings := redisSettings{pingTimeout: defaultPingTimeout}
	for _, opt := range opts {
		opt(&settings)
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr(),
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: settings.pingTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), settings.pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis %s unreachable: %w", cfg.RedisAddr(), err)
	}

	return &RedisIdempotencyStore{client: client, namespace: settings.namespace}, nil
}

// NewRedisIdempotencyStoreWithClient wraps a client owned by the caller.
// Close still closes it.
func NewRedisIdempotencyStoreWithClient(client *redis.Client, namespace string) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, namespace: namespace}
}

func (s *RedisIdempotencyStore) key(k string) string {
	return s.namespace + k
}

// MarkProcessed claims key with SET NX, so exactly one caller wins
func (s *RedisIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	claimed, err := s.client.SetNX(ctx, s.key(key), time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %q: %w", key, err)
	}
	return claimed, nil
}

// IsProcessed reports whether key is currently claimed
func (s *RedisIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(key)).Result()
	if err != nil {
		return false, fmt.Errorf("lookup %q: %w", key, err)
	}
	return n == 1, nil
}

// Release drops the claim on key
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("release %q: %w", key, err)
	}
	return nil
}

// Close closes the client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// GetClient exposes the client for health checks
func (s *RedisIdempotencyStore) GetClient() *redis.Client {
	return s.client
}

var _ shared.IdempotencyStore = (*RedisIdempotencyStore)(nil)
