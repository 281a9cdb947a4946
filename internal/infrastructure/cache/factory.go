// Package cache provides the stores that remember claimed scan nonces.
package cache

import (
	"fmt"

	"github.com/stockflow/backend/internal/domain/shared"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IdempotencyStoreFactory picks the store backing scan claims: Redis when it
// is enabled and reachable, process memory otherwise.
type IdempotencyStoreFactory struct {
	cfg           config.RedisConfig
	logger        *zap.Logger
	allowFallback bool
	redisOpts     []RedisOption
}

// IdempotencyStoreFactoryOption configures the factory
type IdempotencyStoreFactoryOption func(*IdempotencyStoreFactory)

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.logger = logger }
}

// WithInMemoryFallback sets whether an unreachable Redis degrades to the
// in-memory store instead of failing. Enabled by default.
func WithInMemoryFallback(allow bool) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.allowFallback = allow }
}

// WithRedisOptions passes options through to NewRedisIdempotencyStore
func WithRedisOptions(opts ...RedisOption) IdempotencyStoreFactoryOption {
	return func(f *IdempotencyStoreFactory) { f.redisOpts = append(f.redisOpts, opts...) }
}

// NewIdempotencyStoreFactory creates a factory for cfg
func NewIdempotencyStoreFactory(cfg config.RedisConfig, opts ...IdempotencyStoreFactoryOption) *IdempotencyStoreFactory {
	f := &IdempotencyStoreFactory{
		cfg:           cfg,
		logger:        zap.NewNop(),
		allowFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns the configured store. With Redis enabled but down it
// returns an in-memory store when fallback is allowed and an error otherwise.
func (f *IdempotencyStoreFactory) CreateStore() (shared.IdempotencyStore, error) {
	if !f.cfg.Enabled {
		f.logger.Info("Redis disabled, scan claims kept in memory")
		return NewInMemoryIdempotencyStore(), nil
	}

	store, err := NewRedisIdempotencyStore(f.cfg, f.redisOpts...)
	if err == nil {
		f.logger.Info("Scan claims kept in Redis", zap.String("addr", f.cfg.RedisAddr()))
		return store, nil
	}
	if !f.allowFallback {
		return nil, fmt.Errorf("redis required for scan idempotency: %w", err)
	}

	f.logger.Warn("Redis unavailable, scan claims kept in memory and not shared between instances",
		zap.String("addr", f.cfg.RedisAddr()),
		zap.Error(err),
	)
	return NewInMemoryIdempotencyStore(), nil
}
