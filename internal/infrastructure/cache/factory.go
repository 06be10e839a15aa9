package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/facultymis/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RowCacheFactory creates row caches based on configuration
type RowCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	sweepInterval         time.Duration
}

// RowCacheFactoryOption is a functional option for configuring the factory
type RowCacheFactoryOption func(*RowCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RowCacheFactoryOption {
	return func(f *RowCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an in-memory cache replaces an unreachable Redis.
// Default is true.
func WithInMemoryFallback(allow bool) RowCacheFactoryOption {
	return func(f *RowCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithSweepInterval sets how often the in-memory cache evicts expired entries
func WithSweepInterval(d time.Duration) RowCacheFactoryOption {
	return func(f *RowCacheFactory) {
		f.sweepInterval = d
	}
}

// NewRowCacheFactory creates a new factory
func NewRowCacheFactory(cfg config.RedisConfig, opts ...RowCacheFactoryOption) *RowCacheFactory {
	f := &RowCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
		sweepInterval:         time.Minute,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache tries Redis first and falls back to memory when allowed
func (f *RowCacheFactory) CreateCache(ctx context.Context) (RowCache, error) {
	c, err := NewRedisRowCache(ctx, f.redisConfig)
	if err == nil {
		f.logger.Info("using Redis row cache", zap.String("addr", f.redisConfig.Addr()))
		return c, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for row cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory row cache; instances will not share cached rows",
		zap.Error(err),
	)
	return NewInMemoryRowCache(f.sweepInterval), nil
}
