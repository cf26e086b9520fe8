package cache

import (
	"fmt"
	"time"

	appcheckout "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// IntentStoreFactory creates pending intent stores based on configuration
type IntentStoreFactory struct {
	redisConfig           config.RedisConfig
	ttl                   time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// IntentStoreFactoryOption is a functional option for configuring the factory
type IntentStoreFactoryOption func(*IntentStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) IntentStoreFactoryOption {
	return func(f *IntentStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) IntentStoreFactoryOption {
	return func(f *IntentStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewIntentStoreFactory creates a new factory
func NewIntentStoreFactory(cfg config.RedisConfig, ttl time.Duration, opts ...IntentStoreFactoryOption) *IntentStoreFactory {
	f := &IntentStoreFactory{
		redisConfig:           cfg,
		ttl:                   ttl,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based intent store
func (f *IntentStoreFactory) CreateRedisStore() (appcheckout.PendingIntentStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisIntentStore(redisCfg, f.ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis intent store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory intent store.
// WARNING: in-memory stores do not share state across process instances,
// so a buy-now intent stored on one instance is invisible to the others.
func (f *IntentStoreFactory) CreateInMemoryStore() appcheckout.PendingIntentStore {
	return NewInMemoryIntentStore(f.ttl)
}

// CreateStore tries to create a Redis store first and falls back to the
// in-memory store when Redis is unavailable and fallback is allowed.
func (f *IntentStoreFactory) CreateStore() (appcheckout.PendingIntentStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("Using Redis intent store",
			zap.String("host", f.redisConfig.Host),
			zap.Int("port", f.redisConfig.Port))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, err
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory intent store",
		zap.Error(err))
	return f.CreateInMemoryStore(), nil
}
