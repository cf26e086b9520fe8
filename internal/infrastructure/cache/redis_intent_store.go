package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	appcheckout "github.com/storefront/backend/internal/application/checkout"
	"github.com/storefront/backend/internal/domain/identity"
)

// RedisIntentStore implements PendingIntentStore using Redis.
// This is suitable for distributed deployments where any instance may
// serve the checkout request that consumes the intent.
type RedisIntentStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisIntentStore creates a new Redis-based intent store
func NewRedisIntentStore(cfg RedisConfig, ttl time.Duration) (*RedisIntentStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisIntentStore{
		client:    client,
		keyPrefix: "checkout:intent:",
		ttl:       ttl,
	}, nil
}

// NewRedisIntentStoreWithClient creates a store with an existing Redis client.
// This is useful for testing or when sharing a client across components.
func NewRedisIntentStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisIntentStore {
	if keyPrefix == "" {
		keyPrefix = "checkout:intent:"
	}
	return &RedisIntentStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Remember stores the buy-now product for an identity, replacing any previous intent
func (s *RedisIntentStore) Remember(ctx context.Context, owner identity.Identity, productID uuid.UUID) error {
	key := s.keyPrefix + owner.Key()
	if err := s.client.Set(ctx, key, productID.String(), s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store buy-now intent: %w", err)
	}
	return nil
}

// Take returns and removes the stored intent. GETDEL makes read and
// delete atomic, so two concurrent checkouts cannot both consume it.
func (s *RedisIntentStore) Take(ctx context.Context, owner identity.Identity) (uuid.UUID, bool, error) {
	key := s.keyPrefix + owner.Key()

	value, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, false, nil
		}
		return uuid.Nil, false, fmt.Errorf("failed to take buy-now intent: %w", err)
	}

	productID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt buy-now intent %q: %w", value, err)
	}
	return productID, true, nil
}

// Clear drops the stored intent, if any
func (s *RedisIntentStore) Clear(ctx context.Context, owner identity.Identity) error {
	key := s.keyPrefix + owner.Key()
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear buy-now intent: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisIntentStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisIntentStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisIntentStore implements PendingIntentStore
var _ appcheckout.PendingIntentStore = (*RedisIntentStore)(nil)
