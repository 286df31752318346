// internal/domain/cart/storage.go
package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Storage round-trips a cart's line items to durable storage. It does
// no business validation; rehydrated data is trusted as previously
// validated.
type Storage interface {
	Load(ctx context.Context, owner string) ([]LineItem, error)
	Save(ctx context.Context, owner string, items []LineItem) error
	Delete(ctx context.Context, owner string) error
}

// RedisStorage persists carts as JSON blobs in Redis under a fixed
// per-owner key
type RedisStorage struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisStorage creates a Redis-backed cart storage
func NewRedisStorage(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisStorage {
	return &RedisStorage{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cartKey(owner string) string {
	return fmt.Sprintf("cart:owner:%s", owner)
}

// Load reads the stored cart for an owner. A missing key yields an
// empty cart. A payload that fails to parse is deleted and also yields
// an empty cart; corruption is never surfaced to the caller.
func (s *RedisStorage) Load(ctx context.Context, owner string) ([]LineItem, error) {
	key := cartKey(owner)

	data, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(data), &items); err != nil {
		s.logger.WithFields(logrus.Fields{
			"owner": owner,
			"error": err.Error(),
		}).Warn("Discarding corrupted cart payload")

		if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
			s.logger.WithField("owner", owner).WithError(delErr).Warn("Failed to delete corrupted cart payload")
		}
		return nil, nil
	}

	return items, nil
}

// Save writes the cart's line items for an owner
func (s *RedisStorage) Save(ctx context.Context, owner string, items []LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to serialize cart: %w", err)
	}

	if err := s.client.Set(ctx, cartKey(owner), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the stored cart for an owner
func (s *RedisStorage) Delete(ctx context.Context, owner string) error {
	return s.client.Del(ctx, cartKey(owner)).Err()
}
