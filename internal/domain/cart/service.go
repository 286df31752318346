// internal/domain/cart/service.go
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/pharmacy-backend/internal/config"
)

// Service hands out cart engines, one per owner. The first request
// for an owner rehydrates the cart from storage; after that the
// in-memory engine is the single authority and every mutation writes
// through. Carts are not synchronized across processes.
type Service struct {
	storage Storage
	policy  DeliveryPolicy
	logger  *logrus.Logger

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewService creates a cart service backed by Redis storage
func NewService(redisClient *redis.Client, cfg *config.Config, logger *logrus.Logger) *Service {
	storage := NewRedisStorage(redisClient, cfg.Cart.StorageTTL, logger)
	policy := DeliveryPolicy{
		FreeThreshold: cfg.Cart.FreeDeliveryThreshold,
		Fee:           cfg.Cart.DeliveryFee,
	}
	return NewServiceWithStorage(storage, policy, logger)
}

// NewServiceWithStorage creates a cart service over any Storage
// implementation
func NewServiceWithStorage(storage Storage, policy DeliveryPolicy, logger *logrus.Logger) *Service {
	return &Service{
		storage: storage,
		policy:  policy,
		logger:  logger,
		engines: make(map[string]*Engine),
	}
}

// Engine returns the cart engine for an owner, rehydrating it from
// storage on first access. A missing or corrupted stored payload
// yields an empty cart, never an error.
func (s *Service) Engine(ctx context.Context, owner string) (*Engine, error) {
	s.mu.Lock()
	if engine, ok := s.engines[owner]; ok {
		s.mu.Unlock()
		return engine, nil
	}
	s.mu.Unlock()

	items, err := s.storage.Load(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to open cart for %s: %w", owner, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another request may have rehydrated concurrently; keep the first
	if engine, ok := s.engines[owner]; ok {
		return engine, nil
	}

	engine := newEngine(owner, items, s.policy, s.storage, s.logger)
	s.engines[owner] = engine
	return engine, nil
}

// Policy returns the delivery-fee policy the service applies
func (s *Service) Policy() DeliveryPolicy {
	return s.policy
}
