package usecase

import (
	"context"
	"sync"

	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/internal/domain"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/cache"
	"github.com/jfredysalazar-proyectos/giftcards-co2-sub000/pkg/logger"
)

// OrderSequencer owns the storefront position of every product. The working
// list moves optimistically with each gesture and falls back to the last
// ordering the gateway accepted when a submit fails.
type OrderSequencer struct {
	gateway domain.CatalogGateway
	cache   cache.CacheService

	mu        sync.Mutex
	working   []int64
	knownGood []int64
}

func NewOrderSequencer(gateway domain.CatalogGateway, cache cache.CacheService) *OrderSequencer {
	return &OrderSequencer{gateway: gateway, cache: cache}
}

// Load fetches the persisted ordering and records it as known-good.
func (s *OrderSequencer) Load(ctx context.Context) ([]int64, error) {
	ids, err := s.gateway.ListProductIDs(ctx)
	if err != nil {
		return nil, &domain.GatewayError{Op: domain.OpList, Entity: domain.EntityProduct, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.knownGood = clone(ids)
	s.working = clone(ids)
	return clone(ids), nil
}

// Current returns the working list.
func (s *OrderSequencer) Current() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.working)
}

// Move applies a drag-and-drop gesture to the working list without
// persisting it.
func (s *OrderSequencer) Move(from, to int) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved, err := domain.MoveID(s.working, from, to)
	if err != nil {
		return nil, err
	}
	s.working = moved
	return clone(moved), nil
}

// Submit persists ids as the full storefront ordering in a single bulk call.
// On failure the working list reverts to the last known-good ordering and
// the error is returned without retrying.
func (s *OrderSequencer) Submit(ctx context.Context, ids []int64) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	known, err := s.gateway.ListProductIDs(ctx)
	if err != nil {
		s.working = clone(s.knownGood)
		return nil, &domain.GatewayError{Op: domain.OpList, Entity: domain.EntityProduct, Err: err}
	}

	plan, err := domain.NewOrderingPlan(known, ids)
	if err != nil {
		s.working = clone(s.knownGood)
		return nil, err
	}

	if err := s.gateway.BulkSetDisplayOrder(ctx, plan); err != nil {
		s.working = clone(s.knownGood)
		logger.WithContext(ctx).Warn().Err(err).Int("products", len(plan)).Msg("Reorder rejected, reverted to last known-good ordering")
		return clone(s.knownGood), &domain.GatewayError{Op: domain.OpBulkOrder, Entity: domain.EntityProduct, Err: err}
	}

	s.knownGood = plan.IDs()
	s.working = plan.IDs()
	s.cache.DeletePrefix(productCachePrefix)
	logger.CacheInvalidated(ctx, productCachePrefix, "storefront reordered")
	logger.WithContext(ctx).Info().Int("products", len(plan)).Msg("Storefront order updated")
	return clone(s.knownGood), nil
}

func clone(ids []int64) []int64 {
	out := make([]int64, len(ids))
	copy(out, ids)
	return out
}
