package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"StockPilot/internal/domain/models"
	pkgcache "StockPilot/pkg/cache"
)

// Recommendations stay reusable for the rest of the trading day plus a
// grace period, then expire on their own.
const defaultRecommendationTTL = 48 * time.Hour

// CachedRecommendationStore implements RecommendationCache on top of the
// cache service. Keys are day-scoped so re-runs on the same day are
// idempotent and a new day naturally starts cold.
type CachedRecommendationStore struct {
	cache pkgcache.Service
	ttl   time.Duration
}

func NewCachedRecommendationStore(cache pkgcache.Service, ttl time.Duration) *CachedRecommendationStore {
	if ttl <= 0 {
		ttl = defaultRecommendationTTL
	}
	return &CachedRecommendationStore{cache: cache, ttl: ttl}
}

func (s *CachedRecommendationStore) Get(ctx context.Context, symbol, day string) (models.Recommendation, bool, error) {
	var rec models.Recommendation
	err := s.cache.Get(ctx, recKey(symbol, day), &rec)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return models.Recommendation{}, false, nil
		}
		return models.Recommendation{}, false, fmt.Errorf("recommendation get: %w", err)
	}
	return rec, true, nil
}

func (s *CachedRecommendationStore) Put(ctx context.Context, rec models.Recommendation) error {
	if err := s.cache.Set(ctx, recKey(rec.Symbol, rec.EvaluationDate), rec, s.ttl); err != nil {
		return fmt.Errorf("recommendation put: %w", err)
	}
	return nil
}

func (s *CachedRecommendationStore) Invalidate(ctx context.Context, symbol, day string) error {
	if err := s.cache.Delete(ctx, recKey(symbol, day)); err != nil {
		return fmt.Errorf("recommendation invalidate: %w", err)
	}
	return nil
}

func (s *CachedRecommendationStore) Lock(ctx context.Context, day string, ttl time.Duration) (bool, error) {
	ok, err := s.cache.TryLock(ctx, lockKey(day), ttl)
	if err != nil {
		return false, fmt.Errorf("run lock: %w", err)
	}
	return ok, nil
}

func (s *CachedRecommendationStore) Unlock(ctx context.Context, day string) error {
	if err := s.cache.Unlock(ctx, lockKey(day)); err != nil {
		return fmt.Errorf("run unlock: %w", err)
	}
	return nil
}

func recKey(symbol, day string) string {
	return fmt.Sprintf("rec:%s:%s", day, symbol)
}

func lockKey(day string) string {
	return fmt.Sprintf("runlock:%s", day)
}
