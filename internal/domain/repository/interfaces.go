package repository

import (
	"context"
	"time"

	"StockPilot/internal/domain/models"
)

// PriceStore provides read-only access to OHLCV history.
type PriceStore interface {
	GetCandles(ctx context.Context, symbol string, from, to time.Time, tf Timeframe) ([]models.Candle, error)
	GetLatestNCandles(ctx context.Context, symbol string, n int, tf Timeframe) ([]models.Candle, error)
}

// PortfolioProvider supplies the portfolio snapshot taken at run start.
type PortfolioProvider interface {
	Snapshot(ctx context.Context) (models.PortfolioState, error)
}

// RecommendationCache stores recommendations keyed by (symbol, day) so a
// second run on the same day reuses rather than recomputes. Lock guards a
// whole day's run against a concurrent duplicate.
type RecommendationCache interface {
	Get(ctx context.Context, symbol, day string) (models.Recommendation, bool, error)
	Put(ctx context.Context, rec models.Recommendation) error
	Invalidate(ctx context.Context, symbol, day string) error
	Lock(ctx context.Context, day string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, day string) error
}

// ActionPublisher forwards accepted actions to the execution collaborator.
type ActionPublisher interface {
	Publish(ctx context.Context, a models.Action) error
	PublishBatch(ctx context.Context, actions []models.Action) error
	Close() error
}

// Metrics records engine observability counters.
type Metrics interface {
	RecordRecommendation(symbol string, action string)
	RecordAction(symbol string, kind, reason string)
	RecordError(kind string)
	RecordCacheHit(hit bool)
	RecordRunDuration(seconds float64)
	RecordLastPrice(symbol string, price float64)
}
