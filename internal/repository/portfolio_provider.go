package repository

import (
	"context"
	"errors"
	"fmt"

	"StockPilot/internal/domain/models"
	pkgcache "StockPilot/pkg/cache"
)

const portfolioStateKey = "portfolio:state"

// CachedPortfolioProvider reads the portfolio snapshot the execution
// connector maintains in the shared cache. The engine only ever reads it;
// position lifecycle stays with the connector.
type CachedPortfolioProvider struct {
	cache pkgcache.Service
}

func NewCachedPortfolioProvider(cache pkgcache.Service) *CachedPortfolioProvider {
	return &CachedPortfolioProvider{cache: cache}
}

func (p *CachedPortfolioProvider) Snapshot(ctx context.Context) (models.PortfolioState, error) {
	var state models.PortfolioState
	err := p.cache.Get(ctx, portfolioStateKey, &state)
	if err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			// No connector state yet. An empty book is a valid snapshot.
			return models.PortfolioState{
				Positions: map[string]models.Position{},
				Prices:    map[string]float64{},
			}, nil
		}
		return models.PortfolioState{}, fmt.Errorf("portfolio snapshot: %w", err)
	}
	if state.Positions == nil {
		state.Positions = map[string]models.Position{}
	}
	if state.Prices == nil {
		state.Prices = map[string]float64{}
	}
	return state, nil
}

// StaticPortfolioProvider returns a fixed snapshot. Used for dry runs and
// tests where no execution connector is attached.
type StaticPortfolioProvider struct {
	State models.PortfolioState
}

func (p *StaticPortfolioProvider) Snapshot(context.Context) (models.PortfolioState, error) {
	state := p.State
	if state.Positions == nil {
		state.Positions = map[string]models.Position{}
	}
	if state.Prices == nil {
		state.Prices = map[string]float64{}
	}
	return state, nil
}
