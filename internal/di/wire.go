//go:build wireinject
// +build wireinject

package di

import (
	"StockPilot/pkg/config"
	"StockPilot/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideCacheService,
		ProvideCacheCloser,
		ProvideKafkaProducer,

		// Repositories
		ProvidePriceStore,
		ProvideRecommendationCache,
		ProvidePortfolioProvider,
		ProvideActionPublisher,

		// Engine
		ProvideWeightResolver,
		ProvideSignalAggregator,
		ProvideRiskEngine,
		ProvideCoordinatorConfig,
		ProvideCoordinator,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
