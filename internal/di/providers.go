package di

import (
	"context"
	"fmt"
	"io"
	"time"

	"StockPilot/internal/domain/models"
	"StockPilot/internal/domain/repository"
	internalrepo "StockPilot/internal/repository"
	"StockPilot/internal/services/indicators"
	"StockPilot/internal/services/regime"
	"StockPilot/internal/usecase"
	pkgcache "StockPilot/pkg/cache"
	pkgch "StockPilot/pkg/clickhouse"
	"StockPilot/pkg/config"
	pkgkafka "StockPilot/pkg/kafka"
	applogger "StockPilot/pkg/logger"
	"StockPilot/pkg/metrics"
	"StockPilot/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		TimeFormat: cfg.Logging.TimeFormat,
	})
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, []string{
		"CREATE DATABASE IF NOT EXISTS stockpilot",
		"CREATE TABLE IF NOT EXISTS stockpilot.candles_1d (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)",
		"CREATE TABLE IF NOT EXISTS stockpilot.candles_1h (bucket DateTime, symbol String, open Float64, high Float64, low Float64, close Float64, vol Float64) ENGINE=ReplacingMergeTree ORDER BY (symbol, bucket)",
	}); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideCacheService creates the cache backend from config.
func ProvideCacheService(cfg *config.Config) (pkgcache.Service, error) {
	if cfg.Cache.Backend == "memory" {
		return pkgcache.NewMemoryCache(), nil
	}
	rc, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		pkgcache.WithRedisPool(cfg.Cache.Redis.PoolSize, cfg.Cache.Redis.MinIdleConns, cfg.Cache.Redis.PoolTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("redis cache: %w", err)
	}
	return rc, nil
}

// ProvideCacheCloser exposes the cache backend's closer when it has one.
func ProvideCacheCloser(svc pkgcache.Service) io.Closer {
	if c, ok := svc.(io.Closer); ok {
		return c
	}
	return nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.BatchTimeout),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvidePriceStore creates the ClickHouse price store.
func ProvidePriceStore(chClient *pkgch.Client, log *applogger.Logger) repository.PriceStore {
	store := internalrepo.NewCHPriceStore(chClient)
	store.SetLogger(log)
	return store
}

// ProvideRecommendationCache creates the day-keyed recommendation store.
func ProvideRecommendationCache(svc pkgcache.Service, cfg *config.Config) repository.RecommendationCache {
	return internalrepo.NewCachedRecommendationStore(svc, cfg.Cache.TTL)
}

// ProvidePortfolioProvider creates the portfolio snapshot reader.
func ProvidePortfolioProvider(svc pkgcache.Service) repository.PortfolioProvider {
	return internalrepo.NewCachedPortfolioProvider(svc)
}

// ProvideActionPublisher creates the Kafka action publisher.
func ProvideActionPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.ActionPublisher {
	return internalrepo.NewKafkaActionPublisher(producer, cfg.Kafka.Topic)
}

// ProvideWeightResolver builds the validated per-regime weight resolver
// from config. Invalid sums, a regime without tables, or a weight keyed
// by an unknown signal name fail startup.
func ProvideWeightResolver(cfg *config.Config) (*regime.Resolver, error) {
	known := make(map[string]struct{})
	for _, name := range indicators.Names() {
		known[name] = struct{}{}
	}

	signal := make(map[models.Regime]map[string]float64, len(cfg.Trading.SignalWeightsByRegime))
	for label, weights := range cfg.Trading.SignalWeightsByRegime {
		reg, err := models.ParseRegime(label)
		if err != nil {
			return nil, fmt.Errorf("signal_weights_by_regime: %w", err)
		}
		for name := range weights {
			if _, ok := known[name]; !ok {
				return nil, fmt.Errorf("signal_weights_by_regime[%s]: unknown signal %q", label, name)
			}
		}
		signal[reg] = weights
	}

	cross := make(map[models.Regime]map[models.Layer]float64, len(cfg.Trading.CrossLayerWeightsByRegime))
	for label, weights := range cfg.Trading.CrossLayerWeightsByRegime {
		reg, err := models.ParseRegime(label)
		if err != nil {
			return nil, fmt.Errorf("cross_layer_weights_by_regime: %w", err)
		}
		byLayer := make(map[models.Layer]float64, len(weights))
		for layerLabel, w := range weights {
			layer, err := models.ParseLayer(layerLabel)
			if err != nil {
				return nil, fmt.Errorf("cross_layer_weights_by_regime[%s]: %w", label, err)
			}
			byLayer[layer] = w
		}
		cross[reg] = byLayer
	}

	return regime.NewResolver(signal, cross)
}

// ProvideSignalAggregator creates the signal aggregator.
func ProvideSignalAggregator(resolver *regime.Resolver) *usecase.SignalAggregator {
	return usecase.NewSignalAggregator(resolver)
}

// ProvideRiskEngine creates the risk engine from config.
func ProvideRiskEngine(cfg *config.Config) *usecase.RiskEngine {
	return usecase.NewRiskEngine(usecase.RiskParams{
		PositionSizePercent:  cfg.Trading.PositionSizePercent,
		MaxConvictionPercent: cfg.Trading.MaxConvictionPercent,
		MaxPositions:         cfg.Trading.MaxPositions,
		StopLossPercent:      cfg.Trading.StopLossPercent,
		TakeProfitPercent:    cfg.Trading.TakeProfitPercent,
		MinimumProfitPercent: cfg.Trading.MinimumProfitPercent,
		TrailingStopPercent:  cfg.Trading.TrailingStopPercent,
	})
}

// ProvideCoordinatorConfig translates config into engine tunables,
// resolving per-regime threshold overrides against the base values.
func ProvideCoordinatorConfig(cfg *config.Config) (usecase.CoordinatorConfig, error) {
	base := usecase.Thresholds{
		Buy:               cfg.Trading.BuyThreshold,
		Sell:              cfg.Trading.SellThreshold,
		MinAgreeingLayers: cfg.Trading.MinAgreeingLayers,
	}

	overrides := make(map[models.Regime]usecase.Thresholds, len(cfg.Trading.RegimeThresholds))
	for label, o := range cfg.Trading.RegimeThresholds {
		reg, err := models.ParseRegime(label)
		if err != nil {
			return usecase.CoordinatorConfig{}, fmt.Errorf("regime_thresholds: %w", err)
		}
		th := base
		if o.BuyThreshold != 0 {
			th.Buy = o.BuyThreshold
		}
		if o.SellThreshold != 0 {
			th.Sell = o.SellThreshold
		}
		if o.MinAgreeingLayers != 0 {
			th.MinAgreeingLayers = o.MinAgreeingLayers
		}
		overrides[reg] = th
	}

	return usecase.CoordinatorConfig{
		BenchmarkSymbol:  cfg.Engine.BenchmarkSymbol,
		LookbackBars:     cfg.Engine.LookbackBars,
		Workers:          cfg.Engine.Workers,
		Timeframe:        repository.NormalizeTimeframe(cfg.Engine.Timeframe),
		LockTTL:          cfg.Engine.LockTTL,
		Thresholds:       base,
		RegimeThresholds: overrides,
	}, nil
}

// ProvideCoordinator creates the run coordinator.
func ProvideCoordinator(
	store repository.PriceStore,
	portfolio repository.PortfolioProvider,
	cache repository.RecommendationCache,
	publisher repository.ActionPublisher,
	m repository.Metrics,
	agg *usecase.SignalAggregator,
	risk *usecase.RiskEngine,
	coordCfg usecase.CoordinatorConfig,
	log *applogger.Logger,
) *usecase.Coordinator {
	return usecase.NewCoordinator(store, portfolio, cache, publisher, m, agg, risk, coordCfg, log)
}

// ProvideApp creates the application.
func ProvideApp(
	cfg *config.Config,
	coordinator *usecase.Coordinator,
	chClient *pkgch.Client,
	publisher repository.ActionPublisher,
	cacheCloser io.Closer,
	log *applogger.Logger,
) *server.App {
	return server.New(cfg, coordinator, chClient, publisher, cacheCloser, log)
}
