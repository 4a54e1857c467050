package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"StockPilot/internal/domain/models"
	drepo "StockPilot/internal/domain/repository"
	"StockPilot/internal/services/indicators"
	"StockPilot/internal/services/regime"
	applogger "StockPilot/pkg/logger"
	"StockPilot/pkg/util"
)

// RunOptions gates a single analysis run.
type RunOptions struct {
	// ExecuteTrades forwards accepted actions to the execution
	// collaborator. Actions are computed and returned regardless.
	ExecuteTrades bool
	// ForceRecompute invalidates and replaces cached recommendations for
	// the run's evaluation day.
	ForceRecompute bool
}

// RunResult reports, per symbol, either a recommendation plus action or a
// specific failure reason. Nothing is silently omitted.
type RunResult struct {
	Day             string
	Regime          models.RegimeReading
	Recommendations []models.Recommendation
	Actions         []models.Action
	Failures        map[string]string
	CacheHits       int
	Published       int
}

// CoordinatorConfig carries the engine-level tunables the coordinator
// needs beyond its collaborators.
type CoordinatorConfig struct {
	BenchmarkSymbol  string
	LookbackBars     int
	Workers          int
	Timeframe        drepo.Timeframe
	LockTTL          time.Duration // day-lock lifetime; bounds how long a crashed run blocks retries
	Thresholds       Thresholds
	RegimeThresholds map[models.Regime]Thresholds // optional per-regime overrides
}

// Coordinator runs the per-symbol pipeline across a universe: parallel
// scoring from one portfolio snapshot, serialized action application, and
// day-keyed recommendation caching for idempotent re-runs.
type Coordinator struct {
	store     drepo.PriceStore
	portfolio drepo.PortfolioProvider
	cache     drepo.RecommendationCache
	publisher drepo.ActionPublisher
	metrics   drepo.Metrics
	agg       *SignalAggregator
	risk      *RiskEngine
	cfg       CoordinatorConfig
	log       *applogger.Logger

	now func() time.Time
}

func NewCoordinator(
	store drepo.PriceStore,
	portfolio drepo.PortfolioProvider,
	cache drepo.RecommendationCache,
	publisher drepo.ActionPublisher,
	metrics drepo.Metrics,
	agg *SignalAggregator,
	risk *RiskEngine,
	cfg CoordinatorConfig,
	log *applogger.Logger,
) *Coordinator {
	if cfg.Workers <= 0 {
		cfg.Workers = 8
	}
	if cfg.LookbackBars <= 0 {
		cfg.LookbackBars = 183
	}
	if cfg.Timeframe == "" {
		cfg.Timeframe = drepo.DefaultTimeframe()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 10 * time.Minute
	}
	return &Coordinator{
		store:     store,
		portfolio: portfolio,
		cache:     cache,
		publisher: publisher,
		metrics:   metrics,
		agg:       agg,
		risk:      risk,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
	}
}

// Evaluate computes the recommendation for one symbol. Pure given its
// inputs: identical series, snapshot and regime always produce the same
// recommendation, including timestamps, which derive from the series.
func (c *Coordinator) Evaluate(symbol string, series models.PriceSeries, reading models.RegimeReading, day string) (models.Recommendation, error) {
	readings := make([]models.SignalReading, 0, 6)
	for _, ind := range indicators.Technical() {
		r, err := ind.Compute(series)
		if err != nil {
			if errors.Is(err, models.ErrInsufficientHistory) {
				continue // excluded; remaining weights renormalize
			}
			return models.Recommendation{}, fmt.Errorf("evaluate %s: %w", symbol, err)
		}
		readings = append(readings, r)
	}
	if len(readings) == 0 {
		return models.Recommendation{}, fmt.Errorf("evaluate %s: %w: no indicator produced a reading", symbol, models.ErrInsufficientHistory)
	}

	score, err := c.agg.Aggregate(readings, reading.Regime)
	if err != nil {
		return models.Recommendation{}, fmt.Errorf("evaluate %s: %w", symbol, err)
	}

	action, rationale := Classify(score, c.thresholdsFor(reading.Regime))

	return models.Recommendation{
		Symbol:         symbol,
		EvaluationDate: day,
		Action:         action,
		Score:          score,
		Confidence:     score.Confidence,
		Regime:         reading.Regime,
		CurrentPrice:   series.LastClose(),
		Rationale:      rationale,
		CreatedAt:      series.LastBucket(),
	}, nil
}

// Run evaluates the whole universe for the current day.
func (c *Coordinator) Run(ctx context.Context, universe []string, opts RunOptions) (*RunResult, error) {
	start := c.now()
	day := util.DayKey(start)

	locked, err := c.cache.Lock(ctx, day, c.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("run lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("run for %s already in progress", day)
	}
	defer func() { _ = c.cache.Unlock(context.WithoutCancel(ctx), day) }()

	snapshot, err := c.portfolio.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("portfolio snapshot: %w", err)
	}

	reading, err := c.classifyRegime(ctx)
	if err != nil {
		return nil, err
	}
	c.log.Info("run started",
		applogger.String("day", day),
		applogger.String("regime", string(reading.Regime)),
		applogger.Int("universe", len(universe)),
		applogger.Bool("execute_trades", opts.ExecuteTrades),
	)

	result := &RunResult{Day: day, Regime: reading, Failures: make(map[string]string)}

	recs, hits, failures := c.scoreUniverse(ctx, universe, reading, day, opts.ForceRecompute)
	result.CacheHits = hits
	for sym, reason := range failures {
		result.Failures[sym] = reason
	}

	// Sizing is serialized in universe order against the running position
	// count, so one run can never over-allocate past max_positions no
	// matter how scoring was scheduled.
	openCount := len(snapshot.Positions)
	for _, sym := range universe {
		rec, ok := recs[sym]
		if !ok {
			continue
		}
		result.Recommendations = append(result.Recommendations, rec)
		c.metrics.RecordRecommendation(sym, string(rec.Action))

		price, havePrice := snapshot.PriceFor(sym)
		if !havePrice {
			// Scoring used history; sizing needs a live quote.
			price = 0
		}
		action, err := c.risk.Size(rec, snapshot, price)
		if err != nil {
			if errors.Is(err, models.ErrMissingPrice) {
				result.Failures[sym] = "missing current price"
				c.metrics.RecordError("missing_price")
			} else {
				result.Failures[sym] = err.Error()
				c.metrics.RecordError("sizing")
			}
			result.Actions = append(result.Actions, action)
			continue
		}

		switch action.Kind {
		case models.ActionKindOpen:
			if openCount >= c.risk.Params().MaxPositions {
				action = models.Action{Symbol: sym, Kind: models.ActionKindNone, Price: price}
			} else {
				openCount++
			}
		case models.ActionKindClose:
			openCount--
		}
		if havePrice {
			c.metrics.RecordLastPrice(sym, price)
		}
		c.metrics.RecordAction(sym, string(action.Kind), string(action.Reason))
		result.Actions = append(result.Actions, action)
	}

	if opts.ExecuteTrades {
		trades := make([]models.Action, 0, len(result.Actions))
		for _, a := range result.Actions {
			if a.IsTrade() {
				trades = append(trades, a)
			}
		}
		if len(trades) > 0 {
			if err := c.publisher.PublishBatch(ctx, trades); err != nil {
				c.metrics.RecordError("publish")
				return result, fmt.Errorf("publish actions: %w", err)
			}
			result.Published = len(trades)
		}
	}

	c.metrics.RecordRunDuration(time.Since(start).Seconds())
	c.log.Info("run finished",
		applogger.String("day", day),
		applogger.Int("recommendations", len(result.Recommendations)),
		applogger.Int("actions", len(result.Actions)),
		applogger.Int("failures", len(result.Failures)),
		applogger.Int("cache_hits", result.CacheHits),
		applogger.Int("published", result.Published),
	)
	return result, nil
}

// scoreUniverse evaluates symbols on a bounded worker pool. Failures are
// per-symbol values, never fatal to siblings; cancellation stops
// dispatching while already-finished recommendations stay cached.
func (c *Coordinator) scoreUniverse(ctx context.Context, universe []string, reading models.RegimeReading, day string, force bool) (map[string]models.Recommendation, int, map[string]string) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		recs     = make(map[string]models.Recommendation, len(universe))
		failures = make(map[string]string)
		hits     = 0
	)
	sem := make(chan struct{}, c.cfg.Workers)

	for _, sym := range universe {
		select {
		case <-ctx.Done():
			mu.Lock()
			failures[sym] = "run cancelled"
			mu.Unlock()
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			rec, cached, err := c.evaluateSymbol(ctx, symbol, reading, day, force)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures[symbol] = failureReason(err)
				return
			}
			if cached {
				hits++
			}
			recs[symbol] = rec
		}(sym)
	}
	wg.Wait()
	return recs, hits, failures
}

func (c *Coordinator) evaluateSymbol(ctx context.Context, symbol string, reading models.RegimeReading, day string, force bool) (models.Recommendation, bool, error) {
	if force {
		if err := c.cache.Invalidate(ctx, symbol, day); err != nil {
			c.log.Warn("cache invalidate failed", applogger.String("symbol", symbol), applogger.Error(err))
		}
	} else {
		rec, ok, err := c.cache.Get(ctx, symbol, day)
		if err != nil {
			c.log.Warn("cache read failed", applogger.String("symbol", symbol), applogger.Error(err))
		} else if ok {
			c.metrics.RecordCacheHit(true)
			return rec, true, nil
		}
		c.metrics.RecordCacheHit(false)
	}

	candles, err := c.store.GetLatestNCandles(ctx, symbol, c.cfg.LookbackBars, c.cfg.Timeframe)
	if err != nil {
		c.metrics.RecordError("price_store")
		return models.Recommendation{}, false, fmt.Errorf("fetch candles: %w", err)
	}
	series, err := models.NewPriceSeries(symbol, candles)
	if err != nil {
		return models.Recommendation{}, false, err
	}

	rec, err := c.Evaluate(symbol, series, reading, day)
	if err != nil {
		c.metrics.RecordError("evaluate")
		return models.Recommendation{}, false, err
	}

	if err := c.cache.Put(ctx, rec); err != nil {
		// The recommendation is still valid; only reuse is lost.
		c.log.Warn("cache write failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	return rec, false, nil
}

func (c *Coordinator) classifyRegime(ctx context.Context) (models.RegimeReading, error) {
	candles, err := c.store.GetLatestNCandles(ctx, c.cfg.BenchmarkSymbol, c.cfg.LookbackBars, c.cfg.Timeframe)
	if err != nil {
		return models.RegimeReading{}, fmt.Errorf("benchmark %s: %w", c.cfg.BenchmarkSymbol, err)
	}
	series, err := models.NewPriceSeries(c.cfg.BenchmarkSymbol, candles)
	if err != nil {
		return models.RegimeReading{}, err
	}
	return regime.Classify(regime.InputsFromSeries(series)), nil
}

func (c *Coordinator) thresholdsFor(reg models.Regime) Thresholds {
	if th, ok := c.cfg.RegimeThresholds[reg]; ok {
		return th
	}
	return c.cfg.Thresholds
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, models.ErrInsufficientHistory):
		return "insufficient history"
	case errors.Is(err, models.ErrMissingPrice):
		return "missing current price"
	default:
		return err.Error()
	}
}
