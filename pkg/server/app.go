package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	drepo "StockPilot/internal/domain/repository"
	"StockPilot/internal/usecase"
	pkgch "StockPilot/pkg/clickhouse"
	"StockPilot/pkg/config"
	applogger "StockPilot/pkg/logger"
	"StockPilot/pkg/metrics"
)

// App owns the run lifecycle: optional metrics endpoint, one coordinator
// run, graceful teardown of infrastructure clients.
type App struct {
	cfg         *config.Config
	coordinator *usecase.Coordinator
	chClient    *pkgch.Client
	publisher   drepo.ActionPublisher
	cacheCloser io.Closer
	log         *applogger.Logger
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	coordinator *usecase.Coordinator,
	chClient *pkgch.Client,
	publisher drepo.ActionPublisher,
	cacheCloser io.Closer,
	log *applogger.Logger,
) *App {
	return &App{
		cfg:         cfg,
		coordinator: coordinator,
		chClient:    chClient,
		publisher:   publisher,
		cacheCloser: cacheCloser,
		log:         log,
	}
}

// Run executes one analysis run over the configured universe and blocks
// until it completes or a shutdown signal arrives.
func (a *App) Run(opts usecase.RunOptions) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var metricsSrv *http.Server
	if a.cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(a.cfg.Metrics.Path, metrics.Handler())
		metricsSrv = &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Warn("metrics server error", applogger.Error(err))
			}
		}()
		a.log.Info("metrics listening",
			applogger.String("addr", a.cfg.Metrics.Addr),
			applogger.String("path", a.cfg.Metrics.Path),
		)
	}

	result, runErr := a.coordinator.Run(ctx, a.cfg.Engine.Universe, opts)
	if result != nil {
		for _, rec := range result.Recommendations {
			a.log.Info("recommendation",
				applogger.String("symbol", rec.Symbol),
				applogger.String("action", string(rec.Action)),
				applogger.Float64("score", rec.Score.Combined),
				applogger.Float64("confidence", rec.Confidence),
				applogger.String("rationale", rec.Rationale),
			)
		}
		for _, act := range result.Actions {
			if !act.IsTrade() {
				continue
			}
			a.log.Info("action",
				applogger.String("symbol", act.Symbol),
				applogger.String("kind", string(act.Kind)),
				applogger.String("reason", string(act.Reason)),
				applogger.Float64("qty_delta", act.QuantityDelta),
				applogger.Float64("price", act.Price),
			)
		}
		for sym, reason := range result.Failures {
			a.log.Warn("symbol skipped",
				applogger.String("symbol", sym),
				applogger.String("reason", reason),
			)
		}
	}
	if runErr != nil {
		a.log.Error("run failed", applogger.Error(runErr))
	}

	a.shutdown(metricsSrv)
	return runErr
}

// shutdown stops the metrics server and closes infrastructure clients.
func (a *App) shutdown(metricsSrv *http.Server) {
	if metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsSrv.Shutdown(ctx); err != nil {
			a.log.Warn("metrics shutdown error", applogger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.log.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.cacheCloser != nil {
		if err := a.cacheCloser.Close(); err != nil {
			a.log.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
}
