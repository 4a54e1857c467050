package config

import (
	"math"
	"strings"
	"testing"
)

const minimalYAML = `
engine:
  universe: [AAPL, MSFT]
`

func TestParseMinimalAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("environment = %q, want development", cfg.Environment)
	}
	if cfg.Engine.BenchmarkSymbol != "SPY" {
		t.Errorf("benchmark = %q, want SPY", cfg.Engine.BenchmarkSymbol)
	}
	if cfg.Engine.LookbackBars != 183 || cfg.Engine.Workers != 8 {
		t.Errorf("engine defaults = %d bars / %d workers, want 183 / 8",
			cfg.Engine.LookbackBars, cfg.Engine.Workers)
	}
	if cfg.Trading.BuyThreshold != 0.3 || cfg.Trading.SellThreshold != -0.3 {
		t.Errorf("thresholds = %v / %v, want 0.3 / -0.3",
			cfg.Trading.BuyThreshold, cfg.Trading.SellThreshold)
	}
	if cfg.Trading.MinAgreeingLayers != 2 {
		t.Errorf("min_agreeing_layers = %d, want 2", cfg.Trading.MinAgreeingLayers)
	}
	if cfg.Kafka.Topic != "stockpilot.actions" {
		t.Errorf("kafka topic = %q, want stockpilot.actions", cfg.Kafka.Topic)
	}
	if cfg.Cache.Backend != "redis" {
		t.Errorf("cache backend = %q, want redis", cfg.Cache.Backend)
	}
}

func TestParseFallsBackToBuiltinWeights(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cfg.Trading.SignalWeightsByRegime) != 5 {
		t.Fatalf("signal weight regimes = %d, want 5", len(cfg.Trading.SignalWeightsByRegime))
	}
	if len(cfg.Trading.CrossLayerWeightsByRegime) != 5 {
		t.Fatalf("cross-layer weight regimes = %d, want 5", len(cfg.Trading.CrossLayerWeightsByRegime))
	}
}

func TestParseKeepsExplicitWeights(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
trading:
  signal_weights_by_regime:
    LOW_VOLATILITY:
      sma: 0.5
      rsi: 0.5
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cfg.Trading.SignalWeightsByRegime) != 1 {
		t.Fatalf("explicit table replaced by defaults: %v", cfg.Trading.SignalWeightsByRegime)
	}
	if cfg.Trading.SignalWeightsByRegime["LOW_VOLATILITY"]["sma"] != 0.5 {
		t.Errorf("explicit weight lost")
	}
}

func TestDefaultWeightTablesSumToOne(t *testing.T) {
	for regime, weights := range DefaultSignalWeights() {
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("signal weights for %s sum to %v, want 1.0", regime, sum)
		}
	}
	for regime, weights := range DefaultCrossLayerWeights() {
		sum := 0.0
		for _, w := range weights {
			sum += w
		}
		if math.Abs(sum-1.0) > 1e-6 {
			t.Errorf("cross-layer weights for %s sum to %v, want 1.0", regime, sum)
		}
	}
}

func TestParseRejectsMissingUniverse(t *testing.T) {
	_, err := Parse([]byte(`environment: development`))
	if err == nil {
		t.Fatalf("expected validation error for an empty universe")
	}
}

func TestParseRejectsInvertedThresholds(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + `
trading:
  buy_threshold: 0.2
  sell_threshold: 0.3
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseRejectsInvertedRegimeOverride(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + `
trading:
  regime_thresholds:
    high_volatility:
      buy_threshold: 0.1
      sell_threshold: 0.2
`))
	if err == nil || !strings.Contains(err.Error(), "regime_thresholds") {
		t.Fatalf("err = %v, want regime_thresholds validation failure", err)
	}
}

func TestParseRejectsBadEnvironment(t *testing.T) {
	_, err := Parse([]byte(minimalYAML + "environment: prod\n"))
	if err == nil {
		t.Fatalf("expected validation error for unknown environment")
	}
}

func TestParseRejectsShortLookback(t *testing.T) {
	_, err := Parse([]byte(`
engine:
  universe: [AAPL]
  lookback_bars: 10
`))
	if err == nil {
		t.Fatalf("expected validation error for lookback below the indicator floor")
	}
}
