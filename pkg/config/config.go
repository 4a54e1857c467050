package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required,oneof=development staging production"`

	Logging struct {
		Level      string `yaml:"level" default:"info"`
		Format     string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout"`
		TimeFormat string `yaml:"time_format"`
	} `yaml:"logging"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Addr    string `yaml:"addr" default:":9090"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost" validate:"required"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"stockpilot"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`

	Cache struct {
		Backend string `yaml:"backend" default:"redis" validate:"oneof=redis memory"`
		TTL     time.Duration `yaml:"ttl" default:"48h"`
		Redis   struct {
			Host         string        `yaml:"host" default:"localhost"`
			Port         int           `yaml:"port" default:"6379"`
			Password     string        `yaml:"password"`
			DB           int           `yaml:"db"`
			Prefix       string        `yaml:"prefix" default:"stockpilot"`
			PoolSize     int           `yaml:"pool_size" default:"10"`
			MinIdleConns int           `yaml:"min_idle_conns" default:"5"`
			PoolTimeout  time.Duration `yaml:"pool_timeout" default:"30s"`
		} `yaml:"redis"`
	} `yaml:"cache"`

	Kafka struct {
		Brokers      []string `yaml:"brokers"`
		Topic        string   `yaml:"topic" default:"stockpilot.actions"`
		RequiredAcks int      `yaml:"required_acks" default:"-1"`
		Compression  string   `yaml:"compression" default:"gzip"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			BatchTimeout time.Duration `yaml:"batch_timeout" default:"1s"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`

	Engine struct {
		Universe        []string      `yaml:"universe" validate:"min=1"`
		BenchmarkSymbol string        `yaml:"benchmark_symbol" default:"SPY" validate:"required"`
		LookbackBars    int           `yaml:"lookback_bars" default:"183" validate:"min=51"`
		Workers         int           `yaml:"workers" default:"8" validate:"min=1"`
		Timeframe       string        `yaml:"timeframe" default:"1d"`
		LockTTL         time.Duration `yaml:"lock_ttl" default:"10m"`
	} `yaml:"engine"`

	Trading TradingConfig `yaml:"trading"`
}

// TradingConfig is the recognized tuning surface of the engine. Weight
// tables default to the built-in per-regime profiles when omitted.
type TradingConfig struct {
	BuyThreshold      float64 `yaml:"buy_threshold" default:"0.3" validate:"gt=0,lte=1"`
	SellThreshold     float64 `yaml:"sell_threshold" default:"-0.3" validate:"lt=0,gte=-1"`
	MinAgreeingLayers int     `yaml:"min_agreeing_layers" default:"2" validate:"min=1"`

	// Optional per-regime threshold overrides, keyed by regime label.
	RegimeThresholds map[string]ThresholdOverride `yaml:"regime_thresholds"`

	SignalWeightsByRegime     map[string]map[string]float64 `yaml:"signal_weights_by_regime"`
	CrossLayerWeightsByRegime map[string]map[string]float64 `yaml:"cross_layer_weights_by_regime"`

	PositionSizePercent  float64 `yaml:"position_size_percent" default:"0.02" validate:"gt=0,lte=1"`
	MaxConvictionPercent float64 `yaml:"max_conviction_percent" default:"0.05" validate:"gt=0,lte=1"`
	MaxPositions         int     `yaml:"max_positions" default:"10" validate:"min=1"`
	StopLossPercent      float64 `yaml:"stop_loss_percent" default:"0.08" validate:"gt=0,lt=1"`
	TakeProfitPercent    float64 `yaml:"take_profit_percent" default:"0.15" validate:"gt=0"`
	MinimumProfitPercent float64 `yaml:"minimum_profit_percent" default:"0.05" validate:"gte=0"`
	TrailingStopPercent  float64 `yaml:"trailing_stop_percent" default:"0.05" validate:"gte=0,lt=1"`
}

// ThresholdOverride replaces the base thresholds for one regime.
type ThresholdOverride struct {
	BuyThreshold      float64 `yaml:"buy_threshold"`
	SellThreshold     float64 `yaml:"sell_threshold"`
	MinAgreeingLayers int     `yaml:"min_agreeing_layers"`
}

// DefaultSignalWeights returns the built-in per-regime technical weight
// tables.
func DefaultSignalWeights() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"LOW_VOLATILITY": {
			"sma": 0.22, "rsi": 0.18, "macd": 0.18, "bollinger": 0.14, "stochastic": 0.15, "volume": 0.13,
		},
		"HIGH_VOLATILITY": {
			"rsi": 0.25, "macd": 0.22, "bollinger": 0.20, "stochastic": 0.18, "sma": 0.10, "volume": 0.05,
		},
		"TRENDING_BULLISH": {
			"sma": 0.25, "macd": 0.22, "rsi": 0.15, "bollinger": 0.13, "stochastic": 0.12, "volume": 0.13,
		},
		"TRENDING_BEARISH": {
			"sma": 0.25, "macd": 0.22, "rsi": 0.15, "bollinger": 0.13, "stochastic": 0.12, "volume": 0.13,
		},
		"TRANSITIONAL": {
			"sma": 0.18, "rsi": 0.18, "macd": 0.18, "bollinger": 0.16, "stochastic": 0.15, "volume": 0.15,
		},
	}
}

// DefaultCrossLayerWeights returns the built-in per-regime cross-layer
// weight tables.
func DefaultCrossLayerWeights() map[string]map[string]float64 {
	return map[string]map[string]float64{
		"LOW_VOLATILITY":   {"technical": 0.3, "fundamental": 0.5, "sentiment": 0.2},
		"HIGH_VOLATILITY":  {"technical": 0.5, "fundamental": 0.3, "sentiment": 0.2},
		"TRENDING_BULLISH": {"technical": 0.5, "fundamental": 0.3, "sentiment": 0.2},
		"TRENDING_BEARISH": {"technical": 0.5, "fundamental": 0.3, "sentiment": 0.2},
		"TRANSITIONAL":     {"technical": 0.4, "fundamental": 0.4, "sentiment": 0.2},
	}
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse builds a Config from raw YAML, applying defaults and validating.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Trading.SignalWeightsByRegime) == 0 {
		c.Trading.SignalWeightsByRegime = DefaultSignalWeights()
	}
	if len(c.Trading.CrossLayerWeightsByRegime) == 0 {
		c.Trading.CrossLayerWeightsByRegime = DefaultCrossLayerWeights()
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("UNIVERSE"); v != "" {
		c.Engine.Universe = strings.Split(v, ",")
	}
	if v := os.Getenv("BENCHMARK_SYMBOL"); v != "" {
		c.Engine.BenchmarkSymbol = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Cache.Redis.Host = v
	}

	return c, nil
}

// Validate checks structural validity. Domain invariants on the weight
// tables (sums, regime closure) are asserted separately by the engine
// wiring, which knows the regime and indicator domains.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return err
	}
	if c.Trading.BuyThreshold <= c.Trading.SellThreshold {
		return fmt.Errorf("trading: buy_threshold (%v) must exceed sell_threshold (%v)",
			c.Trading.BuyThreshold, c.Trading.SellThreshold)
	}
	for regime, o := range c.Trading.RegimeThresholds {
		if o.BuyThreshold != 0 && o.SellThreshold != 0 && o.BuyThreshold <= o.SellThreshold {
			return fmt.Errorf("trading: regime_thresholds[%s]: buy_threshold must exceed sell_threshold", regime)
		}
	}
	return nil
}
