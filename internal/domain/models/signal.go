package models

import (
	"fmt"
	"math"
	"strings"
)

// Layer is one analytical domain contributing a sub-score.
type Layer string

const (
	LayerTechnical   Layer = "technical"
	LayerFundamental Layer = "fundamental"
	LayerSentiment   Layer = "sentiment"
)

// Regime is the classified market state selecting a weighting profile.
// The set is closed; the weight resolver must cover every value.
type Regime string

const (
	RegimeLowVolatility   Regime = "low_volatility"
	RegimeHighVolatility  Regime = "high_volatility"
	RegimeTrendingBullish Regime = "trending_bullish"
	RegimeTrendingBearish Regime = "trending_bearish"
	RegimeTransitional    Regime = "transitional"
)

// AllRegimes lists the classifier's full output domain.
func AllRegimes() []Regime {
	return []Regime{
		RegimeLowVolatility,
		RegimeHighVolatility,
		RegimeTrendingBullish,
		RegimeTrendingBearish,
		RegimeTransitional,
	}
}

// ParseRegime maps a label to its Regime, accepting any casing so config
// files may use the conventional upper-case labels.
func ParseRegime(s string) (Regime, error) {
	reg := Regime(strings.ToLower(s))
	for _, r := range AllRegimes() {
		if reg == r {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRegime, s)
}

// ParseLayer maps a label to its Layer.
func ParseLayer(s string) (Layer, error) {
	switch Layer(strings.ToLower(s)) {
	case LayerTechnical:
		return LayerTechnical, nil
	case LayerFundamental:
		return LayerFundamental, nil
	case LayerSentiment:
		return LayerSentiment, nil
	}
	return "", fmt.Errorf("unknown layer %q", s)
}

// RegimeReading pairs the label with the volatility metric that produced it.
type RegimeReading struct {
	Regime     Regime
	Volatility float64 // annualized, percent
	Breadth    float64 // fraction of benchmark constituents above trend
	Momentum   float64 // trailing benchmark return
}

// SignalReading is one indicator's output for one symbol at one evaluation
// time. Normalized > 0 is bullish, < 0 bearish. Strength scales the
// reading's contribution during aggregation.
type SignalReading struct {
	Name       string
	Layer      Layer
	Raw        float64
	Normalized float64 // [-1, 1]
	Strength   float64 // [0, 1]
}

// NewSignalReading clamps and returns a reading.
func NewSignalReading(name string, layer Layer, raw, normalized, strength float64) SignalReading {
	return SignalReading{
		Name:       name,
		Layer:      layer,
		Raw:        raw,
		Normalized: clamp(normalized, -1, 1),
		Strength:   clamp(strength, 0, 1),
	}
}

// WeightTolerance is the permitted deviation of a profile's weight sum from 1.
const WeightTolerance = 1e-6

// WeightProfile maps signal name to weight for one layer. Weights over
// active signals must sum to 1 within WeightTolerance.
type WeightProfile struct {
	Layer   Layer
	Weights map[string]float64
}

// NewWeightProfile validates the sum invariant at construction.
func NewWeightProfile(layer Layer, weights map[string]float64) (WeightProfile, error) {
	sum := 0.0
	for name, w := range weights {
		if w < 0 || w > 1 {
			return WeightProfile{}, fmt.Errorf("%w: %s weight for %s is %v, want [0,1]",
				ErrInvalidWeightProfile, layer, name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return WeightProfile{}, fmt.Errorf("%w: %s weights sum to %v, want 1.0",
			ErrInvalidWeightProfile, layer, sum)
	}
	return WeightProfile{Layer: layer, Weights: weights}, nil
}

// CrossLayerWeights is the regime-selected blend across layers.
type CrossLayerWeights map[Layer]float64

// Validate enforces the sum-to-one invariant for cross-layer weights.
// Unlike within-layer weights these are never renormalized at use.
func (w CrossLayerWeights) Validate() error {
	sum := 0.0
	for layer, v := range w {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: cross-layer weight for %s is %v, want [0,1]",
				ErrInvalidWeightProfile, layer, v)
		}
		sum += v
	}
	if math.Abs(sum-1.0) > WeightTolerance {
		return fmt.Errorf("%w: cross-layer weights sum to %v, want 1.0",
			ErrInvalidWeightProfile, sum)
	}
	return nil
}

// AggregatedScore is the blended multi-layer score for one symbol.
type AggregatedScore struct {
	LayerScores  map[Layer]float64 // each in [-1, 1]
	Combined     float64           // [-1, 1]
	Confidence   float64           // [0, 1]
	Contributing []SignalReading   // ordered, surviving signals only
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
