package models

import (
	"errors"
	"testing"
)

func TestNewWeightProfileRejectsBadSum(t *testing.T) {
	_, err := NewWeightProfile(LayerTechnical, map[string]float64{"sma": 0.5, "rsi": 0.4})
	if !errors.Is(err, ErrInvalidWeightProfile) {
		t.Fatalf("expected ErrInvalidWeightProfile, got %v", err)
	}
}

func TestNewWeightProfileToleratesEpsilon(t *testing.T) {
	_, err := NewWeightProfile(LayerTechnical, map[string]float64{"sma": 0.5, "rsi": 0.5 + 1e-9})
	if err != nil {
		t.Fatalf("sum within tolerance rejected: %v", err)
	}
}

func TestNewWeightProfileRejectsNegativeWeight(t *testing.T) {
	_, err := NewWeightProfile(LayerTechnical, map[string]float64{"sma": -0.2, "rsi": 1.2})
	if !errors.Is(err, ErrInvalidWeightProfile) {
		t.Fatalf("expected ErrInvalidWeightProfile, got %v", err)
	}
}

func TestCrossLayerWeightsValidate(t *testing.T) {
	ok := CrossLayerWeights{LayerTechnical: 0.5, LayerFundamental: 0.3, LayerSentiment: 0.2}
	if err := ok.Validate(); err != nil {
		t.Fatalf("valid weights rejected: %v", err)
	}
	bad := CrossLayerWeights{LayerTechnical: 0.5, LayerFundamental: 0.3}
	if err := bad.Validate(); !errors.Is(err, ErrInvalidWeightProfile) {
		t.Fatalf("expected ErrInvalidWeightProfile, got %v", err)
	}
}

func TestParseRegime(t *testing.T) {
	for _, s := range []string{"HIGH_VOLATILITY", "high_volatility", "High_Volatility"} {
		reg, err := ParseRegime(s)
		if err != nil {
			t.Fatalf("ParseRegime(%q): %v", s, err)
		}
		if reg != RegimeHighVolatility {
			t.Fatalf("ParseRegime(%q) = %s", s, reg)
		}
	}
	if _, err := ParseRegime("sideways"); !errors.Is(err, ErrUnknownRegime) {
		t.Fatalf("expected ErrUnknownRegime, got %v", err)
	}
}

func TestNewSignalReadingClamps(t *testing.T) {
	r := NewSignalReading("sma", LayerTechnical, 0, 1.4, 1.7)
	if r.Normalized != 1 || r.Strength != 1 {
		t.Fatalf("expected clamped reading, got %+v", r)
	}
}
