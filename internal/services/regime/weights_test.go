package regime

import (
	"errors"
	"testing"

	"StockPilot/internal/domain/models"
)

func fullSignalWeights() map[models.Regime]map[string]float64 {
	out := make(map[models.Regime]map[string]float64)
	for _, reg := range models.AllRegimes() {
		out[reg] = map[string]float64{
			"sma": 0.2, "rsi": 0.2, "macd": 0.2, "bollinger": 0.2, "stochastic": 0.1, "volume": 0.1,
		}
	}
	return out
}

func fullCrossWeights() map[models.Regime]map[models.Layer]float64 {
	out := make(map[models.Regime]map[models.Layer]float64)
	for _, reg := range models.AllRegimes() {
		out[reg] = map[models.Layer]float64{
			models.LayerTechnical:   0.5,
			models.LayerFundamental: 0.3,
			models.LayerSentiment:   0.2,
		}
	}
	return out
}

func TestNewResolverAcceptsFullTables(t *testing.T) {
	r, err := NewResolver(fullSignalWeights(), fullCrossWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, reg := range models.AllRegimes() {
		if _, err := r.SignalProfile(reg); err != nil {
			t.Errorf("SignalProfile(%s): %v", reg, err)
		}
		if _, err := r.CrossWeights(reg); err != nil {
			t.Errorf("CrossWeights(%s): %v", reg, err)
		}
	}
}

func TestNewResolverRequiresClosure(t *testing.T) {
	signal := fullSignalWeights()
	delete(signal, models.RegimeTransitional)
	_, err := NewResolver(signal, fullCrossWeights())
	if !errors.Is(err, models.ErrUnknownRegime) {
		t.Fatalf("expected ErrUnknownRegime for missing regime, got %v", err)
	}

	cross := fullCrossWeights()
	delete(cross, models.RegimeTrendingBearish)
	_, err = NewResolver(fullSignalWeights(), cross)
	if !errors.Is(err, models.ErrUnknownRegime) {
		t.Fatalf("expected ErrUnknownRegime for missing cross table, got %v", err)
	}
}

func TestNewResolverRejectsBadSum(t *testing.T) {
	signal := fullSignalWeights()
	signal[models.RegimeLowVolatility]["sma"] = 0.5 // sum now 1.3
	_, err := NewResolver(signal, fullCrossWeights())
	if !errors.Is(err, models.ErrInvalidWeightProfile) {
		t.Fatalf("expected ErrInvalidWeightProfile, got %v", err)
	}
}

func TestResolverUnknownRegimeLookup(t *testing.T) {
	r, err := NewResolver(fullSignalWeights(), fullCrossWeights())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := r.SignalProfile(models.Regime("sideways")); !errors.Is(err, models.ErrUnknownRegime) {
		t.Fatalf("expected ErrUnknownRegime, got %v", err)
	}
}
