package indicators

import (
	"errors"
	"math"
	"testing"
	"time"

	"StockPilot/internal/domain/models"
)

func seriesFromCloses(t *testing.T, closes []float64) models.PriceSeries {
	t.Helper()
	return seriesFromClosesVolumes(t, closes, nil)
}

func seriesFromClosesVolumes(t *testing.T, closes, volumes []float64) models.PriceSeries {
	t.Helper()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	candles := make([]models.Candle, len(closes))
	for i, c := range closes {
		vol := 100.0
		if volumes != nil {
			vol = volumes[i]
		}
		candles[i] = models.Candle{
			Bucket: base.AddDate(0, 0, i),
			Symbol: "TEST",
			Open:   c,
			High:   c + 1,
			Low:    c - 1,
			Close:  c,
			Volume: vol,
		}
	}
	s, err := models.NewPriceSeries("TEST", candles)
	if err != nil {
		t.Fatalf("build series: %v", err)
	}
	return s
}

func linearCloses(n int, start, step float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	return out
}

func TestAllIndicatorsInsufficientHistory(t *testing.T) {
	short := seriesFromCloses(t, linearCloses(10, 100, 1))
	for _, ind := range Technical() {
		if _, err := ind.Compute(short); !errors.Is(err, models.ErrInsufficientHistory) {
			t.Errorf("%s: expected ErrInsufficientHistory on 10 bars, got %v", ind.Name, err)
		}
	}
}

func TestIndicatorMinBarsSufficient(t *testing.T) {
	for _, ind := range Technical() {
		s := seriesFromCloses(t, linearCloses(ind.MinBars, 100, 0.5))
		if _, err := ind.Compute(s); err != nil {
			t.Errorf("%s: MinBars=%d bars rejected: %v", ind.Name, ind.MinBars, err)
		}
	}
}

func TestSMACrossoverBullish(t *testing.T) {
	s := seriesFromCloses(t, linearCloses(60, 100, 1))
	r, err := SMACrossover(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Normalized != 0.8 {
		t.Fatalf("rising trend: normalized = %v, want 0.8", r.Normalized)
	}
	if r.Strength != 1 {
		t.Fatalf("wide separation: strength = %v, want 1", r.Strength)
	}
}

func TestSMACrossoverBearish(t *testing.T) {
	s := seriesFromCloses(t, linearCloses(60, 200, -1))
	r, err := SMACrossover(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Normalized != -0.8 {
		t.Fatalf("falling trend: normalized = %v, want -0.8", r.Normalized)
	}
}

func TestRSIOverbought(t *testing.T) {
	// Monotonic gains push RSI to 100
	s := seriesFromCloses(t, linearCloses(20, 100, 2))
	r, err := RSI(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Raw != 100 {
		t.Fatalf("raw RSI = %v, want 100", r.Raw)
	}
	if r.Normalized != -0.9 || r.Strength != 0.8 {
		t.Fatalf("overbought: got (%v, %v), want (-0.9, 0.8)", r.Normalized, r.Strength)
	}
}

func TestRSIOversold(t *testing.T) {
	s := seriesFromCloses(t, linearCloses(20, 200, -2))
	r, err := RSI(s)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Raw != 0 {
		t.Fatalf("raw RSI = %v, want 0", r.Raw)
	}
	if r.Normalized != 0.9 || r.Strength != 0.8 {
		t.Fatalf("oversold: got (%v, %v), want (0.9, 0.8)", r.Normalized, r.Strength)
	}
}

func TestMACDFollowsTrend(t *testing.T) {
	up, err := MACD(seriesFromCloses(t, linearCloses(60, 100, 1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if up.Normalized <= 0 {
		t.Fatalf("rising trend: normalized = %v, want > 0", up.Normalized)
	}
	down, err := MACD(seriesFromCloses(t, linearCloses(60, 200, -1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if down.Normalized >= 0 {
		t.Fatalf("falling trend: normalized = %v, want < 0", down.Normalized)
	}
}

func TestBollingerMeanReversion(t *testing.T) {
	// Flat history with a collapse on the final bar lands below the band
	closes := linearCloses(29, 100, 0)
	closes = append(closes, 90)
	r, err := Bollinger(seriesFromCloses(t, closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Normalized <= 0 {
		t.Fatalf("crash below band: normalized = %v, want > 0", r.Normalized)
	}

	closes = linearCloses(29, 100, 0)
	closes = append(closes, 110)
	r, err = Bollinger(seriesFromCloses(t, closes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Normalized >= 0 {
		t.Fatalf("spike above band: normalized = %v, want < 0", r.Normalized)
	}
}

func TestStochasticZones(t *testing.T) {
	// A steady linear rise parks %K in the overbought zone
	r, err := Stochastic(seriesFromCloses(t, linearCloses(30, 100, 1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Raw <= 80 {
		t.Fatalf("rising trend: %%K = %v, want > 80", r.Raw)
	}
	if r.Normalized >= 0 {
		t.Fatalf("overbought zone: normalized = %v, want < 0", r.Normalized)
	}

	r, err = Stochastic(seriesFromCloses(t, linearCloses(30, 200, -1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Raw >= 20 {
		t.Fatalf("falling trend: %%K = %v, want < 20", r.Raw)
	}
	if r.Normalized <= 0 {
		t.Fatalf("oversold zone: normalized = %v, want > 0", r.Normalized)
	}
}

func TestVolumeSpikeConfirmedByPrice(t *testing.T) {
	closes := linearCloses(20, 100, 0)
	closes = append(closes, 103) // +3%
	volumes := make([]float64, 21)
	for i := range volumes {
		volumes[i] = 100
	}
	volumes[20] = 300
	r, err := VolumeAnomaly(seriesFromClosesVolumes(t, closes, volumes))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Normalized != 0.7 || r.Strength != 0.8 {
		t.Fatalf("confirmed spike: got (%v, %v), want (0.7, 0.8)", r.Normalized, r.Strength)
	}
}

func TestVolumeFlatIsNeutral(t *testing.T) {
	r, err := VolumeAnomaly(seriesFromCloses(t, linearCloses(25, 100, 0.1)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Normalized != 0 {
		t.Fatalf("flat volume: normalized = %v, want 0", r.Normalized)
	}
}

func TestEMASeriesConverges(t *testing.T) {
	xs := make([]float64, 200)
	for i := range xs {
		xs[i] = 50
	}
	ema := emaSeries(xs, 12)
	if math.Abs(ema[len(ema)-1]-50) > 1e-9 {
		t.Fatalf("constant input EMA = %v, want 50", ema[len(ema)-1])
	}
}
