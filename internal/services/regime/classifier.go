// Package regime classifies market volatility state and resolves the
// weighting profiles each state selects.
package regime

import (
	"math"

	"StockPilot/internal/domain/models"
)

// Classification thresholds. Fixed and deterministic: identical inputs
// always yield the identical label, with no hysteresis or smoothing.
// Callers that need smoothed inputs must smooth upstream.
const (
	HighVolThreshold = 30.0 // annualized volatility, percent
	LowVolThreshold  = 15.0
	StrongBreadth    = 0.8
	NeutralBreadth   = 0.6
	WeakBreadth      = 0.4
)

// Inputs are the benchmark-level measures a classification is made from.
type Inputs struct {
	Volatility float64 // annualized realized volatility, percent
	Breadth    float64 // fraction of benchmark constituents above trend, [0,1]
	Momentum   float64 // trailing benchmark return, signed
}

// Classify maps inputs to a regime. Monotonic in volatility: raising
// volatility never moves the label away from high-volatility.
func Classify(in Inputs) models.RegimeReading {
	reading := models.RegimeReading{
		Volatility: in.Volatility,
		Breadth:    in.Breadth,
		Momentum:   in.Momentum,
	}

	switch {
	case in.Volatility > HighVolThreshold:
		reading.Regime = models.RegimeHighVolatility
	case in.Volatility < LowVolThreshold && in.Breadth >= NeutralBreadth:
		reading.Regime = models.RegimeLowVolatility
	case in.Breadth >= StrongBreadth && in.Momentum > 0:
		reading.Regime = models.RegimeTrendingBullish
	case in.Breadth < WeakBreadth && in.Momentum < 0:
		reading.Regime = models.RegimeTrendingBearish
	default:
		reading.Regime = models.RegimeTransitional
	}
	return reading
}

const tradingDaysPerYear = 252

// AnnualizedVolatility computes realized volatility from daily closes as
// the sample standard deviation of simple returns, annualized and
// expressed in percent. Returns 0 when fewer than 3 closes are given.
func AnnualizedVolatility(closes []float64) float64 {
	if len(closes) < 3 {
		return 0
	}
	rets := make([]float64, 0, len(closes)-1)
	for i := 1; i < len(closes); i++ {
		if closes[i-1] == 0 {
			continue
		}
		rets = append(rets, closes[i]/closes[i-1]-1)
	}
	if len(rets) < 2 {
		return 0
	}
	mean := 0.0
	for _, r := range rets {
		mean += r
	}
	mean /= float64(len(rets))
	variance := 0.0
	for _, r := range rets {
		d := r - mean
		variance += d * d
	}
	variance /= float64(len(rets) - 1)
	return math.Sqrt(variance) * math.Sqrt(tradingDaysPerYear) * 100
}

// InputsFromSeries derives classification inputs from a benchmark series:
// realized volatility, breadth proxied by the share of the trailing 20
// closes above the 20-day average, and 20-day momentum.
func InputsFromSeries(s models.PriceSeries) Inputs {
	closes := s.Closes()
	in := Inputs{Volatility: AnnualizedVolatility(closes), Breadth: 0.5}
	if len(closes) < 21 {
		return in
	}
	end := len(closes) - 1
	sma := meanTail(closes, 20)
	above := 0
	for i := end - 19; i <= end; i++ {
		if closes[i] > sma {
			above++
		}
	}
	in.Breadth = float64(above) / 20
	if closes[end-20] != 0 {
		in.Momentum = closes[end]/closes[end-20] - 1
	}
	return in
}

func meanTail(xs []float64, window int) float64 {
	sum := 0.0
	for i := len(xs) - window; i < len(xs); i++ {
		sum += xs[i]
	}
	return sum / float64(window)
}
