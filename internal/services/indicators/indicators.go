// Package indicators holds the technical indicator library: pure functions
// mapping an OHLCV history to a normalized signal reading. No indicator
// touches the wall clock or any I/O; everything derives from the series.
package indicators

import (
	"fmt"
	"math"

	"StockPilot/internal/domain/models"
)

// Indicator pairs a named compute function with its minimum lookback.
type Indicator struct {
	Name    string
	MinBars int
	Compute func(models.PriceSeries) (models.SignalReading, error)
}

// Technical returns the technical-layer indicator set in evaluation order.
func Technical() []Indicator {
	return []Indicator{
		{Name: NameSMA, MinBars: 50, Compute: SMACrossover},
		{Name: NameRSI, MinBars: 15, Compute: RSI},
		{Name: NameMACD, MinBars: 35, Compute: MACD},
		{Name: NameBollinger, MinBars: 25, Compute: Bollinger},
		{Name: NameStochastic, MinBars: 17, Compute: Stochastic},
		{Name: NameVolume, MinBars: 21, Compute: VolumeAnomaly},
	}
}

// Names returns the signal names of the technical set. Weight tables may
// only reference these keys.
func Names() []string {
	inds := Technical()
	out := make([]string, len(inds))
	for i, ind := range inds {
		out[i] = ind.Name
	}
	return out
}

// Signal names. These are the keys weight profiles are configured against.
const (
	NameSMA        = "sma"
	NameRSI        = "rsi"
	NameMACD       = "macd"
	NameBollinger  = "bollinger"
	NameStochastic = "stochastic"
	NameVolume     = "volume"
)

func insufficient(name string, have, want int) error {
	return fmt.Errorf("%s: %w: have %d bars, need %d", name, models.ErrInsufficientHistory, have, want)
}

// mean over closes[end-window+1 .. end].
func meanAt(xs []float64, window, end int) float64 {
	sum := 0.0
	for i := end - window + 1; i <= end; i++ {
		sum += xs[i]
	}
	return sum / float64(window)
}

// sample standard deviation over xs[end-window+1 .. end].
func stdAt(xs []float64, window, end int) float64 {
	if window < 2 {
		return 0
	}
	m := meanAt(xs, window, end)
	v := 0.0
	for i := end - window + 1; i <= end; i++ {
		d := xs[i] - m
		v += d * d
	}
	return math.Sqrt(v / float64(window-1))
}

// emaSeries returns the exponential moving average of xs for the given
// span, seeded with the first value.
func emaSeries(xs []float64, span int) []float64 {
	out := make([]float64, len(xs))
	if len(xs) == 0 {
		return out
	}
	k := 2.0 / float64(span+1)
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = (xs[i]-out[i-1])*k + out[i-1]
	}
	return out
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
