package indicators

import (
	"math"

	"StockPilot/internal/domain/models"
)

// MACD scores the 12/26 moving average convergence-divergence against its
// 9-period signal line. Needs 35 bars. Fresh line crossovers dominate,
// zero-line crossings add a boost, otherwise histogram direction decides.
func MACD(s models.PriceSeries) (models.SignalReading, error) {
	closes := s.Closes()
	if len(closes) < 35 {
		return models.SignalReading{}, insufficient(NameMACD, len(closes), 35)
	}

	ema12 := emaSeries(closes, 12)
	ema26 := emaSeries(closes, 26)
	macd := make([]float64, len(closes))
	for i := range closes {
		macd[i] = ema12[i] - ema26[i]
	}
	signalLine := emaSeries(macd, 9)

	end := len(closes) - 1
	curMACD, prevMACD := macd[end], macd[end-1]
	curSig, prevSig := signalLine[end], signalLine[end-1]
	curHist := curMACD - curSig
	prevHist := prevMACD - prevSig

	var signal, strength float64
	switch {
	case curMACD > curSig && curHist > prevHist:
		signal, strength = 0.7, 0.6
	case curMACD > curSig:
		signal, strength = 0.3, 0.6
	case curMACD < curSig && curHist < prevHist:
		signal, strength = -0.7, 0.8
	case curMACD < curSig:
		signal, strength = -0.3, 0.6
	}

	// Crossovers override the histogram read.
	if curMACD > curSig && prevMACD <= prevSig {
		signal, strength = 0.9, 0.9
	} else if curMACD < curSig && prevMACD >= prevSig {
		signal, strength = -0.9, 0.9
	}

	// Zero-line crossings reinforce.
	if curMACD > 0 && prevMACD <= 0 {
		signal = math.Min(0.8, signal+0.2)
		strength = math.Min(1.0, strength+0.1)
	} else if curMACD < 0 && prevMACD >= 0 {
		signal = math.Max(-0.8, signal-0.2)
		strength = math.Min(1.0, strength+0.1)
	}

	return models.NewSignalReading(NameMACD, models.LayerTechnical, curHist, signal, strength), nil
}
