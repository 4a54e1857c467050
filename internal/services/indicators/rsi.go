package indicators

import "StockPilot/internal/domain/models"

const rsiPeriod = 14

// RSI scores the 14-period relative strength index. Needs period+1 bars.
// Oversold (<30) maps to +0.9, overbought (>70) to -0.9, with softer
// readings in the 30-40 and 60-70 bands and neutral in between.
func RSI(s models.PriceSeries) (models.SignalReading, error) {
	closes := s.Closes()
	if len(closes) < rsiPeriod+1 {
		return models.SignalReading{}, insufficient(NameRSI, len(closes), rsiPeriod+1)
	}

	gains, losses := 0.0, 0.0
	for i := len(closes) - rsiPeriod; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	rsi := 100.0
	if losses > 0 {
		rs := gains / losses
		rsi = 100 - (100 / (1 + rs))
	}

	var signal, strength float64
	switch {
	case rsi < 30:
		signal, strength = 0.9, 0.8
	case rsi < 40:
		signal, strength = 0.5, 0.6
	case rsi > 70:
		signal, strength = -0.9, 0.8
	case rsi > 60:
		signal, strength = -0.5, 0.6
	default:
		signal, strength = 0, 0.3
	}

	return models.NewSignalReading(NameRSI, models.LayerTechnical, rsi, signal, strength), nil
}
