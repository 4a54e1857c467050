package indicators

import "StockPilot/internal/domain/models"

const (
	bollingerPeriod = 20
	bollingerStdDev = 2.0
)

// Bollinger scores where price sits inside its 20-period, 2-sigma band.
// Needs period+5 bars. Fresh band breaches read strongest, positions in
// the outer fifths mean-revert weakly, middle-band crossings weakest. A
// band squeeze nudges the reading in the direction of the last move.
func Bollinger(s models.PriceSeries) (models.SignalReading, error) {
	closes := s.Closes()
	if len(closes) < bollingerPeriod+5 {
		return models.SignalReading{}, insufficient(NameBollinger, len(closes), bollingerPeriod+5)
	}

	end := len(closes) - 1
	sma := meanAt(closes, bollingerPeriod, end)
	sd := stdAt(closes, bollingerPeriod, end)
	upper := sma + bollingerStdDev*sd
	lower := sma - bollingerStdDev*sd

	prevSMA := meanAt(closes, bollingerPeriod, end-1)
	prevSD := stdAt(closes, bollingerPeriod, end-1)
	prevUpper := prevSMA + bollingerStdDev*prevSD
	prevLower := prevSMA - bollingerStdDev*prevSD

	price := closes[end]
	prevPrice := closes[end-1]

	bandWidth := 0.0
	if sma != 0 {
		bandWidth = (upper - lower) / sma
	}
	// Linear position of price within the band: 0 at lower, 1 at upper.
	position := 0.5
	if upper != lower {
		position = (price - lower) / (upper - lower)
	}

	var signal, strength float64
	switch {
	case price <= lower && prevPrice > prevLower:
		signal, strength = 0.8, 0.9
	case price <= lower:
		signal, strength = 0.6, 0.7
	case price >= upper && prevPrice < prevUpper:
		signal, strength = -0.8, 0.9
	case price >= upper:
		signal, strength = -0.6, 0.7
	case position < 0.2:
		signal, strength = 0.4, 0.6
	case position > 0.8:
		signal, strength = -0.4, 0.6
	case price > sma && prevPrice <= sma:
		signal, strength = 0.3, 0.5
	case price < sma && prevPrice >= sma:
		signal, strength = -0.3, 0.5
	}

	// Squeeze: a narrow band nudges toward the latest move.
	if bandWidth < 0.1 {
		if price > prevPrice {
			signal += 0.2
		} else if price < prevPrice {
			signal -= 0.2
		}
		strength = clamp(strength+0.1, 0, 1)
	}

	// Weak readings are discounted further when the band is wide.
	if signal > -0.5 && signal < 0.5 {
		volAdj := clamp(bandWidth*5, 0, 1)
		strength *= 1 - volAdj*0.3
	}

	return models.NewSignalReading(NameBollinger, models.LayerTechnical, position, signal, strength), nil
}
