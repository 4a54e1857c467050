package indicators

import "StockPilot/internal/domain/models"

const volumeWindow = 20

// VolumeAnomaly scores volume surges confirmed by price movement. Needs
// window+1 bars. A 2x volume spike with a >2% move reads 0.7 in the
// move's direction, a 1.5x spike with a >1% move reads 0.4; anything
// else is neutral.
func VolumeAnomaly(s models.PriceSeries) (models.SignalReading, error) {
	n := s.Len()
	if n < volumeWindow+1 {
		return models.SignalReading{}, insufficient(NameVolume, n, volumeWindow+1)
	}

	avg := 0.0
	for i := n - volumeWindow; i < n; i++ {
		avg += s.Candles[i].Volume
	}
	avg /= float64(volumeWindow)
	if avg <= 0 {
		return models.NewSignalReading(NameVolume, models.LayerTechnical, 0, 0, 0), nil
	}

	ratio := s.Candles[n-1].Volume / avg
	prevClose := s.Candles[n-2].Close
	priceChange := 0.0
	if prevClose != 0 {
		priceChange = (s.Candles[n-1].Close - prevClose) / prevClose
	}

	var signal, strength float64
	switch {
	case ratio > 2.0 && priceChange > 0.02:
		signal, strength = 0.7, 0.8
	case ratio > 2.0 && priceChange < -0.02:
		signal, strength = -0.7, 0.8
	case ratio > 1.5 && priceChange > 0.01:
		signal, strength = 0.4, 0.6
	case ratio > 1.5 && priceChange < -0.01:
		signal, strength = -0.4, 0.6
	default:
		signal, strength = 0, 0.3
	}

	return models.NewSignalReading(NameVolume, models.LayerTechnical, ratio, signal, strength), nil
}
