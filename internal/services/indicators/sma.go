package indicators

import (
	"math"

	"StockPilot/internal/domain/models"
)

// SMACrossover scores the price relative to its 20- and 50-day simple
// moving averages. Needs 50 bars. Price above both with the fast average
// leading reads strongly bullish; the mirror image strongly bearish;
// mixed orderings read weakly either way.
func SMACrossover(s models.PriceSeries) (models.SignalReading, error) {
	closes := s.Closes()
	if len(closes) < 50 {
		return models.SignalReading{}, insufficient(NameSMA, len(closes), 50)
	}

	end := len(closes) - 1
	price := closes[end]
	sma20 := meanAt(closes, 20, end)
	sma50 := meanAt(closes, 50, end)

	var signal float64
	switch {
	case price > sma20 && sma20 > sma50:
		signal = 0.8
	case price < sma20 && sma20 < sma50:
		signal = -0.8
	case price > sma20 && sma20 < sma50:
		signal = 0.3
	case price < sma20 && sma20 > sma50:
		signal = -0.3
	}

	// Separation of the averages decides how much weight the reading gets.
	separation := math.Abs(sma20-sma50) / sma50
	strength := math.Min(1.0, separation*20)

	return models.NewSignalReading(NameSMA, models.LayerTechnical, sma20-sma50, signal, strength), nil
}
