package indicators

import "StockPilot/internal/domain/models"

const (
	stochKPeriod = 14
	stochDPeriod = 3
)

// Stochastic scores the %K/%D oscillator. Needs k+d bars. Both lines in
// the oversold zone turning up read strongly bullish; the overbought
// mirror strongly bearish; mid-range bullish crossovers and raw momentum
// fill in the rest. Extreme %K values amplify the reading's strength.
func Stochastic(s models.PriceSeries) (models.SignalReading, error) {
	n := s.Len()
	if n < stochKPeriod+stochDPeriod {
		return models.SignalReading{}, insufficient(NameStochastic, n, stochKPeriod+stochDPeriod)
	}

	kAt := func(end int) float64 {
		lo, hi := s.Candles[end].Low, s.Candles[end].High
		for i := end - stochKPeriod + 1; i <= end; i++ {
			if s.Candles[i].Low < lo {
				lo = s.Candles[i].Low
			}
			if s.Candles[i].High > hi {
				hi = s.Candles[i].High
			}
		}
		r := hi - lo
		if r == 0 {
			r = 0.01
		}
		return (s.Candles[end].Close - lo) / r * 100
	}
	dAt := func(end int) float64 {
		sum := 0.0
		for i := end - stochDPeriod + 1; i <= end; i++ {
			sum += kAt(i)
		}
		return sum / float64(stochDPeriod)
	}

	end := n - 1
	curK, prevK := kAt(end), kAt(end-1)
	curD, prevD := dAt(end), dAt(end-1)

	var signal, strength float64
	switch {
	case curK < 20 && curD < 20:
		switch {
		case curK > prevK && curD > prevD:
			signal, strength = 0.9, 0.9
		case curK > curD:
			signal, strength = 0.7, 0.8
		default:
			signal, strength = 0.5, 0.6
		}
	case curK < 30 && curD < 30:
		if curK > prevK && curD > prevD {
			signal, strength = 0.6, 0.7
		} else {
			signal, strength = 0.3, 0.5
		}
	case curK > 80 && curD > 80:
		switch {
		case curK < prevK && curD < prevD:
			signal, strength = -0.9, 0.9
		case curK < curD:
			signal, strength = -0.7, 0.8
		default:
			signal, strength = -0.3, 0.5
		}
	case curK >= 30 && curK <= 70 && curK > curD && prevK <= prevD:
		signal, strength = 0.4, 0.6
	default:
		kMom := curK - prevK
		dMom := curD - prevD
		switch {
		case kMom > 2 && dMom > 1:
			signal, strength = 0.2, 0.3
		case kMom < -2 && dMom < -1:
			signal, strength = -0.2, 0.3
		default:
			signal, strength = 0, 0.1
		}
	}

	extremity := 1.0
	if curK < 10 || curK > 90 {
		extremity = 1.2
	} else if curK < 20 || curK > 80 {
		extremity = 1.1
	}
	strength = clamp(strength*extremity, 0, 1)

	return models.NewSignalReading(NameStochastic, models.LayerTechnical, curK, signal, strength), nil
}
