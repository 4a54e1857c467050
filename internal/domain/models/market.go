package models

import (
	"fmt"
	"time"
)

// Candle represents one OHLCV bar.
type Candle struct {
	Bucket time.Time
	Symbol string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// PriceSeries is an ascending, duplicate-free sequence of candles for one
// symbol. Build via NewPriceSeries so the ordering invariant holds.
type PriceSeries struct {
	Symbol  string
	Candles []Candle
}

// NewPriceSeries validates ordering and returns a series. Candles must be
// ascending by bucket with no duplicate timestamps.
func NewPriceSeries(symbol string, candles []Candle) (PriceSeries, error) {
	for i := 1; i < len(candles); i++ {
		if !candles[i].Bucket.After(candles[i-1].Bucket) {
			return PriceSeries{}, fmt.Errorf("price series %s: candle %d not ascending (%s after %s)",
				symbol, i, candles[i].Bucket, candles[i-1].Bucket)
		}
	}
	return PriceSeries{Symbol: symbol, Candles: candles}, nil
}

// Len returns the number of candles.
func (s PriceSeries) Len() int { return len(s.Candles) }

// LastClose returns the most recent close, or 0 for an empty series.
func (s PriceSeries) LastClose() float64 {
	if len(s.Candles) == 0 {
		return 0
	}
	return s.Candles[len(s.Candles)-1].Close
}

// LastBucket returns the timestamp of the most recent candle.
func (s PriceSeries) LastBucket() time.Time {
	if len(s.Candles) == 0 {
		return time.Time{}
	}
	return s.Candles[len(s.Candles)-1].Bucket
}

// Closes returns the close column.
func (s PriceSeries) Closes() []float64 {
	out := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		out[i] = c.Close
	}
	return out
}
