package model

import "time"

// Candle is one fixed-interval OHLCV record.
//
// The array form is a wire contract shared with the indicator library:
// timestamp, open, close, high, low, volume. Close precedes high and low.
// Any change to this order breaks every consumer of CandleFromArray.
type Candle struct {
	Timestamp int64
	Open      float64
	Close     float64
	High      float64
	Low       float64
	Volume    float64
}

// Array returns the candle in contract field order.
func (c Candle) Array() [6]float64 {
	return [6]float64{float64(c.Timestamp), c.Open, c.Close, c.High, c.Low, c.Volume}
}

// CandleFromArray rebuilds a candle from contract field order.
func CandleFromArray(a [6]float64) Candle {
	return Candle{
		Timestamp: int64(a[0]),
		Open:      a[1],
		Close:     a[2],
		High:      a[3],
		Low:       a[4],
		Volume:    a[5],
	}
}

// Time returns the candle open time.
func (c Candle) Time() time.Time {
	return time.UnixMilli(c.Timestamp).UTC()
}

// Candles is an ascending, gap-aware candle series.
type Candles []Candle

// Closes extracts the close column.
func (cs Candles) Closes() []float64 {
	out := make([]float64, len(cs))
	for i, c := range cs {
		out[i] = c.Close
	}
	return out
}

// Last returns the candle n steps back from the end.
func (cs Candles) Last(n int) Candle {
	return cs[len(cs)-1-n]
}
