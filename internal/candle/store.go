// Package candle supplies ordered, gap-aware OHLCV series per
// (exchange, symbol, timeframe) key.
package candle

import (
	"errors"
	"fmt"

	"main/internal/model"
)

// ErrCandleNotFound reports an empty range on a strict-validation
// instrument. Gap-tolerant instruments never return it.
var ErrCandleNotFound = errors.New("no candles for requested range")

// Store is the read side of the candle supply.
type Store interface {
	// Range returns candles with Timestamp in [start, end), ascending.
	// For strict instruments an empty result is ErrCandleNotFound; for
	// gap-tolerant instruments it is an empty slice.
	Range(exchange, symbol, timeframe string, start, end int64) (model.Candles, error)
}

// Key identifies one candle series.
type Key struct {
	Exchange  string
	Symbol    string
	Timeframe string
}

func (k Key) String() string {
	return k.Exchange + ":" + k.Symbol + ":" + k.Timeframe
}

// TimeframeMillis converts a timeframe label to its candle interval in
// milliseconds.
func TimeframeMillis(timeframe string) (int64, error) {
	const minute = 60 * 1000
	switch timeframe {
	case "1m":
		return minute, nil
	case "3m":
		return 3 * minute, nil
	case "5m":
		return 5 * minute, nil
	case "15m":
		return 15 * minute, nil
	case "30m":
		return 30 * minute, nil
	case "1h":
		return 60 * minute, nil
	case "4h":
		return 240 * minute, nil
	case "1d":
		return 1440 * minute, nil
	default:
		return 0, fmt.Errorf("unsupported timeframe %q", timeframe)
	}
}
