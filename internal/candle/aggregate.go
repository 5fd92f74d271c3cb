package candle

import (
	"fmt"

	"main/internal/model"
)

// AggregateTo compresses a series recorded at the from timeframe into
// the to timeframe. The target interval must be a whole multiple of
// the source interval.
func AggregateTo(candles model.Candles, from, to string) (model.Candles, error) {
	src, err := TimeframeMillis(from)
	if err != nil {
		return nil, err
	}
	dst, err := TimeframeMillis(to)
	if err != nil {
		return nil, err
	}
	if dst%src != 0 {
		return nil, fmt.Errorf("cannot aggregate %s candles into %s", from, to)
	}
	return Aggregate(candles, int(dst/src)), nil
}

// Aggregate compresses a series into a larger timeframe. The factor is
// the number of source candles per output candle. Partial trailing
// groups are dropped so every output candle is complete.
func Aggregate(candles model.Candles, factor int) model.Candles {
	if factor <= 1 || len(candles) < factor {
		if factor <= 1 {
			return candles
		}
		return model.Candles{}
	}

	out := make(model.Candles, 0, len(candles)/factor)
	for i := 0; i+factor <= len(candles); i += factor {
		group := candles[i : i+factor]
		agg := model.Candle{
			Timestamp: group[0].Timestamp,
			Open:      group[0].Open,
			Close:     group[len(group)-1].Close,
			High:      group[0].High,
			Low:       group[0].Low,
		}
		for _, c := range group {
			if c.High > agg.High {
				agg.High = c.High
			}
			if c.Low < agg.Low {
				agg.Low = c.Low
			}
			agg.Volume += c.Volume
		}
		out = append(out, agg)
	}
	return out
}
