package candle

import (
	"sort"

	"main/internal/model"
)

// MemoryStore keeps candle series in memory. It is the store used by
// backtests and tests; one instance belongs to one run.
type MemoryStore struct {
	series map[Key]*series
}

type series struct {
	candles     model.Candles
	gapTolerant bool
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{series: make(map[Key]*series)}
}

// AddSeries registers a candle series. Candles are sorted by timestamp;
// gapTolerant marks calendar-gapped instruments (market-closed ranges
// resolve to an empty sequence instead of an error).
func (s *MemoryStore) AddSeries(key Key, candles model.Candles, gapTolerant bool) {
	sorted := make(model.Candles, len(candles))
	copy(sorted, candles)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Timestamp < sorted[j].Timestamp })
	s.series[key] = &series{candles: sorted, gapTolerant: gapTolerant}
}

// Range implements Store.
func (s *MemoryStore) Range(exchange, symbol, timeframe string, start, end int64) (model.Candles, error) {
	key := Key{Exchange: exchange, Symbol: symbol, Timeframe: timeframe}
	sr, ok := s.series[key]
	if !ok {
		return nil, ErrCandleNotFound
	}

	cs := sr.candles
	lo := sort.Search(len(cs), func(i int) bool { return cs[i].Timestamp >= start })
	hi := sort.Search(len(cs), func(i int) bool { return cs[i].Timestamp >= end })
	out := cs[lo:hi]

	if len(out) == 0 {
		if sr.gapTolerant {
			return model.Candles{}, nil
		}
		return nil, ErrCandleNotFound
	}
	return out, nil
}
