package candle

import (
	"errors"
	"testing"

	"main/internal/model"
)

func minuteSeries(startTS int64, closes ...float64) model.Candles {
	out := make(model.Candles, len(closes))
	for i, c := range closes {
		out[i] = model.Candle{
			Timestamp: startTS + int64(i)*60_000,
			Open:      c,
			Close:     c,
			High:      c + 1,
			Low:       c - 1,
			Volume:    10,
		}
	}
	return out
}

func TestMemoryStoreRange(t *testing.T) {
	store := NewMemoryStore()
	key := Key{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m"}
	store.AddSeries(key, minuteSeries(0, 1, 2, 3, 4), false)

	got, err := store.Range("sim", "BTC/USDT", "1m", 60_000, 180_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("range length: got %d want 2", len(got))
	}
	if got[0].Close != 2 || got[1].Close != 3 {
		t.Fatalf("range window mismatch: got %v", got)
	}
}

func TestMemoryStoreSortsOnAdd(t *testing.T) {
	store := NewMemoryStore()
	key := Key{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m"}
	unsorted := model.Candles{
		{Timestamp: 120_000, Close: 3},
		{Timestamp: 0, Close: 1},
		{Timestamp: 60_000, Close: 2},
	}
	store.AddSeries(key, unsorted, false)

	got, err := store.Range("sim", "BTC/USDT", "1m", 0, 180_000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Timestamp <= got[i-1].Timestamp {
			t.Fatalf("series not ascending at %d: %v", i, got)
		}
	}
}

func TestStrictEmptyRangeIsError(t *testing.T) {
	store := NewMemoryStore()
	key := Key{Exchange: "sim", Symbol: "AAPL", Timeframe: "1m"}
	store.AddSeries(key, minuteSeries(0, 1, 2), false)

	_, err := store.Range("sim", "AAPL", "1m", 600_000, 900_000)
	if !errors.Is(err, ErrCandleNotFound) {
		t.Fatalf("strict empty range: got %v want ErrCandleNotFound", err)
	}

	_, err = store.Range("sim", "MISSING", "1m", 0, 900_000)
	if !errors.Is(err, ErrCandleNotFound) {
		t.Fatalf("unknown series: got %v want ErrCandleNotFound", err)
	}
}

func TestGapTolerantEmptyRangeIsEmpty(t *testing.T) {
	store := NewMemoryStore()
	key := Key{Exchange: "sim", Symbol: "AAPL", Timeframe: "1m"}
	store.AddSeries(key, minuteSeries(0, 1, 2), true)

	got, err := store.Range("sim", "AAPL", "1m", 600_000, 900_000)
	if err != nil {
		t.Fatalf("gap-tolerant empty range must not error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want empty slice, got %v", got)
	}
}

func TestAggregate(t *testing.T) {
	src := model.Candles{
		{Timestamp: 0, Open: 10, Close: 12, High: 13, Low: 9, Volume: 1},
		{Timestamp: 60_000, Open: 12, Close: 11, High: 14, Low: 10, Volume: 2},
		{Timestamp: 120_000, Open: 11, Close: 15, High: 16, Low: 11, Volume: 3},
		{Timestamp: 180_000, Open: 15, Close: 14, High: 15, Low: 13, Volume: 4},
		{Timestamp: 240_000, Open: 14, Close: 13, High: 14, Low: 12, Volume: 5},
	}

	out := Aggregate(src, 2)
	if len(out) != 2 {
		t.Fatalf("partial trailing group must be dropped: got %d candles", len(out))
	}

	first := out[0]
	if first.Timestamp != 0 || first.Open != 10 || first.Close != 11 ||
		first.High != 14 || first.Low != 9 || first.Volume != 3 {
		t.Fatalf("first aggregate mismatch: %+v", first)
	}

	second := out[1]
	if second.Timestamp != 120_000 || second.Open != 11 || second.Close != 14 ||
		second.High != 16 || second.Low != 11 || second.Volume != 7 {
		t.Fatalf("second aggregate mismatch: %+v", second)
	}
}

func TestAggregateIdentity(t *testing.T) {
	src := minuteSeries(0, 1, 2, 3)
	out := Aggregate(src, 1)
	if len(out) != len(src) {
		t.Fatalf("factor 1 must be identity: got %d candles", len(out))
	}
}

func TestAggregateTo(t *testing.T) {
	src := minuteSeries(0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	out, err := AggregateTo(src, "1m", "5m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("10 minutes into 5m: got %d candles want 2", len(out))
	}
	if out[0].Timestamp != 0 || out[1].Timestamp != 300_000 {
		t.Fatalf("timestamps mismatch: %v %v", out[0].Timestamp, out[1].Timestamp)
	}
	if out[0].Open != 1 || out[0].Close != 5 || out[0].Volume != 50 {
		t.Fatalf("first aggregate mismatch: %+v", out[0])
	}

	same, err := AggregateTo(src, "1m", "1m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(same) != len(src) {
		t.Fatalf("same timeframe must be identity: got %d candles", len(same))
	}

	if _, err := AggregateTo(src, "3m", "5m"); err == nil {
		t.Fatal("non-multiple target must error")
	}
	if _, err := AggregateTo(src, "1h", "30m"); err == nil {
		t.Fatal("downward aggregation must error")
	}
	if _, err := AggregateTo(src, "1m", "7m"); err == nil {
		t.Fatal("unsupported target timeframe must error")
	}
}

func TestTimeframeMillis(t *testing.T) {
	ms, err := TimeframeMillis("5m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms != 300_000 {
		t.Fatalf("5m: got %d want 300000", ms)
	}
	if _, err := TimeframeMillis("7m"); err == nil {
		t.Fatal("unsupported timeframe must error")
	}
}
