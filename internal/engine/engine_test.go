package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/candle"
	"main/internal/hyper"
	"main/internal/strategy"
)

type fakeClock struct {
	sleeps []time.Duration
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.sleeps = append(f.sleeps, d)
	return nil
}

func TestStrictMissingSeriesFailsRun(t *testing.T) {
	store := candle.NewMemoryStore()
	e, err := New(testConfig(10_000), store, []RouteSpec{{
		Exchange:  "sim",
		Symbol:    "BTC/USDT",
		Timeframe: "1m",
		Strategy:  &scripted{},
	}})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, candle.ErrCandleNotFound))
}

func TestGapTolerantEmptyRangeRuns(t *testing.T) {
	store := candle.NewMemoryStore()
	withData := &scripted{}
	noData := &scripted{}

	store.AddSeries(candle.Key{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m"},
		candlesFromOHLC(0, [4]float64{100, 101, 99, 100}, [4]float64{100, 101, 99, 100}), false)
	// The equity market is closed for the whole range.
	store.AddSeries(candle.Key{Exchange: "sim", Symbol: "AAPL", Timeframe: "1m"},
		candlesFromOHLC(10_000_000, [4]float64{10, 11, 9, 10}), true)

	cfg := testConfig(10_000)
	cfg.Finish = 5_000_000
	e, err := New(cfg, store, []RouteSpec{
		{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m", Strategy: withData},
		{Exchange: "sim", Symbol: "AAPL", Timeframe: "1m", Strategy: noData, GapTolerant: true},
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)

	// Two steps for the route with data, none for the gapped one.
	assert.Len(t, withData.calls, 8)
	assert.Empty(t, noData.calls)
}

func TestRangeFilter(t *testing.T) {
	store := candle.NewMemoryStore()
	strat := &scripted{}
	store.AddSeries(candle.Key{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m"},
		candlesFromOHLC(0,
			[4]float64{100, 101, 99, 100},
			[4]float64{100, 101, 99, 100},
			[4]float64{100, 101, 99, 100},
			[4]float64{100, 101, 99, 100},
		), false)

	cfg := testConfig(10_000)
	cfg.Start = 60_000
	cfg.Finish = 180_000
	e, err := New(cfg, store, []RouteSpec{
		{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m", Strategy: strat},
	})
	require.NoError(t, err)

	_, err = e.Run(context.Background())
	require.NoError(t, err)

	// Candles at 60s and 120s only: two flat steps of four hooks each.
	assert.Len(t, strat.calls, 8)
}

func TestPacingScalesTimestampDeltas(t *testing.T) {
	store := candle.NewMemoryStore()
	store.AddSeries(candle.Key{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m"},
		candlesFromOHLC(1_000_000,
			[4]float64{100, 101, 99, 100},
			[4]float64{100, 101, 99, 100},
			[4]float64{100, 101, 99, 100},
		), false)

	cfg := testConfig(10_000)
	cfg.Speed = 2
	e, err := New(cfg, store, []RouteSpec{
		{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m", Strategy: &scripted{}},
	})
	require.NoError(t, err)

	clock := &fakeClock{}
	_, err = e.WithClock(clock).Run(context.Background())
	require.NoError(t, err)

	// Three candles, two 60s deltas halved by speed 2.
	require.Len(t, clock.sleeps, 2)
	assert.Equal(t, 30*time.Second, clock.sleeps[0])
	assert.Equal(t, 30*time.Second, clock.sleeps[1])
}

func TestBacktestSpeedZeroNeverSleeps(t *testing.T) {
	store := candle.NewMemoryStore()
	store.AddSeries(candle.Key{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m"},
		candlesFromOHLC(0, [4]float64{100, 101, 99, 100}, [4]float64{100, 101, 99, 100}), false)

	e, err := New(testConfig(10_000), store, []RouteSpec{
		{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m", Strategy: &scripted{}},
	})
	require.NoError(t, err)

	clock := &fakeClock{}
	_, err = e.WithClock(clock).Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, clock.sleeps)
}

func TestRunHonorsContextAtBoundaries(t *testing.T) {
	store := candle.NewMemoryStore()
	store.AddSeries(candle.Key{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m"},
		candlesFromOHLC(0, [4]float64{100, 101, 99, 100}), false)

	e, err := New(testConfig(10_000), store, []RouteSpec{
		{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m", Strategy: &scripted{}},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestHyperResolutionPerRoute(t *testing.T) {
	store := candle.NewMemoryStore()
	store.AddSeries(candle.Key{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m"},
		candlesFromOHLC(0, [4]float64{100, 101, 99, 100}), false)

	strat := &hyperStrat{}
	cfg := testConfig(10_000)
	cfg.HPExplicit = map[string]any{"period": 25}
	e, err := New(cfg, store, []RouteSpec{
		{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m", Strategy: strat},
	})
	require.NoError(t, err)

	assert.Equal(t, 25, e.Routes()[0].Ctx().HP.Int("period"))
}

func TestUnknownExplicitFailsConstruction(t *testing.T) {
	store := candle.NewMemoryStore()
	cfg := testConfig(10_000)
	cfg.HPExplicit = map[string]any{"bogus": 1}
	_, err := New(cfg, store, []RouteSpec{
		{Exchange: "sim", Symbol: "BTC/USDT", Timeframe: "1m", Strategy: &hyperStrat{}},
	})
	require.Error(t, err)
}

type hyperStrat struct {
	strategy.Base
}

func (hyperStrat) Hyperparameters() []hyper.Spec {
	return []hyper.Spec{
		{Name: "period", Type: hyper.TypeInt, Min: 5, Max: 30, Step: 1, Default: 10},
	}
}
