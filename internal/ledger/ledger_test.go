package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
)

func buy(qty, price float64) model.Order {
	return model.Order{ID: "b", Side: enum.OrderSideBuy, Qty: qty, Price: price, Kind: enum.OrderKindMarket}
}

func sell(qty, price float64) model.Order {
	return model.Order{ID: "s", Side: enum.OrderSideSell, Qty: qty, Price: price, Kind: enum.OrderKindMarket}
}

func TestOpenThenIncreaseAveragesEntry(t *testing.T) {
	l := New("BTC/USDT", 0)

	ev, err := l.ApplyFill(buy(1, 100), 100, 1)
	require.NoError(t, err)
	assert.Equal(t, EventOpened, ev.Kind)

	ev, err = l.ApplyFill(buy(1, 110), 110, 2)
	require.NoError(t, err)
	assert.Equal(t, EventIncreased, ev.Kind)

	pos := l.Position()
	assert.Equal(t, enum.PositionLong, pos.Type)
	assert.Equal(t, 2.0, pos.Qty)
	assert.Equal(t, 105.0, pos.EntryPrice)
	assert.Equal(t, int64(1), pos.OpenedAt)
}

func TestRoundTripWithFees(t *testing.T) {
	const feeRate = 0.001
	l := New("BTC/USDT", feeRate)

	_, err := l.ApplyFill(buy(2, 100), 100, 1)
	require.NoError(t, err)

	ev, err := l.ApplyFill(sell(2, 110), 110, 2)
	require.NoError(t, err)
	require.Equal(t, EventClosed, ev.Kind)
	require.NotNil(t, ev.Trade)

	// Gross 2*(110-100)=20, fees 2*100*f + 2*110*f.
	wantFees := 2*100*feeRate + 2*110*feeRate
	assert.InDelta(t, 20-wantFees, ev.Trade.PnL, 1e-9)
	assert.InDelta(t, wantFees, ev.Trade.Fee, 1e-9)
	assert.Equal(t, 100.0, ev.Trade.EntryPrice)
	assert.Equal(t, 110.0, ev.Trade.ExitPrice)
	assert.Equal(t, 2.0, ev.Trade.Qty)
	assert.Equal(t, enum.PositionLong, ev.Trade.Type)

	pos := l.Position()
	assert.False(t, pos.IsOpen())
	assert.Equal(t, enum.PositionClosed, pos.Type)
	assert.Equal(t, 0.0, pos.Qty)
	assert.Len(t, l.Trades(), 1)
}

func TestShortRealizedSign(t *testing.T) {
	l := New("BTC/USDT", 0)

	_, err := l.ApplyFill(sell(1, 100), 100, 1)
	require.NoError(t, err)

	ev, err := l.ApplyFill(buy(1, 90), 90, 2)
	require.NoError(t, err)
	require.Equal(t, EventClosed, ev.Kind)
	assert.InDelta(t, 10.0, ev.Trade.PnL, 1e-9)
	assert.Equal(t, enum.PositionShort, ev.Trade.Type)
}

func TestPartialReduce(t *testing.T) {
	l := New("BTC/USDT", 0)

	_, err := l.ApplyFill(buy(3, 100), 100, 1)
	require.NoError(t, err)

	ev, err := l.ApplyFill(sell(1, 105), 105, 2)
	require.NoError(t, err)
	assert.Equal(t, EventReduced, ev.Kind)
	assert.InDelta(t, 5.0, ev.Realized, 1e-9)
	assert.Nil(t, ev.Trade)

	pos := l.Position()
	assert.Equal(t, 2.0, pos.Qty)
	assert.Equal(t, enum.PositionLong, pos.Type)
	assert.Equal(t, 100.0, pos.EntryPrice)
}

func TestFlipWithinFillRejected(t *testing.T) {
	l := New("BTC/USDT", 0)

	_, err := l.ApplyFill(buy(1, 100), 100, 1)
	require.NoError(t, err)

	_, err = l.ApplyFill(sell(3, 100), 100, 2)
	require.ErrorIs(t, err, ErrFlipWithinFill)

	// Position untouched by the rejected fill.
	pos := l.Position()
	assert.Equal(t, 1.0, pos.Qty)
	assert.Equal(t, enum.PositionLong, pos.Type)
}

func TestReduceToEpsilonClosesClean(t *testing.T) {
	l := New("BTC/USDT", 0)

	_, err := l.ApplyFill(buy(0.3, 100), 100, 1)
	require.NoError(t, err)
	// 0.3 - 0.1*3 leaves float dust below the epsilon.
	for i := 0; i < 2; i++ {
		ev, err := l.ApplyFill(sell(0.1, 100), 100, 2)
		require.NoError(t, err)
		require.Equal(t, EventReduced, ev.Kind)
	}
	ev, err := l.ApplyFill(sell(0.1, 100), 100, 3)
	require.NoError(t, err)
	assert.Equal(t, EventClosed, ev.Kind)
	assert.Equal(t, 0.0, l.Position().Qty)
}

func TestLiquidate(t *testing.T) {
	l := New("BTC/USDT", 0)

	_, err := l.ApplyFill(sell(2, 100), 100, 1)
	require.NoError(t, err)

	ev, err := l.Liquidate(95, 2)
	require.NoError(t, err)
	require.Equal(t, EventClosed, ev.Kind)
	assert.Equal(t, enum.OrderSideBuy, ev.Order.Side)
	assert.InDelta(t, 10.0, ev.Trade.PnL, 1e-9)

	// Flat ledgers liquidate to a no-op.
	ev, err = l.Liquidate(95, 3)
	require.NoError(t, err)
	assert.Equal(t, EventNone, ev.Kind)
	assert.Len(t, l.Trades(), 1)
}

func TestMarkPrice(t *testing.T) {
	l := New("BTC/USDT", 0)

	_, err := l.ApplyFill(buy(2, 100), 100, 1)
	require.NoError(t, err)

	l.MarkPrice(104)
	assert.InDelta(t, 8.0, l.Position().UnrealizedPnL, 1e-9)

	l.MarkPrice(97)
	assert.InDelta(t, -6.0, l.Position().UnrealizedPnL, 1e-9)
}

func TestFeesReduceRealizedPnL(t *testing.T) {
	l := New("BTC/USDT", 0.001)

	_, err := l.ApplyFill(buy(1, 100), 100, 1)
	require.NoError(t, err)
	assert.InDelta(t, -0.1, l.Position().RealizedPnL, 1e-9)
}

func TestInvalidFill(t *testing.T) {
	l := New("BTC/USDT", 0)
	if _, err := l.ApplyFill(buy(0, 100), 100, 1); err == nil {
		t.Fatal("zero quantity fill must be rejected")
	}
	if _, err := l.ApplyFill(buy(1, 100), 0, 1); err == nil {
		t.Fatal("non-positive price fill must be rejected")
	}
}
