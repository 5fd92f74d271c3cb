package strategy

import (
	"testing"

	"main/internal/model"
	"main/internal/model/enum"
)

type fakeBroker struct {
	pos        model.Position
	submits    []enum.OrderSide
	liquidated int
	feeRate    float64
	lotSize    float64
}

func (b *fakeBroker) Submit(side enum.OrderSide, qty, price float64) {
	b.submits = append(b.submits, side)
}
func (b *fakeBroker) Liquidate()               { b.liquidated++ }
func (b *fakeBroker) Position() model.Position { return b.pos }
func (b *fakeBroker) Balance() float64         { return 10_000 }
func (b *fakeBroker) AvailableMargin() float64 { return 10_000 }
func (b *fakeBroker) FeeRate() float64         { return b.feeRate }
func (b *fakeBroker) LotSize() float64         { return b.lotSize }

func openLongCtx(b *fakeBroker, high, low float64) *Ctx {
	b.pos = model.Position{Qty: 1, EntryPrice: 100, Type: enum.PositionLong}
	c := NewCtx("sim", "BTC/USDT", "1m", b)
	c.Candles = model.Candles{{Timestamp: 1, Open: 100, Close: 100, High: high, Low: low}}
	return c
}

func TestBuySellRouteThroughBroker(t *testing.T) {
	b := &fakeBroker{}
	c := NewCtx("sim", "BTC/USDT", "1m", b)
	c.Buy(1, 100)
	c.Sell(2, 110)

	if len(b.submits) != 2 || b.submits[0] != enum.OrderSideBuy || b.submits[1] != enum.OrderSideSell {
		t.Fatalf("submissions mismatch: %v", b.submits)
	}
}

func TestEnforceStopLossLong(t *testing.T) {
	b := &fakeBroker{}
	c := openLongCtx(b, 101, 94)
	c.SetStopLoss(95)

	c.EnforceProtectiveExits()
	if b.liquidated != 1 {
		t.Fatalf("stop crossed but not liquidated: %d", b.liquidated)
	}
}

func TestEnforceTakeProfitShort(t *testing.T) {
	b := &fakeBroker{}
	c := NewCtx("sim", "BTC/USDT", "1m", b)
	b.pos = model.Position{Qty: 1, EntryPrice: 100, Type: enum.PositionShort}
	c.Candles = model.Candles{{Timestamp: 1, Open: 92, Close: 92, High: 93, Low: 89}}
	c.SetTakeProfit(90)

	c.EnforceProtectiveExits()
	if b.liquidated != 1 {
		t.Fatalf("target crossed but not liquidated: %d", b.liquidated)
	}
}

func TestEnforceNoopWhenUnarmedOrFlat(t *testing.T) {
	b := &fakeBroker{}
	c := openLongCtx(b, 101, 50)
	c.EnforceProtectiveExits()
	if b.liquidated != 0 {
		t.Fatalf("unarmed exits must not liquidate: %d", b.liquidated)
	}

	c.SetStopLoss(95)
	b.pos = model.Position{Type: enum.PositionClosed}
	c.EnforceProtectiveExits()
	if b.liquidated != 0 {
		t.Fatalf("flat position must not liquidate: %d", b.liquidated)
	}
}

func TestClearProtectiveExits(t *testing.T) {
	b := &fakeBroker{}
	c := openLongCtx(b, 101, 94)
	c.SetStopLoss(95)
	c.SetTakeProfit(120)
	c.ClearProtectiveExits()

	if c.StopLoss() != 0 || c.TakeProfit() != 0 {
		t.Fatalf("exits not cleared: sl %v tp %v", c.StopLoss(), c.TakeProfit())
	}
	c.EnforceProtectiveExits()
	if b.liquidated != 0 {
		t.Fatalf("cleared exits must not liquidate: %d", b.liquidated)
	}
}

func TestQtyByRisk(t *testing.T) {
	b := &fakeBroker{lotSize: 1}
	c := NewCtx("sim", "BTC/USDT", "1m", b)

	// 2% of 10000 over a 5-point stop, floored to the lot.
	if got := c.QtyByRisk(2, 100, 95); got != 40 {
		t.Fatalf("qty mismatch: got %v want 40", got)
	}

	b.feeRate = 0.001
	if got := c.QtyByRisk(2, 100, 95); got != 39 {
		t.Fatalf("fee-adjusted qty must floor to 39, got %v", got)
	}
}
