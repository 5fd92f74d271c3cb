package sample

import (
	"math"

	"main/internal/hyper"
	"main/internal/indicator"
	"main/internal/model"
	"main/internal/strategy"
)

// MACrossover goes long when the fast EMA crosses above the slow EMA
// with RSI below the overbought level, short on the mirror cross.
// Protective stop and target are set as percentages of the entry.
type MACrossover struct {
	strategy.Base

	fast, prevFast float64
	slow, prevSlow float64
	rsi            float64
}

func (s *MACrossover) Hyperparameters() []hyper.Spec {
	return []hyper.Spec{
		{Name: "fast_period", Type: hyper.TypeInt, Min: 5, Max: 30, Step: 1, Default: 10},
		{Name: "slow_period", Type: hyper.TypeInt, Min: 20, Max: 60, Step: 1, Default: 20},
		{Name: "rsi_period", Type: hyper.TypeInt, Min: 7, Max: 28, Step: 1, Default: 14},
		{Name: "rsi_overbought", Type: hyper.TypeFloat, Min: 60, Max: 85, Default: 70.0},
		{Name: "rsi_oversold", Type: hyper.TypeFloat, Min: 15, Max: 40, Default: 30.0},
		{Name: "stop_loss_pct", Type: hyper.TypeFloat, Min: 0.5, Max: 5, Default: 2.0},
		{Name: "take_profit_pct", Type: hyper.TypeFloat, Min: 1, Max: 8, Default: 3.0},
		{Name: "risk_pct", Type: hyper.TypeFloat, Min: 0.5, Max: 5, Default: 2.0},
	}
}

func (s *MACrossover) Before(c *strategy.Ctx) {
	closes := c.Candles.Closes()
	fastPeriod := c.HP.Int("fast_period")
	slowPeriod := c.HP.Int("slow_period")

	s.fast = indicator.EMA(closes, fastPeriod)
	s.slow = indicator.EMA(closes, slowPeriod)
	s.rsi = indicator.RSI(closes, c.HP.Int("rsi_period"))

	if len(closes) > 1 {
		s.prevFast = indicator.EMA(closes[:len(closes)-1], fastPeriod)
		s.prevSlow = indicator.EMA(closes[:len(closes)-1], slowPeriod)
	}
}

func (s *MACrossover) ready() bool {
	return !math.IsNaN(s.fast) && !math.IsNaN(s.slow) &&
		!math.IsNaN(s.prevFast) && !math.IsNaN(s.prevSlow) && !math.IsNaN(s.rsi)
}

func (s *MACrossover) ShouldLong(c *strategy.Ctx) bool {
	return s.ready() &&
		s.prevFast <= s.prevSlow && s.fast > s.slow &&
		s.rsi < c.HP.Float("rsi_overbought")
}

func (s *MACrossover) ShouldShort(c *strategy.Ctx) bool {
	return s.ready() &&
		s.prevFast >= s.prevSlow && s.fast < s.slow &&
		s.rsi > c.HP.Float("rsi_oversold")
}

func (s *MACrossover) GoLong(c *strategy.Ctx) {
	entry := c.Close()
	stop := entry * (1 - c.HP.Float("stop_loss_pct")/100)
	qty := c.QtyByRisk(c.HP.Float("risk_pct"), entry, stop)
	if qty <= 0 {
		return
	}
	c.Buy(qty, entry)
}

func (s *MACrossover) GoShort(c *strategy.Ctx) {
	entry := c.Close()
	stop := entry * (1 + c.HP.Float("stop_loss_pct")/100)
	qty := c.QtyByRisk(c.HP.Float("risk_pct"), entry, stop)
	if qty <= 0 {
		return
	}
	c.Sell(qty, entry)
}

func (s *MACrossover) OnOpenPosition(c *strategy.Ctx, o model.Order) {
	entry := c.Position().EntryPrice
	slPct := c.HP.Float("stop_loss_pct") / 100
	tpPct := c.HP.Float("take_profit_pct") / 100

	if c.Position().Type.Sign() > 0 {
		c.SetStopLoss(entry * (1 - slPct))
		c.SetTakeProfit(entry * (1 + tpPct))
	} else {
		c.SetStopLoss(entry * (1 + slPct))
		c.SetTakeProfit(entry * (1 - tpPct))
	}
}

func (s *MACrossover) Filters(c *strategy.Ctx) []strategy.Filter {
	return []strategy.Filter{
		// enough history for the slow side of the cross
		func() bool { return len(c.Candles) > c.HP.Int("slow_period")+1 },
	}
}

func (s *MACrossover) WatchList(c *strategy.Ctx) []strategy.WatchItem {
	return []strategy.WatchItem{
		{Label: "fast", Value: s.fast},
		{Label: "slow", Value: s.slow},
		{Label: "rsi", Value: s.rsi},
	}
}
