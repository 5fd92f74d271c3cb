package sample

import (
	"math"

	"main/internal/hyper"
	"main/internal/indicator"
	"main/internal/model"
	"main/internal/strategy"
)

// RSIMeanReversion fades RSI extremes while price stays on the right
// side of a slow SMA, and exits when RSI returns to the neutral band.
// A one-shot flag per extreme prevents re-entering on every candle of
// a sustained oversold/overbought stretch.
type RSIMeanReversion struct {
	strategy.Base

	rsi float64
	sma float64

	canLong  bool
	canShort bool
	armed    bool
}

func (s *RSIMeanReversion) Hyperparameters() []hyper.Spec {
	return []hyper.Spec{
		{Name: "rsi_period", Type: hyper.TypeInt, Min: 7, Max: 28, Step: 1, Default: 14},
		{Name: "rsi_oversold", Type: hyper.TypeFloat, Min: 15, Max: 40, Default: 30.0},
		{Name: "rsi_overbought", Type: hyper.TypeFloat, Min: 60, Max: 85, Default: 70.0},
		{Name: "rsi_neutral_low", Type: hyper.TypeFloat, Min: 35, Max: 50, Default: 45.0},
		{Name: "rsi_neutral_high", Type: hyper.TypeFloat, Min: 50, Max: 65, Default: 55.0},
		{Name: "sma_period", Type: hyper.TypeInt, Min: 10, Max: 50, Step: 1, Default: 20},
		{Name: "stop_loss_pct", Type: hyper.TypeFloat, Min: 0.5, Max: 4, Default: 1.5},
		{Name: "take_profit_pct", Type: hyper.TypeFloat, Min: 1, Max: 6, Default: 2.5},
		{Name: "risk_pct", Type: hyper.TypeFloat, Min: 0.5, Max: 3, Default: 1.0},
	}
}

func (s *RSIMeanReversion) Before(c *strategy.Ctx) {
	if !s.armed {
		s.canLong, s.canShort, s.armed = true, true, true
	}

	closes := c.Candles.Closes()
	s.rsi = indicator.RSI(closes, c.HP.Int("rsi_period"))
	s.sma = indicator.SMA(closes, c.HP.Int("sma_period"))

	if math.IsNaN(s.rsi) {
		return
	}
	// Re-arm once RSI has passed back through the neutral band.
	if s.rsi > c.HP.Float("rsi_neutral_high") {
		s.canLong = true
	}
	if s.rsi < c.HP.Float("rsi_neutral_low") {
		s.canShort = true
	}
}

func (s *RSIMeanReversion) ready() bool {
	return !math.IsNaN(s.rsi) && !math.IsNaN(s.sma)
}

func (s *RSIMeanReversion) ShouldLong(c *strategy.Ctx) bool {
	if !s.ready() || !s.canLong {
		return false
	}
	if s.rsi < c.HP.Float("rsi_oversold") && c.Close() > s.sma {
		s.canLong = false
		return true
	}
	return false
}

func (s *RSIMeanReversion) ShouldShort(c *strategy.Ctx) bool {
	if !s.ready() || !s.canShort {
		return false
	}
	if s.rsi > c.HP.Float("rsi_overbought") && c.Close() < s.sma {
		s.canShort = false
		return true
	}
	return false
}

func (s *RSIMeanReversion) GoLong(c *strategy.Ctx) {
	entry := c.Close()
	stop := entry * (1 - c.HP.Float("stop_loss_pct")/100)
	qty := c.QtyByRisk(c.HP.Float("risk_pct"), entry, stop)
	if qty <= 0 {
		return
	}
	c.Buy(qty, entry)
}

func (s *RSIMeanReversion) GoShort(c *strategy.Ctx) {
	entry := c.Close()
	stop := entry * (1 + c.HP.Float("stop_loss_pct")/100)
	qty := c.QtyByRisk(c.HP.Float("risk_pct"), entry, stop)
	if qty <= 0 {
		return
	}
	c.Sell(qty, entry)
}

func (s *RSIMeanReversion) OnOpenPosition(c *strategy.Ctx, o model.Order) {
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

// UpdatePosition exits on RSI mean reversion in addition to the default
// stop/target enforcement.
func (s *RSIMeanReversion) UpdatePosition(c *strategy.Ctx) {
	pos := c.Position()
	if pos.IsOpen() && s.ready() {
		neutralLow := c.HP.Float("rsi_neutral_low")
		neutralHigh := c.HP.Float("rsi_neutral_high")
		if (pos.Type.Sign() > 0 && s.rsi >= neutralHigh) ||
			(pos.Type.Sign() < 0 && s.rsi <= neutralLow) {
			c.Liquidate()
			return
		}
	}
	c.EnforceProtectiveExits()
}

func (s *RSIMeanReversion) WatchList(c *strategy.Ctx) []strategy.WatchItem {
	return []strategy.WatchItem{
		{Label: "rsi", Value: s.rsi},
		{Label: "sma", Value: s.sma},
	}
}
