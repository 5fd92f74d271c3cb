package strategy

import (
	"main/internal/hyper"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/risk"
)

// Shared is the cross-route key/value space of one run. Writes by a
// route are visible to routes visited later in the same candle step.
type Shared interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// Broker is the engine-side surface a context submits through.
type Broker interface {
	Submit(side enum.OrderSide, qty, price float64)
	Liquidate()
	Position() model.Position
	Balance() float64
	AvailableMargin() float64
	FeeRate() float64
	LotSize() float64
}

// Ctx is the view of one route handed to every strategy hook. The
// scheduler refreshes Candles and Index before each step; everything a
// hook does flows back through the broker.
type Ctx struct {
	Exchange  string
	Symbol    string
	Timeframe string

	// Candles holds the series up to and including the current candle;
	// Index is the current candle's offset within the run.
	Candles model.Candles
	Index   int

	Shared Shared
	HP     hyper.Values

	broker     Broker
	stopLoss   float64
	takeProfit float64
}

// NewCtx builds a route context bound to an engine broker.
func NewCtx(exchange, symbol, timeframe string, broker Broker) *Ctx {
	return &Ctx{
		Exchange:  exchange,
		Symbol:    symbol,
		Timeframe: timeframe,
		broker:    broker,
	}
}

// Candle returns the current candle.
func (c *Ctx) Candle() model.Candle {
	return c.Candles[len(c.Candles)-1]
}

// Close returns the current close price.
func (c *Ctx) Close() float64 { return c.Candle().Close }

// High returns the current high price.
func (c *Ctx) High() float64 { return c.Candle().High }

// Low returns the current low price.
func (c *Ctx) Low() float64 { return c.Candle().Low }

// Open returns the current open price.
func (c *Ctx) Open() float64 { return c.Candle().Open }

// Position returns the route's current position.
func (c *Ctx) Position() model.Position {
	return c.broker.Position()
}

// Capital returns the account balance.
func (c *Ctx) Capital() float64 {
	return c.broker.Balance()
}

// AvailableMargin returns the margin left for new orders.
func (c *Ctx) AvailableMargin() float64 {
	return c.broker.AvailableMargin()
}

// Buy queues a buy (qty, price) pair. During entry it becomes one leg
// of the entry submission; while open it resizes the position.
func (c *Ctx) Buy(qty, price float64) {
	c.broker.Submit(enum.OrderSideBuy, qty, price)
}

// Sell queues a sell (qty, price) pair.
func (c *Ctx) Sell(qty, price float64) {
	c.broker.Submit(enum.OrderSideSell, qty, price)
}

// Liquidate forces an immediate full-size market close.
func (c *Ctx) Liquidate() {
	c.broker.Liquidate()
}

// SetStopLoss arms the protective stop enforced by the default
// UpdatePosition.
func (c *Ctx) SetStopLoss(price float64) { c.stopLoss = price }

// SetTakeProfit arms the protective target enforced by the default
// UpdatePosition.
func (c *Ctx) SetTakeProfit(price float64) { c.takeProfit = price }

// StopLoss returns the armed stop level, 0 when unset.
func (c *Ctx) StopLoss() float64 { return c.stopLoss }

// TakeProfit returns the armed target level, 0 when unset.
func (c *Ctx) TakeProfit() float64 { return c.takeProfit }

// ClearProtectiveExits disarms stop-loss and take-profit. The scheduler
// calls it when the position closes.
func (c *Ctx) ClearProtectiveExits() {
	c.stopLoss, c.takeProfit = 0, 0
}

// EnforceProtectiveExits liquidates when the current candle range
// crosses an armed stop-loss or take-profit level.
func (c *Ctx) EnforceProtectiveExits() {
	p := c.Position()
	if !p.IsOpen() {
		return
	}

	candle := c.Candle()
	switch p.Type {
	case enum.PositionLong:
		if (c.stopLoss > 0 && candle.Low <= c.stopLoss) ||
			(c.takeProfit > 0 && candle.High >= c.takeProfit) {
			c.Liquidate()
		}
	case enum.PositionShort:
		if (c.stopLoss > 0 && candle.High >= c.stopLoss) ||
			(c.takeProfit > 0 && candle.Low <= c.takeProfit) {
			c.Liquidate()
		}
	}
}

// QtyByRisk sizes an entry so that the distance to the stop risks
// riskPct percent of capital, rounded down to the lot size.
func (c *Ctx) QtyByRisk(riskPct, entry, stop float64) float64 {
	qty := risk.QtyFromRisk(c.Capital(), riskPct, entry, stop, c.broker.FeeRate())
	return risk.RoundToLot(qty, c.broker.LotSize())
}
