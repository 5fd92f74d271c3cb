package engine

import (
	"github.com/yanun0323/logs"

	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/order"
)

// stepRoute runs the fixed per-candle sequence for one route:
// resting-order fill checks, Before, the state-dependent hook, After.
// ShouldLong / ShouldShort / ShouldCancelEntry are never reached while
// the position is open; the switch below enforces that, not the
// strategy author.
func (e *Engine) stepRoute(r *Route, i int) {
	candle := r.candles[i]
	r.index = i
	r.ctx.Candles = r.candles[:i+1]
	r.ctx.Index = i
	r.ledger.MarkPrice(candle.Close)

	e.checkPendingFills(r, candle)

	strat := r.spec.Strategy
	strat.Before(r.ctx)

	switch r.state {
	case StateOpen:
		strat.UpdatePosition(r.ctx)
		e.applyResize(r, candle)
	case StatePendingEntry:
		if strat.ShouldCancelEntry(r.ctx) {
			e.cancelEntry(r)
		}
	case StateFlat:
		// Long wins when both hooks report true: GoLong runs before
		// ShouldShort is consulted, and acting on the long leaves Flat.
		if strat.ShouldLong(r.ctx) {
			strat.GoLong(r.ctx)
			e.submitEntry(r, candle)
		} else if strat.ShouldShort(r.ctx) {
			strat.GoShort(r.ctx)
			e.submitEntry(r, candle)
		}
	}

	strat.After(r.ctx)

	if leftovers := r.drainBuffer(); len(leftovers) > 0 {
		logs.Warnf("route %s candle %d: %d submissions outside an action hook dropped",
			r.key(), i, len(leftovers))
	}

	e.logWatchList(r)
}

// checkPendingFills matches resting orders against the candle range and
// applies the fills. Market legs fill at the current market price,
// resting legs at their requested price.
func (e *Engine) checkPendingFills(r *Route, candle model.Candle) {
	r.pendingEntry = e.fillMatching(r, r.pendingEntry, candle)
	r.pendingExit = e.fillMatching(r, r.pendingExit, candle)
	e.dispatchEvents(r)
}

func (e *Engine) fillMatching(r *Route, pending []model.Order, candle model.Candle) []model.Order {
	if len(pending) == 0 {
		return pending
	}

	remaining := pending[:0]
	for _, o := range pending {
		if !order.FillsWithin(o, candle.Low, candle.High) {
			remaining = append(remaining, o)
			continue
		}

		price := o.Price
		if o.Kind == enum.OrderKindMarket {
			price = candle.Close
		}
		ev, err := r.ledger.ApplyFill(o, price, candle.Timestamp)
		if err != nil {
			// Local error: drop the order, keep the route running.
			logs.Errorf("route %s candle %d: fill %s: %v", r.key(), r.index, o.ID, err)
			continue
		}
		r.queue(ev)
	}
	return remaining
}

// submitEntry turns the buffered (qty, price) pairs of GoLong / GoShort
// into validated, margin-checked pending orders. Any failing leg or
// filter discards the whole entry and the route stays Flat.
func (e *Engine) submitEntry(r *Route, candle model.Candle) {
	reqs := r.drainBuffer()
	if len(reqs) == 0 {
		return
	}

	for _, f := range r.spec.Strategy.Filters(r.ctx) {
		if !f() {
			logs.Debugf("route %s candle %d: entry discarded by filter", r.key(), r.index)
			return
		}
	}

	view := e.accountView()
	orders := make([]model.Order, 0, len(reqs))
	reserve := 0.0
	for _, req := range reqs {
		o, err := order.New(req.side, req.qty, req.price, candle.Close, candle.Timestamp)
		if err != nil {
			logs.Warnf("route %s candle %d: %v", r.key(), r.index, err)
			return
		}
		if err := e.risk.Check(o, view); err != nil {
			logs.Warnf("route %s candle %d: order %s rejected: %v", r.key(), r.index, o.ID, err)
			return
		}
		// Earlier legs of the same entry count against the later ones.
		view.MarginUsed += e.risk.Requirement(o)
		view.OpenOrdersValue += o.Notional()
		orders = append(orders, o)
		reserve += e.risk.Requirement(o)
	}

	r.pendingEntry = orders
	r.reservedMargin += reserve
	e.account.MarginUsed += reserve
	r.state = StatePendingEntry

	// Market legs execute on the submission candle.
	e.checkPendingFills(r, candle)
}

// applyResize routes the submissions made during UpdatePosition.
// Market legs fill immediately; resting legs join pendingExit.
func (e *Engine) applyResize(r *Route, candle model.Candle) {
	reqs := r.drainBuffer()
	for _, req := range reqs {
		o, err := order.New(req.side, req.qty, req.price, candle.Close, candle.Timestamp)
		if err != nil {
			logs.Warnf("route %s candle %d: resize: %v", r.key(), r.index, err)
			continue
		}

		if e.isIncrease(r, o) {
			if err := e.risk.Check(o, e.accountView()); err != nil {
				logs.Warnf("route %s candle %d: resize %s rejected: %v", r.key(), r.index, o.ID, err)
				continue
			}
			m := e.risk.Requirement(o)
			r.reservedMargin += m
			e.account.MarginUsed += m
		}

		if o.Kind == enum.OrderKindMarket {
			ev, err := r.ledger.ApplyFill(o, candle.Close, candle.Timestamp)
			if err != nil {
				logs.Errorf("route %s candle %d: resize fill: %v", r.key(), r.index, err)
				continue
			}
			r.queue(ev)
		} else {
			r.pendingExit = append(r.pendingExit, o)
		}
	}
	e.dispatchEvents(r)
}

func (e *Engine) isIncrease(r *Route, o model.Order) bool {
	pos := r.ledger.Position()
	return (pos.Type == enum.PositionLong && o.Side == enum.OrderSideBuy) ||
		(pos.Type == enum.PositionShort && o.Side == enum.OrderSideSell)
}

// cancelEntry drops all pending entry orders atomically and returns the
// route to Flat.
func (e *Engine) cancelEntry(r *Route) {
	if len(r.pendingEntry) == 0 {
		return
	}

	r.retire(r.pendingEntry)
	r.pendingEntry = nil
	e.releaseMargin(r)
	r.state = StateFlat
	r.spec.Strategy.OnCancel(r.ctx)
	logs.Debugf("route %s candle %d: entry cancelled", r.key(), r.index)
}

// liquidateNow closes the whole position with an immediate market fill
// at the current close, bypassing the smart router.
func (e *Engine) liquidateNow(r *Route) {
	candle := r.candles[r.index]
	ev, err := r.ledger.Liquidate(candle.Close, candle.Timestamp)
	if err != nil {
		logs.Errorf("route %s candle %d: liquidate: %v", r.key(), r.index, err)
		return
	}
	r.queue(ev)
}

// dispatchEvents drains the queued lifecycle events into strategy
// hooks. State transitions live here so every fill path behaves the
// same.
func (e *Engine) dispatchEvents(r *Route) {
	for len(r.events) > 0 {
		ev := r.events[0]
		r.events = r.events[1:]

		strat := r.spec.Strategy
		switch ev.Kind {
		case ledger.EventOpened:
			r.state = StateOpen
			strat.OnOpenPosition(r.ctx, ev.Order)
		case ledger.EventIncreased:
			strat.OnIncreasedPosition(r.ctx, ev.Order)
		case ledger.EventReduced:
			strat.OnReducedPosition(r.ctx, ev.Order)
		case ledger.EventClosed:
			e.settleClose(r, ev)
			strat.OnClosePosition(r.ctx, ev.Order)
		}
	}
}

func (e *Engine) settleClose(r *Route, ev ledger.Event) {
	if ev.Trade != nil {
		e.account.Balance += ev.Trade.PnL
	}
	e.releaseMargin(r)
	r.state = StateFlat
	r.ctx.ClearProtectiveExits()

	// Resting legs of a closed position would flip the sign; drop them.
	if n := len(r.pendingEntry) + len(r.pendingExit); n > 0 {
		logs.Debugf("route %s candle %d: %d resting orders dropped on close", r.key(), r.index, n)
	}
	r.retire(r.pendingEntry)
	r.retire(r.pendingExit)
	r.pendingEntry = nil
	r.pendingExit = nil
}

func (e *Engine) releaseMargin(r *Route) {
	e.account.MarginUsed -= r.reservedMargin
	if e.account.MarginUsed < 0 {
		e.account.MarginUsed = 0
	}
	r.reservedMargin = 0
}

func (e *Engine) logWatchList(r *Route) {
	items := r.spec.Strategy.WatchList(r.ctx)
	for _, item := range items {
		logs.Debugf("route %s candle %d: watch %s=%v", r.key(), r.index, item.Label, item.Value)
	}
}
