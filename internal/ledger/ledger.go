// Package ledger owns the open/closed state of one route's position.
// All position mutation goes through ApplyFill; nothing else in the
// engine writes position state.
package ledger

import (
	"errors"

	"main/internal/model"
	"main/internal/model/enum"
)

// ErrFlipWithinFill reports a fill that would flip the position's sign.
// Flipping requires a closing fill to zero first, then an opening fill
// of the opposite type.
var ErrFlipWithinFill = errors.New("fill would flip position sign")

// qtyEpsilon absorbs float drift when a reducing fill lands on zero.
const qtyEpsilon = 1e-9

// EventKind labels the position lifecycle transition caused by a fill.
type EventKind uint8

const (
	EventNone EventKind = iota
	EventOpened
	EventIncreased
	EventReduced
	EventClosed
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventIncreased:
		return "increased"
	case EventReduced:
		return "reduced"
	case EventClosed:
		return "closed"
	default:
		return "none"
	}
}

// Event is the result of applying one fill.
type Event struct {
	Kind     EventKind
	Order    model.Order
	Realized float64
	Trade    *model.Trade
}

// Ledger applies fills to the single position of one route.
type Ledger struct {
	symbol  string
	feeRate float64

	pos model.Position

	// accumulators since last flat
	entrySum float64
	entryQty float64
	feesPaid float64
	gross    float64

	trades []model.Trade
}

// New creates a flat ledger.
func New(symbol string, feeRate float64) *Ledger {
	return &Ledger{
		symbol:  symbol,
		feeRate: feeRate,
		pos:     model.Position{Symbol: symbol, Type: enum.PositionClosed},
	}
}

// Position returns a copy of the current position.
func (l *Ledger) Position() model.Position {
	return l.pos
}

// Trades returns the completed round trips.
func (l *Ledger) Trades() []model.Trade {
	return l.trades
}

// MarkPrice recomputes unrealized P&L against the given market price.
func (l *Ledger) MarkPrice(price float64) {
	if !l.pos.IsOpen() {
		l.pos.UnrealizedPnL = 0
		return
	}
	l.pos.UnrealizedPnL = (price - l.pos.EntryPrice) * l.pos.Qty * l.pos.Type.Sign()
}

// ApplyFill mutates the position with one filled order at the given
// price. It returns the lifecycle event the caller dispatches to the
// strategy.
func (l *Ledger) ApplyFill(o model.Order, price float64, at int64) (Event, error) {
	if o.Qty <= 0 || price <= 0 {
		return Event{}, errors.New("fill quantity and price must be positive")
	}

	o.Status = enum.OrderStatusFilled
	o.FilledAt = at

	fee := o.Qty * price * l.feeRate
	increasing := !l.pos.IsOpen() ||
		(l.pos.Type == enum.PositionLong && o.Side == enum.OrderSideBuy) ||
		(l.pos.Type == enum.PositionShort && o.Side == enum.OrderSideSell)

	if increasing {
		return l.applyIncrease(o, price, fee, at), nil
	}
	return l.applyReduce(o, price, fee, at)
}

// Liquidate closes the whole position with an immediate market fill at
// the given price, bypassing smart-router classification.
func (l *Ledger) Liquidate(price float64, at int64) (Event, error) {
	if !l.pos.IsOpen() {
		return Event{Kind: EventNone}, nil
	}

	side := enum.OrderSideSell
	if l.pos.Type == enum.PositionShort {
		side = enum.OrderSideBuy
	}
	o := model.Order{
		Side:        side,
		Qty:         l.pos.Qty,
		Price:       price,
		Kind:        enum.OrderKindMarket,
		Status:      enum.OrderStatusPending,
		SubmittedAt: at,
	}
	return l.ApplyFill(o, price, at)
}

func (l *Ledger) applyIncrease(o model.Order, price, fee float64, at int64) Event {
	opened := !l.pos.IsOpen()
	if opened {
		l.entrySum, l.entryQty, l.feesPaid, l.gross = 0, 0, 0, 0
		if o.Side == enum.OrderSideBuy {
			l.pos.Type = enum.PositionLong
		} else {
			l.pos.Type = enum.PositionShort
		}
		l.pos.OpenedAt = at
	}

	l.entrySum += o.Qty * price
	l.entryQty += o.Qty
	l.feesPaid += fee
	l.pos.Qty += o.Qty
	l.pos.EntryPrice = l.entrySum / l.entryQty
	l.pos.RealizedPnL -= fee
	l.MarkPrice(price)

	kind := EventIncreased
	if opened {
		kind = EventOpened
	}
	return Event{Kind: kind, Order: o}
}

func (l *Ledger) applyReduce(o model.Order, price, fee float64, at int64) (Event, error) {
	if o.Qty > l.pos.Qty+qtyEpsilon {
		return Event{}, ErrFlipWithinFill
	}

	realized := (price - l.pos.EntryPrice) * o.Qty * l.pos.Type.Sign()
	l.feesPaid += fee
	l.gross += realized
	l.pos.RealizedPnL += realized - fee
	l.pos.Qty -= o.Qty

	if l.pos.Qty <= qtyEpsilon {
		trade := model.Trade{
			Symbol:     l.symbol,
			Type:       l.pos.Type,
			Qty:        l.entryQty,
			EntryPrice: l.pos.EntryPrice,
			ExitPrice:  price,
			PnL:        l.gross - l.feesPaid,
			Fee:        l.feesPaid,
			OpenedAt:   l.pos.OpenedAt,
			ClosedAt:   at,
		}
		l.trades = append(l.trades, trade)

		l.pos.Qty = 0
		l.pos.Type = enum.PositionClosed
		l.pos.EntryPrice = 0
		l.pos.OpenedAt = 0
		l.pos.UnrealizedPnL = 0

		return Event{Kind: EventClosed, Order: o, Realized: realized, Trade: &trade}, nil
	}

	l.MarkPrice(price)
	return Event{Kind: EventReduced, Order: o, Realized: realized}, nil
}
