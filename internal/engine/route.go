package engine

import (
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/strategy"
)

// RouteSpec is the configuration of one route.
type RouteSpec struct {
	Exchange    string
	Symbol      string
	Timeframe   string
	Strategy    strategy.Strategy
	GapTolerant bool
}

// Route is one (exchange, symbol, timeframe, strategy) unit driven by
// the scheduler. Routes of a run share the account and SharedVars but
// nothing else.
type Route struct {
	spec RouteSpec

	state  RouteState
	ledger *ledger.Ledger
	ctx    *strategy.Ctx

	candles model.Candles
	index   int

	// pendingEntry holds unfilled entry legs; pendingExit holds resting
	// resize/exit legs queued while the position is open.
	pendingEntry []model.Order
	pendingExit  []model.Order

	// canceled accumulates legs dropped before filling, each marked
	// OrderStatusCanceled, for the run results.
	canceled []model.Order

	// buffer collects raw Buy/Sell submissions made inside one hook.
	buffer []orderReq

	// events queues ledger lifecycle events until the next dispatch
	// point, keeping hook invocation non-recursive.
	events []ledger.Event

	reservedMargin float64
}

type orderReq struct {
	side  enum.OrderSide
	qty   float64
	price float64
}

func (r *Route) key() string {
	return r.spec.Exchange + ":" + r.spec.Symbol + ":" + r.spec.Timeframe
}

// State returns the route's scheduler state.
func (r *Route) State() RouteState {
	return r.state
}

// Position returns the route's current position.
func (r *Route) Position() model.Position {
	return r.ledger.Position()
}

// Ctx exposes the route context, mainly for telemetry.
func (r *Route) Ctx() *strategy.Ctx {
	return r.ctx
}

// retire marks dropped legs canceled and records them for the results.
func (r *Route) retire(orders []model.Order) {
	for _, o := range orders {
		o.Status = enum.OrderStatusCanceled
		r.canceled = append(r.canceled, o)
	}
}

func (r *Route) drainBuffer() []orderReq {
	reqs := r.buffer
	r.buffer = nil
	return reqs
}

func (r *Route) queue(ev ledger.Event) {
	if ev.Kind != ledger.EventNone {
		r.events = append(r.events, ev)
	}
}

// routeBroker adapts one route onto the strategy.Broker surface.
type routeBroker struct {
	e *Engine
	r *Route
}

func (b routeBroker) Submit(side enum.OrderSide, qty, price float64) {
	b.r.buffer = append(b.r.buffer, orderReq{side: side, qty: qty, price: price})
}

func (b routeBroker) Liquidate() {
	b.e.liquidateNow(b.r)
}

func (b routeBroker) Position() model.Position {
	return b.r.ledger.Position()
}

func (b routeBroker) Balance() float64 {
	return b.e.account.Balance
}

func (b routeBroker) AvailableMargin() float64 {
	return b.e.risk.Available(b.e.accountView())
}

func (b routeBroker) FeeRate() float64 {
	return b.e.risk.Config().FeeRate
}

func (b routeBroker) LotSize() float64 {
	return b.e.risk.Config().LotSize
}
