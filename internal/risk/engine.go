package risk

import (
	"errors"

	"main/internal/model"
	"main/internal/model/enum"
)

// ErrMarginExceeded reports an order whose requirement does not fit in
// the available margin. The order is rejected before submission.
var ErrMarginExceeded = errors.New("order exceeds available margin")

// Config defines the margin model of one exchange account.
type Config struct {
	Instrument enum.InstrumentType
	Leverage   float64
	FeeRate    float64
	LotSize    float64
}

// AccountView is the snapshot the engine evaluates against.
type AccountView struct {
	Balance         float64
	MarginUsed      float64
	OpenOrdersValue float64
}

// Engine evaluates margin decisions. It is stateless beyond its config;
// one instance may serve a whole run.
type Engine struct {
	cfg Config
}

// NewEngine creates a margin engine with static limits.
func NewEngine(cfg Config) *Engine {
	if cfg.Leverage <= 0 {
		cfg.Leverage = 1
	}
	return &Engine{cfg: cfg}
}

// Config returns the engine's margin model.
func (e *Engine) Config() Config {
	return e.cfg
}

// Available returns the margin left for new orders. Spot accounts get
// balance minus pending order value; futures accounts get free balance
// scaled by leverage.
func (e *Engine) Available(acct AccountView) float64 {
	if e.cfg.Instrument == enum.InstrumentFutures {
		return (acct.Balance - acct.MarginUsed) * e.cfg.Leverage
	}
	return acct.Balance - acct.OpenOrdersValue
}

// Requirement returns the margin an order reserves: full notional for
// spot, notional over leverage for futures.
func (e *Engine) Requirement(o model.Order) float64 {
	if e.cfg.Instrument == enum.InstrumentFutures {
		return o.Notional() / e.cfg.Leverage
	}
	return o.Notional()
}

// Check rejects an order whose notional does not fit in the available
// margin.
func (e *Engine) Check(o model.Order, acct AccountView) error {
	if o.Notional() > e.Available(acct) {
		return ErrMarginExceeded
	}
	return nil
}
