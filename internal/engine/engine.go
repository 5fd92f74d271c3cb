// Package engine drives strategies through the per-candle execution
// schedule: one run owns one account, one SharedVars space and a fixed
// route visitation order. Runs are fully isolated from each other and
// single-threaded inside, which is what makes them deterministic and
// embarrassingly parallel across candidates.
package engine

import (
	"context"
	"fmt"

	"github.com/yanun0323/logs"

	"main/internal/candle"
	"main/internal/hyper"
	"main/internal/ledger"
	"main/internal/risk"
	"main/internal/strategy"
)

// Config is the run configuration.
type Config struct {
	Risk    risk.Config
	Balance float64

	// Candle range in epoch milliseconds, [Start, Finish).
	Start  int64
	Finish int64

	// Speed paces candle steps against the wall clock; 0 disables
	// pacing (backtest mode).
	Speed float64

	// Hyperparameter overrides shared by all routes: explicit values
	// win over DNA, DNA wins over the strategy's own DNA() and
	// declared defaults.
	HPExplicit map[string]any
	DNA        string
}

// Engine is one simulation run.
type Engine struct {
	cfg     Config
	store   candle.Store
	account *Account
	risk    *risk.Engine
	shared  *SharedVars
	routes  []*Route
	clock   Clock
}

// New wires a run from its config and route specs. The route order
// given here is the fixed per-candle visitation order.
func New(cfg Config, store candle.Store, specs []RouteSpec) (*Engine, error) {
	e := &Engine{
		cfg:     cfg,
		store:   store,
		account: &Account{Balance: cfg.Balance},
		risk:    risk.NewEngine(cfg.Risk),
		shared:  NewSharedVars(),
		clock:   realClock{},
	}

	for _, spec := range specs {
		strat := spec.Strategy
		dna := cfg.DNA
		if dna == "" {
			dna = strat.DNA()
		}
		values, err := hyper.Resolve(strat.Hyperparameters(), cfg.HPExplicit, dna)
		if err != nil {
			return nil, fmt.Errorf("route %s:%s:%s: resolve hyperparameters: %w",
				spec.Exchange, spec.Symbol, spec.Timeframe, err)
		}

		r := &Route{
			spec:   spec,
			state:  StateFlat,
			ledger: ledger.New(spec.Symbol, cfg.Risk.FeeRate),
		}
		r.ctx = strategy.NewCtx(spec.Exchange, spec.Symbol, spec.Timeframe, routeBroker{e: e, r: r})
		r.ctx.Shared = e.shared
		r.ctx.HP = values
		e.routes = append(e.routes, r)
	}

	return e, nil
}

// WithClock swaps the pacing clock, for tests.
func (e *Engine) WithClock(clock Clock) *Engine {
	if clock != nil {
		e.clock = clock
	}
	return e
}

// Routes returns the routes in visitation order.
func (e *Engine) Routes() []*Route {
	return e.routes
}

// Run replays the configured candle range through every route. The
// context is honored at candle boundaries only; a step never stops
// halfway, so aborting cannot corrupt ledger state.
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	steps := 0
	for _, r := range e.routes {
		cs, err := e.store.Range(r.spec.Exchange, r.spec.Symbol, r.spec.Timeframe, e.cfg.Start, e.cfg.Finish)
		if err != nil {
			// Strict instruments fail the whole run here.
			return nil, fmt.Errorf("route %s: load candles: %w", r.key(), err)
		}
		r.candles = cs
		if len(cs) > steps {
			steps = len(cs)
		}
	}

	logs.Infof("run started: %d routes, %d candle steps", len(e.routes), steps)

	var prevTS int64
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := e.pace(ctx, e.stepTimestamp(i), &prevTS); err != nil {
			return nil, err
		}

		for _, r := range e.routes {
			if i >= len(r.candles) {
				// Gap-tolerant route with no data: no signal this step.
				continue
			}
			e.stepRoute(r, i)
		}
	}

	return e.finish(), nil
}

func (e *Engine) stepTimestamp(i int) int64 {
	for _, r := range e.routes {
		if i < len(r.candles) {
			return r.candles[i].Timestamp
		}
	}
	return 0
}

func (e *Engine) finish() *Results {
	// Close whatever is still open at the end of the range.
	for _, r := range e.routes {
		if len(r.candles) == 0 || !r.ledger.Position().IsOpen() {
			continue
		}
		r.index = len(r.candles) - 1
		e.liquidateNow(r)
		e.dispatchEvents(r)
	}

	results := e.collectResults()
	logs.Infof("run finished: balance %.2f -> %.2f, %d trades",
		results.StartBalance, results.FinalBalance, results.TotalTrades)
	return results
}
