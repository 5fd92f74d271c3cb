// Package strategy defines the capability contract between the
// execution scheduler and a trading strategy. A strategy embeds Base
// and overrides only the hooks it needs; the scheduler supplies safe
// defaults for the rest.
package strategy

import (
	"main/internal/hyper"
	"main/internal/model"
)

// Filter is one pre-submission check. All filters must pass before an
// entry is submitted; otherwise the entry is discarded silently.
type Filter func() bool

// WatchItem is one labeled value a strategy exposes for telemetry.
type WatchItem struct {
	Label string
	Value any
}

// Strategy is the full hook set. The scheduler guarantees ShouldLong,
// ShouldShort and ShouldCancelEntry are never invoked while the route's
// position is open.
type Strategy interface {
	// Before runs first on every candle step, side-effect only.
	Before(c *Ctx)

	// ShouldLong and ShouldShort are evaluated only while flat. If both
	// report true on the same candle, the long entry wins.
	ShouldLong(c *Ctx) bool
	ShouldShort(c *Ctx) bool

	// GoLong and GoShort queue entry orders through c.Buy / c.Sell.
	GoLong(c *Ctx)
	GoShort(c *Ctx)

	// ShouldCancelEntry is asked while entry orders are pending; true
	// cancels all of them atomically.
	ShouldCancelEntry(c *Ctx) bool

	// UpdatePosition runs on every candle while the position is open.
	// It may resize via c.Buy / c.Sell or force a close via
	// c.Liquidate.
	UpdatePosition(c *Ctx)

	// Position lifecycle notifications.
	OnOpenPosition(c *Ctx, o model.Order)
	OnIncreasedPosition(c *Ctx, o model.Order)
	OnReducedPosition(c *Ctx, o model.Order)
	OnClosePosition(c *Ctx, o model.Order)
	OnCancel(c *Ctx)

	// After runs last on every candle step, side-effect only.
	After(c *Ctx)

	// Filters returns the pre-submission checks for entries.
	Filters(c *Ctx) []Filter

	// Hyperparameters declares the tunable parameters; DNA optionally
	// names an encoded value set for them.
	Hyperparameters() []hyper.Spec
	DNA() string

	// WatchList exposes labeled values for per-step telemetry.
	WatchList(c *Ctx) []WatchItem
}
