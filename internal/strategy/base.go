package strategy

import (
	"main/internal/hyper"
	"main/internal/model"
)

// Base provides the no-op default for every hook. Strategies embed it
// and override what they need.
type Base struct{}

func (Base) Before(*Ctx) {}

func (Base) ShouldLong(*Ctx) bool  { return false }
func (Base) ShouldShort(*Ctx) bool { return false }

func (Base) GoLong(*Ctx)  {}
func (Base) GoShort(*Ctx) {}

func (Base) ShouldCancelEntry(*Ctx) bool { return false }

// UpdatePosition defaults to enforcing the stop-loss / take-profit
// levels set through the context, if any.
func (Base) UpdatePosition(c *Ctx) {
	c.EnforceProtectiveExits()
}

func (Base) OnOpenPosition(*Ctx, model.Order)      {}
func (Base) OnIncreasedPosition(*Ctx, model.Order) {}
func (Base) OnReducedPosition(*Ctx, model.Order)   {}
func (Base) OnClosePosition(*Ctx, model.Order)     {}
func (Base) OnCancel(*Ctx)                         {}

func (Base) After(*Ctx) {}

func (Base) Filters(*Ctx) []Filter { return nil }

func (Base) Hyperparameters() []hyper.Spec { return nil }
func (Base) DNA() string                   { return "" }

func (Base) WatchList(*Ctx) []WatchItem { return nil }
