// Package order implements the smart order router: the execution kind
// of an order is derived from its requested price against the market,
// never declared by the strategy.
package order

import (
	"errors"

	"github.com/google/uuid"

	"main/internal/model"
	"main/internal/model/enum"
)

// ErrInvalidOrder reports a non-positive requested quantity or price.
var ErrInvalidOrder = errors.New("order quantity and price must be positive")

// Classify derives the execution kind from the requested price.
//
// A buy below market rests as a limit; a buy above market triggers as a
// stop. Sells mirror the inequalities. An exact match is an immediate
// market fill.
func Classify(side enum.OrderSide, requestedPrice, marketPrice float64) enum.OrderKind {
	if requestedPrice == marketPrice {
		return enum.OrderKindMarket
	}

	switch side {
	case enum.OrderSideBuy:
		if requestedPrice < marketPrice {
			return enum.OrderKindLimit
		}
		return enum.OrderKindStop
	case enum.OrderSideSell:
		if requestedPrice > marketPrice {
			return enum.OrderKindLimit
		}
		return enum.OrderKindStop
	default:
		return enum.OrderKindUnknown
	}
}

// New validates and classifies one requested (qty, price) pair.
func New(side enum.OrderSide, qty, price, marketPrice float64, at int64) (model.Order, error) {
	if qty <= 0 || price <= 0 {
		return model.Order{}, ErrInvalidOrder
	}

	return model.Order{
		ID:          uuid.NewString(),
		Side:        side,
		Qty:         qty,
		Price:       price,
		Kind:        Classify(side, price, marketPrice),
		Status:      enum.OrderStatusPending,
		SubmittedAt: at,
	}, nil
}

// FillsWithin reports whether a pending order executes inside the given
// candle range. Market orders always fill; a resting limit buy needs
// the market to trade down to it, a stop buy needs the market to trade
// up through it. Sells mirror the comparisons.
func FillsWithin(o model.Order, low, high float64) bool {
	switch o.Kind {
	case enum.OrderKindMarket:
		return true
	case enum.OrderKindLimit:
		if o.Side == enum.OrderSideBuy {
			return low <= o.Price
		}
		return high >= o.Price
	case enum.OrderKindStop:
		if o.Side == enum.OrderSideBuy {
			return high >= o.Price
		}
		return low <= o.Price
	default:
		return false
	}
}
