package model

import "main/internal/model/enum"

// Order is one requested (quantity, price) pair. Kind is derived by the
// smart router from the requested price against the market price.
type Order struct {
	ID          string
	Side        enum.OrderSide
	Qty         float64
	Price       float64
	Kind        enum.OrderKind
	Status      enum.OrderStatus
	SubmittedAt int64
	FilledAt    int64
}

// Notional is the full order value at the requested price.
func (o Order) Notional() float64 {
	return o.Qty * o.Price
}
