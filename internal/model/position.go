package model

import "main/internal/model/enum"

// Position is the single position of one route. Qty is always
// non-negative; Type carries the direction. A closed position has
// Type PositionClosed and Qty zero.
type Position struct {
	Symbol        string
	Qty           float64
	EntryPrice    float64
	Type          enum.PositionType
	OpenedAt      int64
	RealizedPnL   float64
	UnrealizedPnL float64
}

// IsOpen reports whether the position has live quantity.
func (p Position) IsOpen() bool {
	return p.Type != enum.PositionClosed && p.Qty > 0
}
