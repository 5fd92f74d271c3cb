package model

import "main/internal/model/enum"

// Trade is one completed round trip, recorded when a position fully
// closes.
type Trade struct {
	Symbol     string
	Type       enum.PositionType
	Qty        float64
	EntryPrice float64
	ExitPrice  float64
	PnL        float64
	Fee        float64
	OpenedAt   int64
	ClosedAt   int64
}
