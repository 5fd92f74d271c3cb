package enum

// PositionType is the side of an open position. PositionClosed is both
// the initial and the terminal state (quantity zero).
type PositionType uint8

const (
	PositionClosed PositionType = iota
	PositionLong
	PositionShort
)

func (t PositionType) String() string {
	switch t {
	case PositionLong:
		return "long"
	case PositionShort:
		return "short"
	default:
		return "close"
	}
}

// Sign returns +1 for long, -1 for short and 0 for closed.
func (t PositionType) Sign() float64 {
	switch t {
	case PositionLong:
		return 1
	case PositionShort:
		return -1
	default:
		return 0
	}
}
