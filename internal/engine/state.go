package engine

// RouteState tracks where a route is in the entry/position lifecycle.
type RouteState uint8

const (
	// StateFlat: no position, no pending entry orders.
	StateFlat RouteState = iota
	// StatePendingEntry: entry orders submitted, awaiting fill or
	// cancellation.
	StatePendingEntry
	// StateOpen: position live.
	StateOpen
)

func (s RouteState) String() string {
	switch s {
	case StatePendingEntry:
		return "pending_entry"
	case StateOpen:
		return "open"
	default:
		return "flat"
	}
}
