package enum

import "fmt"

// InstrumentType distinguishes spot-style from leveraged futures-style
// instruments for margin accounting.
type InstrumentType uint8

const (
	InstrumentSpot InstrumentType = iota
	InstrumentFutures
)

func (t InstrumentType) String() string {
	if t == InstrumentFutures {
		return "futures"
	}
	return "spot"
}

// ParseInstrumentType maps a config string to an InstrumentType.
func ParseInstrumentType(s string) (InstrumentType, error) {
	switch s {
	case "spot", "":
		return InstrumentSpot, nil
	case "futures":
		return InstrumentFutures, nil
	default:
		return InstrumentSpot, fmt.Errorf("unknown instrument type %q", s)
	}
}
