package hyper

import (
	"errors"
	"fmt"
)

// ErrUnknownParameter reports an explicit value for a name the strategy
// never declared.
var ErrUnknownParameter = errors.New("unknown hyperparameter")

// Values is the resolved name→value map. It is resolved once per run
// and exposes read access only; there is no mutating API.
type Values struct {
	m map[string]any
}

// Value returns the raw resolved value.
func (v Values) Value(name string) (any, bool) {
	val, ok := v.m[name]
	return val, ok
}

// Int returns an int parameter, or 0 when absent.
func (v Values) Int(name string) int {
	switch val := v.m[name].(type) {
	case int:
		return val
	case float64:
		return int(val)
	default:
		return 0
	}
}

// Float returns a float parameter, or 0 when absent.
func (v Values) Float(name string) float64 {
	switch val := v.m[name].(type) {
	case float64:
		return val
	case int:
		return float64(val)
	default:
		return 0
	}
}

// Len returns the number of resolved parameters.
func (v Values) Len() int {
	return len(v.m)
}

// Resolve builds the concrete value map for one run. Precedence per
// parameter: explicit value, then DNA gene, then declared default.
func Resolve(specs []Spec, explicit map[string]any, dna string) (Values, error) {
	m := make(map[string]any, len(specs))
	for _, spec := range specs {
		m[spec.Name] = spec.Default
	}

	if dna != "" {
		decoded, err := DecodeDNA(specs, dna)
		if err != nil {
			return Values{}, err
		}
		for name, val := range decoded {
			m[name] = val
		}
	}

	for name, val := range explicit {
		if _, ok := m[name]; !ok {
			return Values{}, fmt.Errorf("%w: %q", ErrUnknownParameter, name)
		}
		m[name] = val
	}

	return Values{m: m}, nil
}
