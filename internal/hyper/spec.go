// Package hyper resolves a strategy's declared hyperparameters into the
// immutable value map a run reads from.
package hyper

// Type is the value domain of one hyperparameter.
type Type uint8

const (
	TypeInt Type = iota
	TypeFloat
	TypeCategorical
)

func (t Type) String() string {
	switch t {
	case TypeFloat:
		return "float"
	case TypeCategorical:
		return "categorical"
	default:
		return "int"
	}
}

// Spec declares one tunable parameter of a strategy.
type Spec struct {
	Name    string
	Type    Type
	Min     float64
	Max     float64
	Step    float64
	Options []any
	Default any
}
