package agents

import (
	"errors"
	"fmt"
)

var (
	// ErrDependentOutOfRange is returned when a normalized dependent target
	// is outside [0, 1).
	ErrDependentOutOfRange = errors.New("dependent attribute target out of range")
	// ErrIndependentOutOfRange is returned when an independent value is
	// outside [0, 1].
	ErrIndependentOutOfRange = errors.New("independent attribute out of range")
)

// Attributes is a student's trait vector. It is owned by exactly one Person.
//
// Three kinds of attribute are kept:
//   - constant: booleans fixed at enrollment ("where are you from?")
//   - independent: values in [0,1] that drift independently of each other
//   - dependent: raw weights that share one unit of budget. They are only
//     meaningful after normalization, so every read goes through Dependent.
type Attributes struct {
	constant    []bool
	independent []float64
	dependent   []float64 // raw, unnormalized
}

// NewAttributes copies the given vectors into a new Attributes.
func NewAttributes(constant []bool, independent, dependentRaw []float64) *Attributes {
	a := &Attributes{
		constant:    make([]bool, len(constant)),
		independent: make([]float64, len(independent)),
		dependent:   make([]float64, len(dependentRaw)),
	}
	copy(a.constant, constant)
	copy(a.independent, independent)
	copy(a.dependent, dependentRaw)
	return a
}

// NumConstant returns the constant pool size.
func (a *Attributes) NumConstant() int { return len(a.constant) }

// NumIndependent returns the independent pool size.
func (a *Attributes) NumIndependent() int { return len(a.independent) }

// NumDependent returns the dependent pool size.
func (a *Attributes) NumDependent() int { return len(a.dependent) }

// Constant returns a copy of the constant attributes.
func (a *Attributes) Constant() []bool {
	out := make([]bool, len(a.constant))
	copy(out, a.constant)
	return out
}

// Independent returns a copy of the independent attributes.
func (a *Attributes) Independent() []float64 {
	out := make([]float64, len(a.independent))
	copy(out, a.independent)
	return out
}

// IndependentAt returns the independent value at position i.
func (a *Attributes) IndependentAt(i int) float64 {
	return a.independent[i]
}

func (a *Attributes) rawDependent() []float64 {
	out := make([]float64, len(a.dependent))
	copy(out, a.dependent)
	return out
}

// Dependent returns the dependent attributes normalized to sum to 1.
// An all-zero raw vector normalizes to equal shares.
func (a *Attributes) Dependent() []float64 {
	return normalize(a.dependent)
}

// SetIndependent sets independent attribute i to val.
func (a *Attributes) SetIndependent(i int, val float64) error {
	if val < 0 || val > 1 {
		return fmt.Errorf("%w: index %d value %g", ErrIndependentOutOfRange, i, val)
	}
	a.independent[i] = val
	return nil
}

// SetDependent makes the normalized value of dependent attribute i equal
// val by recomputing its raw weight against the sum of all the others:
// raw = val*sum/(1-val). The other raw weights are untouched, so the
// normalized vector keeps summing to 1. When every other weight is zero
// they are reset to equal shares of 1-val.
func (a *Attributes) SetDependent(i int, val float64) error {
	if val < 0 || val >= 1 {
		return fmt.Errorf("%w: index %d value %g", ErrDependentOutOfRange, i, val)
	}
	if len(a.dependent) == 1 {
		// A lone dependent attribute always normalizes to 1.
		return nil
	}
	sum := 0.0
	for j, v := range a.dependent {
		if j != i {
			sum += v
		}
	}
	if sum == 0 {
		rest := (1 - val) / float64(len(a.dependent)-1)
		for j := range a.dependent {
			a.dependent[j] = rest
		}
		a.dependent[i] = val
		return nil
	}
	a.dependent[i] = val * sum / (1 - val)
	return nil
}

// Clone returns a deep copy.
func (a *Attributes) Clone() *Attributes {
	return NewAttributes(a.constant, a.independent, a.dependent)
}

func normalize(raw []float64) []float64 {
	out := make([]float64, len(raw))
	if len(raw) == 0 {
		return out
	}
	sum := 0.0
	for _, v := range raw {
		sum += v
	}
	if sum == 0 {
		share := 1 / float64(len(raw))
		for i := range out {
			out[i] = share
		}
		return out
	}
	for i, v := range raw {
		out[i] = v / sum
	}
	return out
}

func sum(vals []float64) float64 {
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total
}
