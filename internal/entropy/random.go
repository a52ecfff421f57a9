// Package entropy provides the single reproducible random stream for a run.
// Every stochastic decision in the simulation draws from one Stream seeded once.
package entropy

import (
	"math/rand"
)

// unit is 2^53, the number of evenly spaced float64 values in [0, 1).
const unit = 1 << 53

// Stream is a seeded uniform generator. It is not safe for concurrent use;
// the simulation is single-threaded and owns exactly one.
type Stream struct {
	seed int64
	rng  *rand.Rand
}

// NewStream creates a stream from seed. Two streams with the same seed yield
// identical sequences.
func NewStream(seed int64) *Stream {
	return &Stream{
		seed: seed,
		rng:  rand.New(rand.NewSource(seed)),
	}
}

// Seed returns the seed the stream was created with.
func (s *Stream) Seed() int64 {
	return s.seed
}

// Float returns a uniform float64 in [0, 1).
func (s *Stream) Float() float64 {
	return s.rng.Float64()
}

// FloatIn returns a uniform float64 on the unit interval with configurable
// endpoints: includeZero admits 0, includeOne admits 1.
func (s *Stream) FloatIn(includeZero, includeOne bool) float64 {
	for {
		var d float64
		if includeOne {
			d = float64(s.rng.Int63n(unit+1)) / unit
		} else {
			d = float64(s.rng.Int63n(unit)) / unit
		}
		if d == 0 && !includeZero {
			continue
		}
		return d
	}
}

// Bool returns a fair coin flip.
func (s *Stream) Bool() bool {
	return s.rng.Int63()&1 == 1
}

// Intn returns a uniform int in [0, n). It panics if n <= 0.
func (s *Stream) Intn(n int) int {
	return s.rng.Intn(n)
}

// Chance reports whether a [0, 1) draw lands at or below p.
func (s *Stream) Chance(p float64) bool {
	return s.Float() <= p
}
