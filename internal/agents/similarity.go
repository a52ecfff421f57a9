// Perceived similarity between two students and the friendship acceptance
// rule built on it.
package agents

import (
	"math"

	"github.com/talgya/collegesim/internal/config"
)

// Similarity returns how alike a and b appear to each other, from 0 to 1.
//
// Each attribute kind is counted in "equivalent attributes" and weighted:
//   - constant: number of positions with the same boolean
//   - independent: pool size minus |sum(a) - sum(b)|
//   - dependent: the same, on the normalized vectors
//   - race and gender: 1 each when equal
//
// Independent and dependent kinds compare vector sums, not positions: two
// students with different profiles but equal totals look alike. The total is
// divided by the score of a perfect match.
func Similarity(a, b *Person, w config.Weights) float64 {
	constCount := 0
	ac, bc := a.Attrs.constant, b.Attrs.constant
	for i := range ac {
		if ac[i] == bc[i] {
			constCount++
		}
	}

	indepPool := float64(len(a.Attrs.independent))
	indepCount := indepPool - math.Abs(sum(a.Attrs.independent)-sum(b.Attrs.independent))

	depPool := float64(len(a.Attrs.dependent))
	depCount := depPool - math.Abs(sum(a.Attrs.Dependent())-sum(b.Attrs.Dependent()))

	raceCount := 0.0
	if a.Race == b.Race {
		raceCount = 1
	}
	genCount := 0.0
	if a.Gender == b.Gender {
		genCount = 1
	}

	score := float64(constCount)*w.Constant +
		indepCount*w.Independent +
		depCount*w.Dependent +
		raceCount*w.Race +
		genCount*w.Gender
	maxScore := float64(len(ac))*w.Constant +
		indepPool*w.Independent +
		depPool*w.Dependent +
		w.Race + w.Gender
	if maxScore == 0 {
		return 0
	}
	return score / maxScore
}

// AcceptProbability maps a similarity onto the probability of becoming
// friends: coefficient*similarity + intercept. The result is not clamped;
// values outside [0,1] simply make friendship certain or impossible.
func AcceptProbability(similarity, coefficient, intercept float64) float64 {
	return coefficient*similarity + intercept
}

// RacePair labels a meeting for the similarity report: the shared race, or
// "MIXED".
func RacePair(a, b *Person) string {
	if a.Race == b.Race {
		return a.Race.String()
	}
	return "MIXED"
}
