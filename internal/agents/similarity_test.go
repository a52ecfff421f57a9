package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/collegesim/internal/config"
	"github.com/talgya/collegesim/internal/entropy"
)

func testParams() *config.Params {
	p := config.Default()
	p.MaxYears = 1
	p.SimTag = 1
	p.ConstantAttributePool = 6
	p.ProbabilityFemale = 0.5
	return p
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	p := testParams()
	sp := NewSpawner(entropy.NewStream(11), p)
	people := sp.SpawnBatch(40, 0)

	weightSets := []config.Weights{
		p.Weights,
		{Constant: 0, Independent: 1, Dependent: 0, Race: 0, Gender: 0},
		{Constant: 3, Independent: 0, Dependent: 0, Race: 10, Gender: 2},
		{Constant: 1, Independent: 1, Dependent: 1, Race: 1, Gender: 1},
	}
	for _, w := range weightSets {
		for _, a := range people {
			for _, b := range people {
				ab := Similarity(a, b, w)
				ba := Similarity(b, a, w)
				require.Equal(t, ab, ba)
				require.GreaterOrEqual(t, ab, 0.0)
				require.LessOrEqual(t, ab, 1.0+tolerance)
			}
		}
	}
}

func TestSimilarity_IdenticalIsOne(t *testing.T) {
	attrs := NewAttributes([]bool{true, false, true}, []float64{0.2, 0.7, 0.4}, []float64{0.3, 0.3, 0.9})
	a := NewPerson(1, RaceWhite, GenderFemale, 0.5, attrs)
	b := NewPerson(2, RaceWhite, GenderFemale, 0.5, attrs.Clone())

	w := config.Weights{Constant: 1, Independent: 1.5, Dependent: 2.5, Race: 5, Gender: 1}
	assert.Equal(t, 1.0, Similarity(a, b, w))
}

func TestSimilarity_RaceOnly(t *testing.T) {
	attrs := NewAttributes(nil, []float64{0.5}, []float64{0.5})
	a := NewPerson(1, RaceWhite, GenderMale, 0.5, attrs)
	b := NewPerson(2, RaceMinority, GenderMale, 0.5, attrs.Clone())

	w := config.Weights{Race: 1}
	assert.Equal(t, 0.0, Similarity(a, b, w))
	assert.Equal(t, 1.0, Similarity(a, a, w))
}

func TestSimilarity_SumDistanceNotPositional(t *testing.T) {
	// Mirror-image profiles with equal totals score as fully similar on the
	// independent kind.
	a := NewPerson(1, RaceWhite, GenderMale, 0.5, NewAttributes(nil, []float64{1, 0}, nil))
	b := NewPerson(2, RaceWhite, GenderMale, 0.5, NewAttributes(nil, []float64{0, 1}, nil))

	w := config.Weights{Independent: 1}
	assert.Equal(t, 1.0, Similarity(a, b, w))

	c := NewPerson(3, RaceWhite, GenderMale, 0.5, NewAttributes(nil, []float64{0, 0.5}, nil))
	assert.InDelta(t, 0.75, Similarity(a, c, w), tolerance)
}

func TestSimilarity_ZeroWeights(t *testing.T) {
	a := NewPerson(1, RaceWhite, GenderMale, 0.5, NewAttributes(nil, nil, nil))
	assert.Equal(t, 0.0, Similarity(a, a, config.Weights{}))
}

func TestAcceptProbability(t *testing.T) {
	assert.Equal(t, 1.0, AcceptProbability(0.3, 0, 1))
	assert.Equal(t, 0.0, AcceptProbability(0.9, 0, 0))
	assert.InDelta(t, 0.05+0.22*0.5, AcceptProbability(0.5, 0.22, 0.05), tolerance)
	assert.Greater(t, AcceptProbability(1, 2, 0.5), 1.0, "not clamped")
}

func TestRacePair(t *testing.T) {
	w := NewPerson(1, RaceWhite, GenderMale, 0.5, NewAttributes(nil, nil, nil))
	m := NewPerson(2, RaceMinority, GenderMale, 0.5, NewAttributes(nil, nil, nil))
	assert.Equal(t, "WHITE", RacePair(w, w))
	assert.Equal(t, "MINORITY", RacePair(m, m))
	assert.Equal(t, "MIXED", RacePair(w, m))
}
