package agents

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/collegesim/internal/entropy"
)

func TestAlienation(t *testing.T) {
	tests := []struct {
		name         string
		extroversion float64
		friends      int
		want         float64
	}{
		{"no friends is maximal", 0.5, 0, 1},
		{"no friends ignores extroversion", 0.0, 0, 1},
		{"one friend", 0.5, 1, 1},             // 0.5 / (1/3) = 1.5, capped
		{"three friends", 0.5, 3, 0.5},        // 0.5 / 1
		{"six friends", 0.5, 6, 0.25},         // 0.5 / 2
		{"introvert one friend", 0.3, 1, 0.9}, // 0.3 / (1/3)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Alienation(tt.extroversion, tt.friends, DefaultRequiredNumFriends), tolerance)
		})
	}
}

func TestPerson_Groups(t *testing.T) {
	p := NewPerson(1, RaceWhite, GenderFemale, 0.5, NewAttributes(nil, nil, nil))
	p.JoinGroup(3)
	p.JoinGroup(1)
	p.JoinGroup(3)
	assert.Equal(t, []GroupID{3, 1}, p.Groups())
	assert.True(t, p.InGroup(1))

	p.LeaveGroup(3)
	assert.Equal(t, []GroupID{1}, p.Groups())
	assert.False(t, p.InGroup(3))
	assert.Equal(t, 1, p.NumGroups())
}

func TestPerson_Interactions(t *testing.T) {
	p := NewPerson(1, RaceWhite, GenderFemale, 0.5, NewAttributes(nil, nil, nil))
	assert.Equal(t, "Person 1 (lonely with no friends)", p.String())

	p.Touch(9, 2.5)
	p.Touch(3, 1.5)
	p.Touch(9, 4.5)

	last, ok := p.LastInteraction(9)
	require.True(t, ok)
	assert.Equal(t, 4.5, last)
	assert.Equal(t, []PersonID{3, 9}, p.Peers())
	assert.Equal(t, "Person 1 (friends with 3,9)", p.String())

	p.Forget(3)
	_, ok = p.LastInteraction(3)
	assert.False(t, ok)
	assert.Equal(t, 1, p.NumPeers())
}

func TestPerson_YearSnapshots(t *testing.T) {
	attrs := NewAttributes(nil, []float64{0.2, 0.4}, []float64{1, 1})
	p := NewPerson(1, RaceWhite, GenderFemale, 0.5, attrs)

	p.SetYear(1)
	require.NotNil(t, p.snapshotFor(0))
	assert.False(t, p.HasFullData())

	require.NoError(t, attrs.SetIndependent(0, 0.6))
	p.IncrementYear()
	p.IncrementYear()
	p.IncrementYear()
	assert.Equal(t, 4, p.Year())
	assert.True(t, p.HasFullData())
	assert.Equal(t, []float64{0.6, 0.4}, p.snapshotFor(3).Independent)

	indep, dep, ok := p.Change()
	require.True(t, ok)
	assert.InDelta(t, 0.2, indep, tolerance) // (0.4 + 0) / 2
	assert.InDelta(t, 0.0, dep, tolerance)

	p.IncrementYear()
	assert.Equal(t, 5, p.Year(), "no validation past senior year")
}

func TestPerson_ChangeRequiresFreshmanEntry(t *testing.T) {
	p := NewPerson(1, RaceWhite, GenderFemale, 0.5, NewAttributes(nil, []float64{0.2}, nil))
	p.SetYear(3)
	_, _, ok := p.Change()
	assert.False(t, ok)
	assert.NotNil(t, p.snapshotFor(2))
	assert.Nil(t, p.snapshotFor(7))
}

func TestSpawner(t *testing.T) {
	params := testParams()
	params.ProbabilityWhite = 1
	params.ProbabilityFemale = 0

	sp := NewSpawner(entropy.NewStream(5), params)
	people := sp.SpawnBatch(25, 0)
	require.Len(t, people, 25)

	for i, p := range people {
		assert.Equal(t, PersonID(i), p.ID, "ids are sequential from 0")
		assert.Equal(t, RaceWhite, p.Race)
		assert.Equal(t, GenderMale, p.Gender)
		assert.Equal(t, 0.5, p.Extroversion)
		assert.GreaterOrEqual(t, p.Year(), 1)
		assert.LessOrEqual(t, p.Year(), 4)
		assert.Equal(t, params.ConstantAttributePool, p.Attrs.NumConstant())
		assert.Equal(t, params.IndependentAttrPool, p.Attrs.NumIndependent())
		assert.Equal(t, params.DependentAttributePool, p.Attrs.NumDependent())
		for _, v := range p.Attrs.Independent() {
			assert.Greater(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}

	fresh := sp.Spawn(1)
	assert.Equal(t, PersonID(25), fresh.ID)
	assert.Equal(t, 1, fresh.Year())
	assert.NotNil(t, fresh.snapshotFor(0))
	assert.Equal(t, PersonID(26), sp.nextID)
}

func TestSpawner_Reproducible(t *testing.T) {
	params := testParams()
	a := NewSpawner(entropy.NewStream(99), params).SpawnBatch(10, 0)
	b := NewSpawner(entropy.NewStream(99), params).SpawnBatch(10, 0)
	for i := range a {
		assert.Equal(t, a[i].Attrs.Independent(), b[i].Attrs.Independent())
		assert.Equal(t, a[i].Race, b[i].Race)
		assert.Equal(t, a[i].Year(), b[i].Year())
	}
}
