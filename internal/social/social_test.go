package social

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talgya/collegesim/internal/agents"
	"github.com/talgya/collegesim/internal/entropy"
)

func person(id agents.PersonID) *agents.Person {
	return agents.NewPerson(id, agents.RaceWhite, agents.GenderFemale, 0.5,
		agents.NewAttributes(nil, []float64{0.5}, []float64{0.5}))
}

func TestFriendshipGraph_Edges(t *testing.T) {
	g := NewFriendshipGraph()
	for i := agents.PersonID(0); i < 5; i++ {
		g.AddNode(i)
	}
	g.AddNode(2) // duplicate is harmless
	assert.Equal(t, 5, g.NumNodes())

	require.NoError(t, g.AddEdge(3, 1))
	require.NoError(t, g.AddEdge(1, 4))
	require.NoError(t, g.AddEdge(0, 1))
	require.NoError(t, g.AddEdge(1, 3)) // no multi-edges

	assert.True(t, g.HasEdge(1, 3))
	assert.True(t, g.HasEdge(3, 1))
	assert.False(t, g.HasEdge(2, 3))
	assert.Equal(t, 3, g.Degree(1))
	assert.Equal(t, []agents.PersonID{0, 3, 4}, g.Neighbors(1))
	assert.Equal(t, []Edge{{0, 1}, {1, 3}, {1, 4}}, g.Edges())

	g.RemoveEdge(4, 1)
	assert.False(t, g.HasEdge(1, 4))
	assert.Equal(t, 2, g.Degree(1))
	assert.Equal(t, 0, g.Degree(4))
}

func TestFriendshipGraph_SelfLoop(t *testing.T) {
	g := NewFriendshipGraph()
	assert.ErrorIs(t, g.AddEdge(2, 2), ErrSelfLoop)
	assert.Equal(t, 0, g.NumNodes())
}

func TestFriendshipGraph_RemoveNode(t *testing.T) {
	g := NewFriendshipGraph()
	require.NoError(t, g.AddEdge(1, 2))
	require.NoError(t, g.AddEdge(1, 3))
	require.NoError(t, g.AddEdge(2, 3))

	g.RemoveNode(1)
	assert.False(t, g.HasNode(1))
	assert.False(t, g.HasEdge(1, 2))
	assert.Equal(t, []agents.PersonID{3}, g.Neighbors(2))
	assert.Nil(t, g.Neighbors(1))
	assert.Equal(t, 0, g.Degree(1))
}

func TestGroup_JoinLeave(t *testing.T) {
	g := NewGroup(7)
	a, b := person(1), person(2)

	g.Join(a)
	g.Join(b)
	g.Join(a)
	assert.Equal(t, 2, g.Size())
	assert.True(t, a.InGroup(7))
	assert.NoError(t, g.CheckConsistency())

	g.Leave(a)
	assert.False(t, g.Has(a))
	assert.False(t, a.InGroup(7), "leave clears the member's record too")
	assert.Equal(t, []*agents.Person{b}, g.Members())
}

func TestGroup_Dissolve(t *testing.T) {
	g := NewGroup(3)
	people := []*agents.Person{person(1), person(2), person(3)}
	for _, p := range people {
		g.Join(p)
	}
	g.Dissolve()

	assert.Equal(t, 0, g.Size())
	for _, p := range people {
		assert.Equal(t, 0, p.NumGroups())
	}
}

func TestGroup_CheckConsistency(t *testing.T) {
	g := NewGroup(4)
	p := person(1)
	g.Join(p)
	p.LeaveGroup(4) // one-sided change

	assert.Error(t, g.CheckConsistency())
}

func TestGroup_Recruit(t *testing.T) {
	pool := make([]*agents.Person, 20)
	for i := range pool {
		pool[i] = person(agents.PersonID(i))
	}
	rng := entropy.NewStream(3)

	g := NewGroup(1)
	g.Recruit(pool, 8, rng)
	assert.Equal(t, 8, g.Size())

	seen := map[agents.PersonID]bool{}
	for _, m := range g.Members() {
		assert.False(t, seen[m.ID], "members are distinct")
		seen[m.ID] = true
		assert.True(t, m.InGroup(1))
	}

	g.Recruit(pool, 100, rng)
	assert.Equal(t, 20, g.Size(), "capped by the pool")

	empty := NewGroup(2)
	empty.Recruit(nil, 5, rng)
	assert.Equal(t, 0, empty.Size())
}
