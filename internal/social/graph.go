package social

import (
	"errors"
	"sort"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/talgya/collegesim/internal/agents"
)

// ErrSelfLoop is returned when a student is befriended with themself.
var ErrSelfLoop = errors.New("friendship graph: self loop")

// Edge is an undirected friendship in canonical form (A < B).
type Edge struct {
	A, B agents.PersonID
}

// FriendshipGraph is the undirected campus friendship network. Nodes are
// student IDs; an edge means mutual friendship and carries no payload.
// The timing of each friendship lives on the students themselves.
type FriendshipGraph struct {
	g *simple.UndirectedGraph
}

// NewFriendshipGraph creates an empty graph.
func NewFriendshipGraph() *FriendshipGraph {
	return &FriendshipGraph{g: simple.NewUndirectedGraph()}
}

// AddNode registers a student. Adding an existing student is a no-op.
func (f *FriendshipGraph) AddNode(id agents.PersonID) {
	if f.g.Node(int64(id)) != nil {
		return
	}
	f.g.AddNode(simple.Node(id))
}

// HasNode reports whether the student is in the graph.
func (f *FriendshipGraph) HasNode(id agents.PersonID) bool {
	return f.g.Node(int64(id)) != nil
}

// RemoveNode removes a student and every incident friendship.
func (f *FriendshipGraph) RemoveNode(id agents.PersonID) {
	f.g.RemoveNode(int64(id))
}

// AddEdge makes a and b friends, adding either node if missing.
func (f *FriendshipGraph) AddEdge(a, b agents.PersonID) error {
	if a == b {
		return ErrSelfLoop
	}
	f.g.SetEdge(simple.Edge{F: simple.Node(a), T: simple.Node(b)})
	return nil
}

// RemoveEdge ends the friendship between a and b, if any.
func (f *FriendshipGraph) RemoveEdge(a, b agents.PersonID) {
	f.g.RemoveEdge(int64(a), int64(b))
}

// HasEdge reports whether a and b are friends.
func (f *FriendshipGraph) HasEdge(a, b agents.PersonID) bool {
	return f.g.HasEdgeBetween(int64(a), int64(b))
}

// Degree returns the number of friends of id.
func (f *FriendshipGraph) Degree(id agents.PersonID) int {
	if !f.HasNode(id) {
		return 0
	}
	return f.g.From(int64(id)).Len()
}

// Neighbors returns the friends of id in ascending order.
func (f *FriendshipGraph) Neighbors(id agents.PersonID) []agents.PersonID {
	if !f.HasNode(id) {
		return nil
	}
	it := f.g.From(int64(id))
	out := make([]agents.PersonID, 0, it.Len())
	for it.Next() {
		out = append(out, agents.PersonID(it.Node().ID()))
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NumNodes returns the number of students in the graph.
func (f *FriendshipGraph) NumNodes() int {
	return f.g.Nodes().Len()
}

// NumEdges returns the number of friendships.
func (f *FriendshipGraph) NumEdges() int {
	return f.g.Edges().Len()
}

// Edges returns every friendship once, sorted by (A, B).
func (f *FriendshipGraph) Edges() []Edge {
	it := f.g.Edges()
	var out []Edge
	for it.Next() {
		e := it.Edge()
		a, b := agents.PersonID(e.From().ID()), agents.PersonID(e.To().ID())
		if a > b {
			a, b = b, a
		}
		out = append(out, Edge{A: a, B: b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}
