// Groups are clubs, teams and cohorts. A group is a biased encounter pool:
// members meet each other more often than they meet the campus at large.
package social

import (
	"fmt"

	"github.com/talgya/collegesim/internal/agents"
	"github.com/talgya/collegesim/internal/entropy"
)

// Group is a named cohort of students. Membership is kept on both sides:
// every member lists the group, and every student listing the group is a
// member. Only Group methods change membership.
type Group struct {
	ID      agents.GroupID
	members []*agents.Person
}

// NewGroup creates an empty group.
func NewGroup(id agents.GroupID) *Group {
	return &Group{ID: id}
}

// Join adds p to the group. Joining twice is a no-op.
func (g *Group) Join(p *agents.Person) {
	if g.Has(p) {
		return
	}
	g.members = append(g.members, p)
	p.JoinGroup(g.ID)
}

// Leave removes p from the group and clears p's membership record.
func (g *Group) Leave(p *agents.Person) {
	for i, m := range g.members {
		if m.ID == p.ID {
			g.members = append(g.members[:i], g.members[i+1:]...)
			break
		}
	}
	p.LeaveGroup(g.ID)
}

// Has reports whether p is a member.
func (g *Group) Has(p *agents.Person) bool {
	for _, m := range g.members {
		if m.ID == p.ID {
			return true
		}
	}
	return false
}

// Members returns the members in join order.
func (g *Group) Members() []*agents.Person {
	out := make([]*agents.Person, len(g.members))
	copy(out, g.members)
	return out
}

// Size returns the number of members.
func (g *Group) Size() int {
	return len(g.members)
}

// Dissolve removes every member, clearing their back-references. The group
// is empty afterwards and is normally discarded.
func (g *Group) Dissolve() {
	for _, m := range g.members {
		m.LeaveGroup(g.ID)
	}
	g.members = nil
}

// Recruit adds up to n distinct students drawn uniformly without
// replacement from pool. Students already in the group count toward
// neither n nor the draw.
func (g *Group) Recruit(pool []*agents.Person, n int, rng *entropy.Stream) {
	candidates := make([]*agents.Person, 0, len(pool))
	for _, p := range pool {
		if !g.Has(p) {
			candidates = append(candidates, p)
		}
	}
	if n > len(candidates) {
		n = len(candidates)
	}
	// Partial Fisher-Yates: the first n slots end up a uniform sample.
	for i := 0; i < n; i++ {
		j := i + rng.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
		g.Join(candidates[i])
	}
}

// CheckConsistency verifies that every member lists this group.
func (g *Group) CheckConsistency() error {
	for _, m := range g.members {
		if !m.InGroup(g.ID) {
			return fmt.Errorf("group %d: member %d has no back-reference", g.ID, m.ID)
		}
	}
	return nil
}
