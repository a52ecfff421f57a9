// Package agents provides the student model: trait vectors, demographics,
// perceived similarity, alienation, and the spawner that enrolls new students.
package agents

import (
	"fmt"
	"sort"
	"strings"
)

// PersonID is a unique identifier for a student. IDs are handed out in
// increasing order and never reused.
type PersonID int64

// GroupID is a unique identifier for a campus group.
type GroupID int64

// Race is the two-valued race model used by the similarity metric.
type Race uint8

const (
	RaceWhite    Race = 0
	RaceMinority Race = 1
)

func (r Race) String() string {
	switch r {
	case RaceWhite:
		return "WHITE"
	case RaceMinority:
		return "MINORITY"
	default:
		return "UNKNOWN"
	}
}

// Gender is the two-valued gender model used by the similarity metric.
type Gender uint8

const (
	GenderMale   Gender = 0
	GenderFemale Gender = 1
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "MALE"
	case GenderFemale:
		return "FEMALE"
	default:
		return "UNKNOWN"
	}
}

// Person is a student enrolled on campus.
type Person struct {
	ID           PersonID
	Race         Race
	Gender       Gender
	Extroversion float64 // 0.0–1.0
	Attrs        *Attributes

	year      int
	snapshots [4]*Snapshot // attribute state entering each school year

	groups []GroupID // membership, in join order

	// Simulated month of the last tickle or first meeting, per friend.
	// An entry exists exactly when the friendship edge exists.
	lastInteraction map[PersonID]float64
}

// NewPerson creates a person with no year, groups, or friends.
func NewPerson(id PersonID, race Race, gender Gender, extroversion float64, attrs *Attributes) *Person {
	return &Person{
		ID:              id,
		Race:            race,
		Gender:          gender,
		Extroversion:    extroversion,
		Attrs:           attrs,
		lastInteraction: make(map[PersonID]float64),
	}
}

// Group membership

// JoinGroup records membership in g. Called by the group itself so that
// both sides change together.
func (p *Person) JoinGroup(g GroupID) {
	if p.InGroup(g) {
		return
	}
	p.groups = append(p.groups, g)
}

// LeaveGroup clears the membership record for g.
func (p *Person) LeaveGroup(g GroupID) {
	for i, id := range p.groups {
		if id == g {
			p.groups = append(p.groups[:i], p.groups[i+1:]...)
			return
		}
	}
}

// InGroup reports whether p is a member of g.
func (p *Person) InGroup(g GroupID) bool {
	for _, id := range p.groups {
		if id == g {
			return true
		}
	}
	return false
}

// Groups returns the person's group memberships in join order.
func (p *Person) Groups() []GroupID {
	out := make([]GroupID, len(p.groups))
	copy(out, p.groups)
	return out
}

// NumGroups returns the number of group memberships.
func (p *Person) NumGroups() int {
	return len(p.groups)
}

// Interaction bookkeeping

// Touch records an interaction with peer at simulated month now.
func (p *Person) Touch(peer PersonID, now float64) {
	p.lastInteraction[peer] = now
}

// Forget drops the interaction entry for peer.
func (p *Person) Forget(peer PersonID) {
	delete(p.lastInteraction, peer)
}

// LastInteraction returns the month of the last interaction with peer.
func (p *Person) LastInteraction(peer PersonID) (float64, bool) {
	t, ok := p.lastInteraction[peer]
	return t, ok
}

// Peers returns the ids with a recorded interaction, in ascending order.
func (p *Person) Peers() []PersonID {
	out := make([]PersonID, 0, len(p.lastInteraction))
	for id := range p.lastInteraction {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NumPeers returns the number of recorded interactions.
func (p *Person) NumPeers() int {
	return len(p.lastInteraction)
}

func (p *Person) String() string {
	peers := p.Peers()
	if len(peers) == 0 {
		return fmt.Sprintf("Person %d (lonely with no friends)", p.ID)
	}
	ids := make([]string, len(peers))
	for i, id := range peers {
		ids[i] = fmt.Sprintf("%d", id)
	}
	return fmt.Sprintf("Person %d (friends with %s)", p.ID, strings.Join(ids, ","))
}
