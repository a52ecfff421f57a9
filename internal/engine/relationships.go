// Relationship dynamics: encounters, friendship formation, attribute drift
// between friends, and decay of neglected friendships.
package engine

import (
	"context"
	"fmt"

	"github.com/talgya/collegesim/internal/agents"
	"github.com/talgya/collegesim/internal/logging"
	"github.com/talgya/collegesim/internal/report"
)

// driftMaxFraction bounds how far one drift step moves a value toward the
// friends' mean.
const driftMaxFraction = 0.2

// agentStep is one student's month: meet people from their groups and from
// campus at large, drift toward friends, let stale friendships lapse.
func (s *Simulation) agentStep(id agents.PersonID) {
	p, ok := s.personIndex[id]
	if !ok {
		// Graduated or dropped out since this step was queued.
		return
	}

	if pool := s.groupPool(p); len(pool) > 1 {
		s.encounter(p, s.Params.NumToMeetGroup, pool)
	}
	if len(s.people) > 1 {
		s.encounter(p, s.Params.NumToMeetPop, s.people)
	}
	s.drift(p)
	s.decay(p)

	now := s.sched.Now()
	s.log.Log(context.Background(), logging.LevelTrace, "agent step",
		"person", id, "friends", s.graph.Degree(id), "groups", p.NumGroups(), "time", SimTime(now))
	switch {
	case NextMonthInAcademicYear(now):
		s.schedule(monthlyDelay, Task{Kind: TaskAgentStep, ID: int64(id)})
	case !IsLastYear(now, s.Params.MaxYears):
		s.schedule(summerDelay, Task{Kind: TaskAgentStep, ID: int64(id)})
	}
}

// groupPool returns everyone p shares a group with, p included, once each
// in membership order.
func (s *Simulation) groupPool(p *agents.Person) []*agents.Person {
	seen := make(map[agents.PersonID]bool)
	var pool []*agents.Person
	for _, gid := range p.Groups() {
		g, ok := s.groupIndex[gid]
		if !ok {
			continue
		}
		for _, m := range g.Members() {
			if !seen[m.ID] {
				seen[m.ID] = true
				pool = append(pool, m)
			}
		}
	}
	return pool
}

// encounter has p run into k random members of pool (never p itself).
// Friends are tickled; strangers meet.
func (s *Simulation) encounter(p *agents.Person, k int, pool []*agents.Person) {
	if k > len(pool) {
		k = len(pool)
	}
	for i := 0; i < k; i++ {
		other := pool[s.rng.Intn(len(pool))]
		for other.ID == p.ID {
			other = pool[s.rng.Intn(len(pool))]
		}
		if s.graph.HasEdge(p.ID, other.ID) {
			s.tickle(p, other)
		} else {
			s.meet(p, other)
		}
	}
}

// tickle refreshes an existing friendship.
func (s *Simulation) tickle(a, b *agents.Person) {
	now := s.sched.Now()
	a.Touch(b.ID, now)
	b.Touch(a.ID, now)
	s.emitInteraction(a.ID, b.ID, report.KindTickle)
}

// meet is a first (or renewed) meeting between strangers. They become
// friends when a uniform draw lands at or below the acceptance
// probability for their similarity.
func (s *Simulation) meet(a, b *agents.Person) {
	sim := agents.Similarity(a, b, s.Params.Weights)
	accept := agents.AcceptProbability(sim, s.Params.FriendshipCoefficient, s.Params.FriendshipIntercept)
	friends := s.rng.Float() <= accept
	s.Stats.Meetings++

	kind := report.KindMeetNoFriends
	if friends {
		s.befriend(a, b)
		kind = report.KindMeetFriends
	}

	s.sinkErr("similarity", s.sink.Similarity(report.SimilarityRecord{
		Year:       s.Year(),
		RacePair:   agents.RacePair(a, b),
		Similarity: sim,
		Friends:    friends,
	}))
	s.emitInteraction(a.ID, b.ID, kind)
}

// befriend adds the edge and stamps both interaction records.
func (s *Simulation) befriend(a, b *agents.Person) {
	if err := s.graph.AddEdge(a.ID, b.ID); err != nil {
		panic(fmt.Sprintf("engine: invariant violated: befriend %d-%d: %v", a.ID, b.ID, err))
	}
	now := s.sched.Now()
	a.Touch(b.ID, now)
	b.Touch(a.ID, now)
	s.Stats.Friendships++
	s.checkEdge(a, b)
}

// drift nudges p's mutable attributes toward the mean of p's friends. Each
// position changes with probability DriftLikelihood, by a random fraction
// below driftMaxFraction of the gap.
func (s *Simulation) drift(p *agents.Person) {
	friendIDs := s.graph.Neighbors(p.ID)
	if len(friendIDs) == 0 {
		return
	}
	friends := make([]*agents.Person, 0, len(friendIDs))
	for _, id := range friendIDs {
		if f, ok := s.personIndex[id]; ok {
			friends = append(friends, f)
		}
	}
	if len(friends) == 0 {
		return
	}
	likelihood := s.Params.DriftLikelihood

	for i := 0; i < p.Attrs.NumIndependent(); i++ {
		mean := 0.0
		for _, f := range friends {
			mean += f.Attrs.IndependentAt(i)
		}
		mean /= float64(len(friends))

		if !s.rng.Chance(likelihood) {
			continue
		}
		own := p.Attrs.IndependentAt(i)
		frac := s.rng.Float() * driftMaxFraction
		if err := p.Attrs.SetIndependent(i, own+frac*(mean-own)); err != nil {
			s.log.Warn("independent drift rejected", "person", p.ID, "error", err)
		}
	}

	if p.Attrs.NumDependent() < 2 {
		return
	}
	friendDeps := make([][]float64, len(friends))
	for j, f := range friends {
		friendDeps[j] = f.Attrs.Dependent()
	}
	for i := 0; i < p.Attrs.NumDependent(); i++ {
		mean := 0.0
		for _, d := range friendDeps {
			mean += d[i]
		}
		mean /= float64(len(friendDeps))

		if !s.rng.Chance(likelihood) {
			continue
		}
		own := p.Attrs.Dependent()[i]
		frac := s.rng.Float() * driftMaxFraction
		if err := p.Attrs.SetDependent(i, own+frac*(mean-own)); err != nil {
			s.log.Warn("dependent drift rejected", "person", p.ID, "error", err)
		}
	}
}

// decay ends p's friendships that have gone DecayThreshold months or more
// without an interaction.
func (s *Simulation) decay(p *agents.Person) {
	now := s.sched.Now()
	threshold := float64(s.Params.DecayThreshold)
	for _, peer := range p.Peers() {
		last, _ := p.LastInteraction(peer)
		if now-last < threshold {
			continue
		}
		s.graph.RemoveEdge(p.ID, peer)
		p.Forget(peer)
		if q, ok := s.personIndex[peer]; ok {
			q.Forget(p.ID)
			s.checkEdge(p, q)
		}
		s.Stats.Decays++
		s.emitInteraction(p.ID, peer, report.KindDecay)
	}
}

// checkEdge panics when the graph and the two interaction records disagree
// about whether a and b are friends.
func (s *Simulation) checkEdge(a, b *agents.Person) {
	edge := s.graph.HasEdge(a.ID, b.ID)
	_, ab := a.LastInteraction(b.ID)
	_, ba := b.LastInteraction(a.ID)
	if edge != ab || edge != ba {
		panic(fmt.Sprintf("engine: invariant violated: edge %d-%d=%t, records %t/%t",
			a.ID, b.ID, edge, ab, ba))
	}
}

// groupStep is a group's monthly bookkeeping. Groups do not act; the step
// only verifies membership and reschedules.
func (s *Simulation) groupStep(id agents.GroupID) {
	g, ok := s.groupIndex[id]
	if !ok {
		return
	}
	if err := g.CheckConsistency(); err != nil {
		panic(fmt.Sprintf("engine: invariant violated: %v", err))
	}
	s.log.Debug("group step", "group", id, "size", g.Size(), "time", SimTime(s.sched.Now()))

	now := s.sched.Now()
	switch {
	case NextMonthInAcademicYear(now):
		s.schedule(monthlyDelay, Task{Kind: TaskGroupStep, ID: int64(id)})
	case !IsLastYear(now, s.Params.MaxYears):
		s.schedule(summerDelay, Task{Kind: TaskGroupStep, ID: int64(id)})
	}
}

// forceOppositeRaceFriends gives p n friendships with random students of
// the other race who are not yet p's friends.
func (s *Simulation) forceOppositeRaceFriends(p *agents.Person, n int) {
	for i := 0; i < n; i++ {
		var eligible []*agents.Person
		for _, q := range s.people {
			if q.Race != p.Race && !s.graph.HasEdge(p.ID, q.ID) {
				eligible = append(eligible, q)
			}
		}
		if len(eligible) == 0 {
			s.log.Warn("no opposite-race student available", "person", p.ID, "forced", i, "wanted", n)
			return
		}
		s.befriend(p, eligible[s.rng.Intn(len(eligible))])
	}
}
