// Population dynamics: the yearly cycle of promotion, enrollment, group
// founding, graduation, dropout and group dissolution.
package engine

import (
	"github.com/talgya/collegesim/internal/agents"
	"github.com/talgya/collegesim/internal/report"
	"github.com/talgya/collegesim/internal/social"
)

// graduationYear is the school year at which a student leaves with a degree.
const graduationYear = 4

// yearStart opens a school year: everyone moves up a year, the freshman
// class enrolls and new groups form.
func (s *Simulation) yearStart() {
	now := s.sched.Now()
	if IsEndOfSim(now, s.Params.MaxYears) {
		s.sched.Seal()
		return
	}

	for _, p := range s.people {
		p.IncrementYear()
	}

	freshmen := s.spawner.SpawnBatch(s.Params.NumFreshmenPerYear, 1)
	for _, p := range freshmen {
		s.addPerson(p)
		s.schedule(freshmanDelay, Task{Kind: TaskAgentStep, ID: int64(p.ID)})
	}
	s.Stats.Enrolled += len(freshmen)
	if n := s.Params.ForcedOppositeRace; n > 0 {
		for _, p := range freshmen {
			s.forceOppositeRaceFriends(p, n)
		}
	}

	for i := 0; i < s.Params.NumNewGroupsPerYear; i++ {
		g := s.foundGroup()
		s.schedule(newGroupDelay, Task{Kind: TaskGroupStep, ID: int64(g.ID)})
	}

	s.schedule(MonthsInAcademicYear, Task{Kind: TaskYearEnd})

	s.log.Info("year started",
		"year", CurrentYear(now),
		"time", SimTime(now),
		"people", len(s.people),
		"freshmen", len(freshmen),
		"groups", len(s.groups),
	)
}

// yearEnd closes a school year: snapshots go to the sink, seniors graduate,
// alienated students may drop out and some groups dissolve.
func (s *Simulation) yearEnd() {
	now := s.sched.Now()
	if IsEndOfSim(now, s.Params.MaxYears) {
		s.sched.Seal()
		return
	}
	year := CurrentYear(now)

	s.emitSnapshots(year)

	var leaving []*agents.Person
	graduated, droppedOut := 0, 0
	for _, p := range s.people {
		if p.Year() >= graduationYear {
			s.emitDeparture(report.Graduated, year, p)
			leaving = append(leaving, p)
			graduated++
			continue
		}
		threshold := s.Params.DropoutRate*s.alienation(p) + s.Params.DropoutIntercept
		if s.rng.Float() <= threshold {
			s.emitDeparture(report.Dropout, year, p)
			leaving = append(leaving, p)
			droppedOut++
		}
	}

	var dissolving []*social.Group
	for _, g := range s.groups {
		if s.rng.FloatIn(true, true) > 1-s.Params.GroupDissolveProb {
			dissolving = append(dissolving, g)
		}
	}
	for _, g := range dissolving {
		s.dissolveGroup(g)
	}
	for _, p := range leaving {
		s.removePerson(p)
	}
	s.Stats.Graduated += graduated
	s.Stats.DroppedOut += droppedOut
	s.Stats.YearsCompleted++

	s.sinkErr("flush", s.sink.Flush())
	s.schedule(MonthsInSummer, Task{Kind: TaskYearStart})

	s.log.Info("year ended",
		"year", year,
		"time", SimTime(now),
		"graduated", graduated,
		"dropped_out", droppedOut,
		"groups_dissolved", len(dissolving),
		"people", len(s.people),
		"friendships", s.graph.NumEdges(),
	)
}

func (s *Simulation) alienation(p *agents.Person) float64 {
	return p.Alienation(s.graph.Degree(p.ID), s.Params.RequiredNumFriends)
}

func (s *Simulation) personSnapshot(year int, p *agents.Person) report.PersonSnapshot {
	return report.PersonSnapshot{
		Year:         year,
		ID:           int64(p.ID),
		NumFriends:   s.graph.Degree(p.ID),
		NumGroups:    p.NumGroups(),
		Race:         p.Race.String(),
		Gender:       p.Gender.String(),
		Alienation:   s.alienation(p),
		YearInSchool: p.Year(),
	}
}

// emitSnapshots writes the year-end state: every student, every
// friendship once, and the attribute change of each graduating senior with
// full yearly data.
func (s *Simulation) emitSnapshots(year int) {
	people := make([]report.PersonSnapshot, len(s.people))
	var changes []report.ChangeSnapshot
	for i, p := range s.people {
		people[i] = s.personSnapshot(year, p)
		if p.Year() < graduationYear || !p.HasFullData() {
			continue
		}
		if indep, dep, ok := p.Change(); ok {
			changes = append(changes, report.ChangeSnapshot{
				Year:         year,
				ID:           int64(p.ID),
				Extroversion: p.Extroversion,
				NumFriends:   people[i].NumFriends,
				NumGroups:    people[i].NumGroups,
				DepChange:    dep,
				IndepChange:  indep,
			})
		}
	}
	s.sinkErr("people", s.sink.People(people))

	edges := s.graph.Edges()
	friendships := make([]report.FriendshipSnapshot, len(edges))
	for i, e := range edges {
		friendships[i] = report.FriendshipSnapshot{Year: year, A: int64(e.A), B: int64(e.B)}
	}
	s.sinkErr("friendships", s.sink.Friendships(friendships))

	if len(changes) > 0 {
		s.sinkErr("changes", s.sink.Changes(changes))
	}
}

func (s *Simulation) emitDeparture(reason report.DepartureReason, year int, p *agents.Person) {
	s.sinkErr("departure", s.sink.Departure(report.Departure{
		Reason: reason,
		Person: s.personSnapshot(year, p),
	}))
}
