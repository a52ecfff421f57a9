// Simulation ties the campus together and dispatches scheduled steps.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/talgya/collegesim/internal/agents"
	"github.com/talgya/collegesim/internal/config"
	"github.com/talgya/collegesim/internal/entropy"
	"github.com/talgya/collegesim/internal/report"
	"github.com/talgya/collegesim/internal/social"
)

// Simulation holds the complete campus state. It is driven from a single
// goroutine and does no locking.
type Simulation struct {
	Params *config.Params

	rng     *entropy.Stream
	sched   *Scheduler
	spawner *agents.Spawner
	graph   *social.FriendshipGraph
	sink    report.Sink
	log     *slog.Logger

	// Roster in enrollment order, plus lookup.
	people      []*agents.Person
	personIndex map[agents.PersonID]*agents.Person

	groups      []*social.Group
	groupIndex  map[agents.GroupID]*social.Group
	nextGroupID agents.GroupID

	started bool

	// OnTask, if set, is called before every dispatched task.
	OnTask func(now float64, t Task)

	Stats SimStats
}

// SimStats tracks aggregate run statistics.
type SimStats struct {
	Enrolled        int `json:"enrolled"`
	Graduated       int `json:"graduated"`
	DroppedOut      int `json:"dropped_out"`
	GroupsFounded   int `json:"groups_founded"`
	GroupsDissolved int `json:"groups_dissolved"`
	Meetings        int `json:"meetings"`
	Friendships     int `json:"friendships_formed"`
	Decays          int `json:"decays"`
	YearsCompleted  int `json:"years_completed"`
	SinkErrors      int `json:"sink_errors"`
}

// New creates a Simulation from validated parameters. The sink receives
// every report record; logger may be nil.
func New(p *config.Params, sink report.Sink, logger *slog.Logger) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	if sink == nil {
		sink = report.Discard{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	rng := entropy.NewStream(p.Seed)
	return &Simulation{
		Params:      p,
		rng:         rng,
		sched:       NewScheduler(),
		spawner:     agents.NewSpawner(rng, p),
		graph:       social.NewFriendshipGraph(),
		sink:        sink,
		log:         logger,
		personIndex: make(map[agents.PersonID]*agents.Person),
		groupIndex:  make(map[agents.GroupID]*social.Group),
	}, nil
}

// Start creates the initial population and groups and queues the first
// steps. It is called by Run if needed and does nothing the second time.
func (s *Simulation) Start() {
	if s.started {
		return
	}
	s.started = true

	for _, p := range s.spawner.SpawnBatch(s.Params.InitNumPeople, 0) {
		s.addPerson(p)
		s.schedule(initialPersonDelay, Task{Kind: TaskAgentStep, ID: int64(p.ID)})
	}
	for i := 0; i < s.Params.InitNumGroups; i++ {
		g := s.foundGroup()
		s.schedule(initialGroupDelay, Task{Kind: TaskGroupStep, ID: int64(g.ID)})
	}
	s.schedule(initialControlDelay, Task{Kind: TaskYearStart})

	s.log.Info("simulation started",
		"people", len(s.people),
		"groups", len(s.groups),
		"max_years", s.Params.MaxYears,
		"seed", s.rng.Seed(),
	)
}

// Run dispatches tasks until the schedule is exhausted or sealed, or ctx
// is done. Cancellation takes effect between tasks and seals the
// scheduler.
func (s *Simulation) Run(ctx context.Context) error {
	s.Start()
	for {
		select {
		case <-ctx.Done():
			s.sched.Seal()
			s.log.Info("simulation cancelled", "time", SimTime(s.sched.Now()))
			return ctx.Err()
		default:
		}
		if !s.Step() {
			break
		}
	}
	s.log.Info("simulation finished",
		"time", SimTime(s.sched.Now()),
		"people", len(s.people),
		"friendships", s.graph.NumEdges(),
	)
	return nil
}

// Step runs the next scheduled task. It returns false when nothing is left
// to run.
func (s *Simulation) Step() bool {
	t, ok := s.sched.Next()
	if !ok {
		return false
	}
	if s.OnTask != nil {
		s.OnTask(s.sched.Now(), t)
	}
	s.dispatch(t)
	return true
}

func (s *Simulation) dispatch(t Task) {
	switch t.Kind {
	case TaskAgentStep:
		s.agentStep(agents.PersonID(t.ID))
	case TaskGroupStep:
		s.groupStep(agents.GroupID(t.ID))
	case TaskYearStart:
		s.yearStart()
	case TaskYearEnd:
		s.yearEnd()
	default:
		panic(fmt.Sprintf("engine: unknown task kind %d", t.Kind))
	}
}

// schedule queues a task; delays are internal constants, so a rejected
// delay is a programming error.
func (s *Simulation) schedule(delay float64, t Task) {
	if err := s.sched.ScheduleOnceIn(delay, t); err != nil {
		panic(fmt.Sprintf("engine: schedule %s: %v", t.Kind, err))
	}
}

// Now returns the current simulated month.
func (s *Simulation) Now() float64 {
	return s.sched.Now()
}

// Year returns the zero-based current simulated year.
func (s *Simulation) Year() int {
	return CurrentYear(s.sched.Now())
}

// Sealed reports whether the run has stopped rescheduling.
func (s *Simulation) Sealed() bool {
	return s.sched.Sealed()
}

// People returns the roster in enrollment order.
func (s *Simulation) People() []*agents.Person {
	out := make([]*agents.Person, len(s.people))
	copy(out, s.people)
	return out
}

// Person looks up an enrolled student.
func (s *Simulation) Person(id agents.PersonID) (*agents.Person, bool) {
	p, ok := s.personIndex[id]
	return p, ok
}

// Groups returns the active groups in founding order.
func (s *Simulation) Groups() []*social.Group {
	out := make([]*social.Group, len(s.groups))
	copy(out, s.groups)
	return out
}

// Graph exposes the friendship graph for inspection.
func (s *Simulation) Graph() *social.FriendshipGraph {
	return s.graph
}

func (s *Simulation) addPerson(p *agents.Person) {
	s.people = append(s.people, p)
	s.personIndex[p.ID] = p
	s.graph.AddNode(p.ID)
}

// removePerson takes p off campus: out of every group, out of the graph and
// out of every peer's interaction record.
func (s *Simulation) removePerson(p *agents.Person) {
	for _, gid := range p.Groups() {
		if g, ok := s.groupIndex[gid]; ok {
			g.Leave(p)
		} else {
			p.LeaveGroup(gid)
		}
	}
	for _, peer := range p.Peers() {
		if q, ok := s.personIndex[peer]; ok {
			q.Forget(p.ID)
		}
		p.Forget(peer)
	}
	s.graph.RemoveNode(p.ID)

	delete(s.personIndex, p.ID)
	for i, q := range s.people {
		if q.ID == p.ID {
			s.people = append(s.people[:i], s.people[i+1:]...)
			break
		}
	}
}

// foundGroup creates a group seeded with a random selection of the
// current roster.
func (s *Simulation) foundGroup() *social.Group {
	g := social.NewGroup(s.nextGroupID)
	s.nextGroupID++

	size := s.Params.GroupMinSize
	if span := s.Params.GroupMaxSize - s.Params.GroupMinSize; span > 0 {
		size += s.rng.Intn(span + 1)
	}
	g.Recruit(s.people, size, s.rng)

	s.groups = append(s.groups, g)
	s.groupIndex[g.ID] = g
	s.Stats.GroupsFounded++
	return g
}

func (s *Simulation) dissolveGroup(g *social.Group) {
	g.Dissolve()
	delete(s.groupIndex, g.ID)
	for i, q := range s.groups {
		if q.ID == g.ID {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			break
		}
	}
	s.Stats.GroupsDissolved++
}

// report helpers: sink failures are logged and counted, never fatal.

func (s *Simulation) sinkErr(what string, err error) {
	if err == nil {
		return
	}
	s.Stats.SinkErrors++
	s.log.Warn("report write failed", "record", what, "error", err)
}

func (s *Simulation) emitInteraction(a, b agents.PersonID, kind report.InteractionKind) {
	s.sinkErr("interaction", s.sink.Interaction(report.Interaction{
		Year: s.Year(), A: int64(a), B: int64(b), Kind: kind,
	}))
}
