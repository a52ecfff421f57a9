package engine

import (
	"container/heap"
	"errors"
)

// BeforeStart is the clock reading before the first task runs. Start-up
// scheduling is relative to it, so a task scheduled 1.5 months in at start
// first runs at month 0.5.
const BeforeStart = -1.0

// ErrNegativeDelay is returned when a task is scheduled in the past.
var ErrNegativeDelay = errors.New("engine: negative schedule delay")

// TaskKind tags a scheduled task.
type TaskKind uint8

const (
	TaskAgentStep TaskKind = iota
	TaskGroupStep
	TaskYearStart
	TaskYearEnd
)

func (k TaskKind) String() string {
	switch k {
	case TaskAgentStep:
		return "agent"
	case TaskGroupStep:
		return "group"
	case TaskYearStart:
		return "year-start"
	case TaskYearEnd:
		return "year-end"
	default:
		return "unknown"
	}
}

// Task is one scheduled step. ID names the person or group for agent and
// group steps and is ignored otherwise.
type Task struct {
	Kind TaskKind
	ID   int64
}

type entry struct {
	at   float64
	seq  uint64
	task Task
}

type taskHeap []entry

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *taskHeap) Push(x any) { *h = append(*h, x.(entry)) }
func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Scheduler is a discrete-event queue over simulated months. Tasks run in
// time order; ties run in the order they were scheduled.
type Scheduler struct {
	now    float64
	seq    uint64
	sealed bool
	queue  taskHeap
}

// NewScheduler returns an empty scheduler with the clock at BeforeStart.
func NewScheduler() *Scheduler {
	return &Scheduler{now: BeforeStart}
}

// Now returns the time of the task most recently returned by Next.
func (s *Scheduler) Now() float64 {
	return s.now
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return len(s.queue)
}

// Sealed reports whether Seal has been called.
func (s *Scheduler) Sealed() bool {
	return s.sealed
}

// ScheduleOnceIn queues t to run delay months from now. Scheduling on a
// sealed scheduler is silently ignored.
func (s *Scheduler) ScheduleOnceIn(delay float64, t Task) error {
	if delay < 0 {
		return ErrNegativeDelay
	}
	if s.sealed {
		return nil
	}
	heap.Push(&s.queue, entry{at: s.now + delay, seq: s.seq, task: t})
	s.seq++
	return nil
}

// Next pops the earliest task and advances the clock to it. It returns
// false when the queue is empty or the scheduler is sealed.
func (s *Scheduler) Next() (Task, bool) {
	if s.sealed || len(s.queue) == 0 {
		return Task{}, false
	}
	e := heap.Pop(&s.queue).(entry)
	s.now = e.at
	return e.task, true
}

// Seal stops the scheduler. Pending tasks are discarded.
func (s *Scheduler) Seal() {
	s.sealed = true
	s.queue = nil
}
