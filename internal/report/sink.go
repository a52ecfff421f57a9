package report

import "errors"

// Sink consumes diagnostic records. Implementations need not be safe for
// concurrent use; the simulation calls them from one goroutine.
type Sink interface {
	Interaction(Interaction) error
	Similarity(SimilarityRecord) error
	People([]PersonSnapshot) error
	Friendships([]FriendshipSnapshot) error
	Changes([]ChangeSnapshot) error
	Departure(Departure) error
	// Flush is called at the end of every simulated year.
	Flush() error
	Close() error
}

// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Interaction(Interaction) error { return nil }
func (Discard) Similarity(SimilarityRecord) error { return nil }
func (Discard) People([]PersonSnapshot) error { return nil }
func (Discard) Friendships([]FriendshipSnapshot) error { return nil }
func (Discard) Changes([]ChangeSnapshot) error { return nil }
func (Discard) Departure(Departure) error { return nil }
func (Discard) Flush() error { return nil }
func (Discard) Close() error { return nil }

// Multi fans every record out to several sinks. Every sink receives every
// record even when an earlier one fails; the failures are joined.
type Multi []Sink

func (m Multi) each(fn func(Sink) error) error {
	var errs []error
	for _, s := range m {
		if err := fn(s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Interaction(r Interaction) error {
	return m.each(func(s Sink) error { return s.Interaction(r) })
}

func (m Multi) Similarity(r SimilarityRecord) error {
	return m.each(func(s Sink) error { return s.Similarity(r) })
}

func (m Multi) People(r []PersonSnapshot) error {
	return m.each(func(s Sink) error { return s.People(r) })
}

func (m Multi) Friendships(r []FriendshipSnapshot) error {
	return m.each(func(s Sink) error { return s.Friendships(r) })
}

func (m Multi) Changes(r []ChangeSnapshot) error {
	return m.each(func(s Sink) error { return s.Changes(r) })
}

func (m Multi) Departure(r Departure) error {
	return m.each(func(s Sink) error { return s.Departure(r) })
}

func (m Multi) Flush() error {
	return m.each(func(s Sink) error { return s.Flush() })
}

func (m Multi) Close() error {
	return m.each(func(s Sink) error { return s.Close() })
}

// MemorySink keeps every record in memory. Used by tests and by callers
// that post-process a run in-process.
type MemorySink struct {
	Interactions   []Interaction
	Similarities   []SimilarityRecord
	PeopleSets     [][]PersonSnapshot
	FriendshipSets [][]FriendshipSnapshot
	ChangeSets     [][]ChangeSnapshot
	Departures     []Departure
	Flushes        int
	Closed         bool
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (m *MemorySink) Interaction(r Interaction) error {
	m.Interactions = append(m.Interactions, r)
	return nil
}

func (m *MemorySink) Similarity(r SimilarityRecord) error {
	m.Similarities = append(m.Similarities, r)
	return nil
}

func (m *MemorySink) People(r []PersonSnapshot) error {
	m.PeopleSets = append(m.PeopleSets, r)
	return nil
}

func (m *MemorySink) Friendships(r []FriendshipSnapshot) error {
	m.FriendshipSets = append(m.FriendshipSets, r)
	return nil
}

func (m *MemorySink) Changes(r []ChangeSnapshot) error {
	m.ChangeSets = append(m.ChangeSets, r)
	return nil
}

func (m *MemorySink) Departure(r Departure) error {
	m.Departures = append(m.Departures, r)
	return nil
}

func (m *MemorySink) Flush() error {
	m.Flushes++
	return nil
}

func (m *MemorySink) Close() error {
	m.Closed = true
	return nil
}

// CountKind returns how many interactions of kind k were recorded.
func (m *MemorySink) CountKind(k InteractionKind) int {
	n := 0
	for _, r := range m.Interactions {
		if r.Kind == k {
			n++
		}
	}
	return n
}
