// Package report defines the diagnostic records a simulation produces and
// the sinks that consume them. Sinks are write-only and best-effort: a
// failed write is reported to the caller but never undoes the state change
// that produced the record.
package report

// InteractionKind classifies one student-to-student encounter outcome.
type InteractionKind uint8

const (
	KindTickle        InteractionKind = iota // existing friendship refreshed
	KindMeetFriends                          // first meeting, became friends
	KindMeetNoFriends                        // first meeting, did not
	KindDecay                                // friendship lapsed
)

func (k InteractionKind) String() string {
	switch k {
	case KindTickle:
		return "tickle"
	case KindMeetFriends:
		return "meetFriends"
	case KindMeetNoFriends:
		return "meetNoFriends"
	case KindDecay:
		return "decay"
	default:
		return "unknown"
	}
}

// Interaction is one encounter or decay between two students.
type Interaction struct {
	Year int             `db:"year"`
	A    int64           `db:"a"`
	B    int64           `db:"b"`
	Kind InteractionKind `db:"kind"`
}

// SimilarityRecord is the outcome of one first meeting.
type SimilarityRecord struct {
	Year       int     `db:"year"`
	RacePair   string  `db:"race_pair"` // shared race, or MIXED
	Similarity float64 `db:"similarity"`
	Friends    bool    `db:"friends"`
}

// PersonSnapshot is a student's state at year end.
type PersonSnapshot struct {
	Year         int     `db:"year"`
	ID           int64   `db:"person_id"`
	NumFriends   int     `db:"num_friends"`
	NumGroups    int     `db:"num_groups"`
	Race         string  `db:"race"`
	Gender       string  `db:"gender"`
	Alienation   float64 `db:"alienation"`
	YearInSchool int     `db:"year_in_school"`
}

// FriendshipSnapshot is one friendship at year end, emitted once per edge
// with A < B.
type FriendshipSnapshot struct {
	Year int   `db:"year"`
	A    int64 `db:"a"`
	B    int64 `db:"b"`
}

// ChangeSnapshot compares a student's current attributes with those they
// enrolled with.
type ChangeSnapshot struct {
	Year         int     `db:"year"`
	ID           int64   `db:"person_id"`
	Extroversion float64 `db:"extroversion"`
	NumFriends   int     `db:"num_friends"`
	NumGroups    int     `db:"num_groups"`
	DepChange    float64 `db:"dep_change"`
	IndepChange  float64 `db:"indep_change"`
}

// DepartureReason says why a student left campus.
type DepartureReason string

const (
	Graduated DepartureReason = "graduated"
	Dropout   DepartureReason = "dropout"
)

// Departure records a student leaving, with their final state.
type Departure struct {
	Reason DepartureReason
	Person PersonSnapshot
}
