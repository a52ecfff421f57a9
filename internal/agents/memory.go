// Yearly attribute snapshots. Each student remembers what they were like
// entering every school year, so drift can be reported at graduation.
package agents

import "math"

// Snapshot is a frozen copy of the mutable attributes.
type Snapshot struct {
	Independent []float64
	Dependent   []float64 // normalized
}

func (p *Person) snapshot() *Snapshot {
	return &Snapshot{
		Independent: p.Attrs.Independent(),
		Dependent:   p.Attrs.Dependent(),
	}
}

// Year returns the school year (1=freshman, 2=sophomore, ...).
func (p *Person) Year() int {
	return p.year
}

// SetYear sets the school year without validation and remembers the
// current attributes as the state entering that year.
func (p *Person) SetYear(year int) {
	p.year = year
	if year >= 1 && year <= len(p.snapshots) {
		p.snapshots[year-1] = p.snapshot()
	}
}

// IncrementYear promotes the student, possibly to 5 or beyond, remembering
// the attributes entering the new year.
func (p *Person) IncrementYear() {
	if p.year >= 1 && p.year < len(p.snapshots) {
		p.snapshots[p.year] = p.snapshot()
	}
	p.year++
}

// snapshotFor returns the attributes remembered for school year index
// 0..3 (0 = entering freshman year), or nil.
func (p *Person) snapshotFor(index int) *Snapshot {
	if index < 0 || index >= len(p.snapshots) {
		return nil
	}
	return p.snapshots[index]
}

// HasFullData reports whether the snapshots needed for a longitudinal
// comparison (freshman, sophomore and senior entry) all exist. Only such
// students get a change record at graduation.
func (p *Person) HasFullData() bool {
	return p.snapshots[0] != nil && p.snapshots[1] != nil && p.snapshots[3] != nil
}

// Change returns the mean absolute change of the independent and dependent
// attributes since the student entered as a freshman. ok is false for
// students who were not enrolled as freshmen.
func (p *Person) Change() (indep, dep float64, ok bool) {
	base := p.snapshots[0]
	if base == nil {
		return 0, 0, false
	}
	return meanAbsDiff(p.Attrs.Independent(), base.Independent),
		meanAbsDiff(p.Attrs.Dependent(), base.Dependent), true
}

func meanAbsDiff(now, then []float64) float64 {
	if len(now) == 0 {
		return 0
	}
	total := 0.0
	for i := range now {
		total += math.Abs(now[i] - then[i])
	}
	return total / float64(len(now))
}
