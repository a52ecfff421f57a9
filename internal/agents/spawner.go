// Student spawning: samples traits, race and gender for newly enrolled
// students.
package agents

import (
	"github.com/talgya/collegesim/internal/config"
	"github.com/talgya/collegesim/internal/entropy"
)

// Spawner creates students for the simulation. It draws from the run's
// shared random stream so that enrollment is reproducible from the seed.
type Spawner struct {
	rng    *entropy.Stream
	params *config.Params
	nextID PersonID
}

// NewSpawner creates a spawner issuing IDs from 0.
func NewSpawner(rng *entropy.Stream, params *config.Params) *Spawner {
	return &Spawner{rng: rng, params: params}
}

// Spawn creates one student in the given school year.
func (s *Spawner) Spawn(year int) *Person {
	id := s.nextID
	s.nextID++

	constant := make([]bool, s.params.ConstantAttributePool)
	for i := range constant {
		constant[i] = s.rng.Bool()
	}

	// Degrees are drawn from (0, 1]: a student has every attribute to some
	// nonzero extent.
	independent := make([]float64, s.params.IndependentAttrPool)
	for i := range independent {
		independent[i] = s.rng.FloatIn(false, true)
	}
	dependent := make([]float64, s.params.DependentAttributePool)
	for i := range dependent {
		dependent[i] = s.rng.FloatIn(false, true)
	}

	race := RaceMinority
	if s.rng.Chance(s.params.ProbabilityWhite) {
		race = RaceWhite
	}
	gender := GenderMale
	if s.rng.Chance(s.params.ProbabilityFemale) {
		gender = GenderFemale
	}

	p := NewPerson(id, race, gender, s.params.Extroversion,
		NewAttributes(constant, independent, dependent))
	p.SetYear(year)
	return p
}

// SpawnBatch creates count students. year <= 0 assigns each a uniformly
// random year from 1 to 4.
func (s *Spawner) SpawnBatch(count, year int) []*Person {
	people := make([]*Person, 0, count)
	for i := 0; i < count; i++ {
		if year > 0 {
			people = append(people, s.Spawn(year))
			continue
		}
		// Traits are drawn before the year, as for any other student.
		p := s.Spawn(0)
		p.SetYear(s.rng.Intn(4) + 1)
		people = append(people, p)
	}
	return people
}
