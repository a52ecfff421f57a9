// Alienation measures how isolated a student feels, from friend count and
// extroversion. Drives the yearly dropout draw.
package agents

// DefaultRequiredNumFriends is the friend count at which a student with
// extroversion 1 stops feeling alienated.
const DefaultRequiredNumFriends = 3.0

// Alienation returns a value in [0,1]: extroversion divided by the fraction
// of the required friends the student has, capped at 1. A student with no
// friends is maximally alienated.
func Alienation(extroversion float64, numFriends int, requiredNumFriends float64) float64 {
	if numFriends <= 0 {
		return 1
	}
	friendFraction := float64(numFriends) / requiredNumFriends
	alienation := extroversion / friendFraction
	if alienation > 1 {
		return 1
	}
	return alienation
}

// Alienation returns the person's alienation given their current number of
// friends.
func (p *Person) Alienation(numFriends int, requiredNumFriends float64) float64 {
	return Alienation(p.Extroversion, numFriends, requiredNumFriends)
}
