// Package timestep implements the transitions a world model learns
// from.
package timestep

import "fmt"

// Transition is a single (s, a, r, s', done) tuple. Done is true when
// s' ended the episode.
type Transition struct {
	State     []float64
	Action    []float64
	Reward    float64
	NextState []float64
	Done      bool
}

// String implements the fmt.Stringer interface
func (t Transition) String() string {
	return fmt.Sprintf("Transition | State: %v  |  Action: %v  |  "+
		"Reward: %.2f  |  Next State: %v  |  Done: %v", t.State, t.Action,
		t.Reward, t.NextState, t.Done)
}
