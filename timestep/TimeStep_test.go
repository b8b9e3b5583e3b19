package timestep

import (
	"strings"
	"testing"
)

func TestTransitionString(t *testing.T) {
	transition := Transition{
		State:     []float64{1, 2},
		Action:    []float64{-1},
		Reward:    0.5,
		NextState: []float64{0, 2},
		Done:      true,
	}

	str := transition.String()
	for _, want := range []string{"[1 2]", "[-1]", "0.50", "[0 2]", "true"} {
		if !strings.Contains(str, want) {
			t.Errorf("string: want %q in %q", want, str)
		}
	}
}
