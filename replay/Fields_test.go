package replay

import "testing"

func TestFieldsValidate(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
		valid  bool
	}{
		{"canonical", NewFields(4, 2), true},
		{"missing reward", Fields{State: 4, Action: 2, NextState: 4}, false},
		{"missing all", Fields{}, false},
		{"zero action", Fields{State: 4, Action: 0, NextState: 4, Reward: 1},
			false},
		{"next state mismatch", Fields{State: 4, Action: 2, NextState: 3,
			Reward: 1}, false},
		{"vector reward", Fields{State: 4, Action: 2, NextState: 4,
			Reward: 3}, false},
	}

	for _, test := range tests {
		err := test.fields.Validate()
		if test.valid && err != nil {
			t.Errorf("%v: unexpected error: %v", test.name, err)
		} else if !test.valid && err == nil {
			t.Errorf("%v: expected error", test.name)
		}
	}
}

func TestFieldsWidth(t *testing.T) {
	f := NewFields(4, 2)
	if w := f.Width(State, Action); w != 6 {
		t.Errorf("width(state, action): want(6) have(%v)", w)
	}
	if w := f.Width(State, Action, NextState); w != 10 {
		t.Errorf("width(state, action, next_state): want(10) have(%v)", w)
	}
}
