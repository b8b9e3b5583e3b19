// Package replay implements the field layout of stored transitions and
// an experience replay buffer that samples them in batches.
package replay

import (
	"fmt"
	"sort"
	"strings"
)

// Field names a vector stored for each transition
type Field string

// Fields that every schema must define
const (
	State     Field = "state"
	Action    Field = "action"
	NextState Field = "next_state"
	Reward    Field = "reward"
)

var required = []Field{State, Action, NextState, Reward}

// Fields maps each stored field to its dimensionality. A Fields is
// defined once and read by everything that sizes inputs and outputs.
type Fields map[Field]int

// NewFields returns the schema of an environment with state
// dimensionality state and action dimensionality action.
func NewFields(state, action int) Fields {
	return Fields{
		State:     state,
		Action:    action,
		NextState: state,
		Reward:    1,
	}
}

// Validate checks that all required fields exist with a positive
// width, that states and next states share the same space, and that
// rewards are scalar.
func (f Fields) Validate() error {
	var missing []string
	for _, field := range required {
		width, ok := f[field]
		if !ok {
			missing = append(missing, string(field))
			continue
		}
		if width <= 0 {
			return fmt.Errorf("validate: field %v must have positive "+
				"width, got %v", field, width)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("validate: missing fields %v",
			strings.Join(missing, ", "))
	}

	if f[State] != f[NextState] {
		msg := "validate: next state width must equal state width" +
			"\n\twant(%v)\n\thave(%v)"
		return fmt.Errorf(msg, f[State], f[NextState])
	}
	if f[Reward] != 1 {
		return fmt.Errorf("validate: rewards are scalar, reward width "+
			"must be 1, got %v", f[Reward])
	}
	return nil
}

// Width returns the total width of the argument fields concatenated
// in order.
func (f Fields) Width(fields ...Field) int {
	width := 0
	for _, field := range fields {
		width += f[field]
	}
	return width
}
