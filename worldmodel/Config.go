package worldmodel

import (
	"encoding/json"
	"fmt"

	"github.com/samuelfneumann/worldmodel/initwfn"
	"github.com/samuelfneumann/worldmodel/network"
	"github.com/samuelfneumann/worldmodel/replay"
)

// Inputs describes the input signature of the reward and termination
// predictors
type Inputs string

const (
	// StateAction predictors condition on the state and action
	StateAction Inputs = "StateAction"

	// StateActionNextState predictors condition on the state, action,
	// and next state, concatenated in that order
	StateActionNextState Inputs = "StateActionNextState"
)

// fields returns the fields that predictors with input signature i
// take as input, in order
func (i Inputs) fields() []replay.Field {
	if i == StateAction {
		return []replay.Field{replay.State, replay.Action}
	}
	return []replay.Field{replay.State, replay.Action, replay.NextState}
}

// Validate returns an error if i is not a known input signature
func (i Inputs) Validate() error {
	switch i {
	case StateAction, StateActionNextState:
		return nil
	}
	return fmt.Errorf("unknown input signature %q", string(i))
}

// Config implements a configuration of the world model Agent
type Config struct {
	Device Device

	// BatchSize is the batch size of the training networks, which the
	// learner fits on. Predictions accept any batch size.
	BatchSize int

	// Hidden layer sizes of each predictor. An empty list gives a
	// linear predictor.
	TransitionLayers []int
	RewardLayers     []int
	DoneLayers       []int

	Activation *network.Activation
	BatchNorm  bool
	Dropout    float64 // 0 disables dropout

	PredictReward bool
	PredictDone   bool
	RewardInputs  Inputs
	DoneInputs    Inputs

	InitWFn *initwfn.InitWFn

	// Seed seeds dropout masks and the source that distributions
	// returned by predictions sample from
	Seed uint64
}

// Validate checks the Config for errors. Unset optional fields are
// not errors; see WithDefaults.
func (c Config) Validate() error {
	if err := c.Device.Validate(); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d",
			ErrConfig, c.BatchSize)
	}

	layers := map[string][]int{
		"transition": c.TransitionLayers,
		"reward":     c.RewardLayers,
		"done":       c.DoneLayers,
	}
	for name, sizes := range layers {
		for _, size := range sizes {
			if size <= 0 {
				return fmt.Errorf("%w: %v hidden layer sizes must be "+
					"positive, got %v", ErrConfig, name, sizes)
			}
		}
	}

	if c.Dropout < 0 || c.Dropout >= 1 {
		return fmt.Errorf("%w: dropout probability must be in [0, 1), "+
			"got %v", ErrConfig, c.Dropout)
	}

	if c.RewardInputs != "" {
		if err := c.RewardInputs.Validate(); err != nil {
			return fmt.Errorf("%w: reward: %v", ErrConfig, err)
		}
	}
	if c.DoneInputs != "" {
		if err := c.DoneInputs.Validate(); err != nil {
			return fmt.Errorf("%w: done: %v", ErrConfig, err)
		}
	}
	return nil
}

// WithDefaults returns a copy of c with unset optional fields set to
// their defaults: ReLU activations, Glorot Uniform weights, and
// reward and termination predictors that condition on the next state.
func (c Config) WithDefaults() Config {
	if c.Activation == nil {
		c.Activation = network.ReLU()
	}
	if c.InitWFn == nil {
		c.InitWFn = initwfn.Default()
	}
	if c.RewardInputs == "" {
		c.RewardInputs = StateActionNextState
	}
	if c.DoneInputs == "" {
		c.DoneInputs = StateActionNextState
	}
	return c
}

// String implements the fmt.Stringer interface
func (c Config) String() string {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Sprintf("Config(%v)", err)
	}
	return string(data)
}
