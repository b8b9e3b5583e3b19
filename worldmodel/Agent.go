// Package worldmodel implements a probabilistic world model for model
// based reinforcement learning. The world model learns to predict the
// next state, the reward, and the termination of transitions.
//
// The next state and reward are predicted as independent Gaussians
// whose means and log standard deviations are output by neural
// networks. Termination is predicted by the logit of a Bernoulli
// distribution.
package worldmodel

import (
	"fmt"
	"log"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"

	"github.com/samuelfneumann/worldmodel/distribution"
	"github.com/samuelfneumann/worldmodel/replay"
)

// Agent implements a world model. It owns three predictors with
// disjoint parameters: the transition, reward, and done models.
//
// The reward and done models are always constructed, but their
// prediction methods are only available if they were enabled in the
// Config. Each of them is built for one input signature, and only the
// accessor for that signature succeeds.
//
// An Agent is not safe for concurrent use.
type Agent struct {
	fields replay.Fields
	config Config
	logger *log.Logger

	transition *TransitionModel
	reward     *gaussianHead
	done       *logitHead

	// Exactly one of each pair is non-nil
	stateActionReward *RewardModel
	nextStateReward   *NextStateRewardModel
	stateActionDone   *DoneModel
	nextStateDone     *NextStateDoneModel

	eval bool
}

// New returns a new world model Agent for transitions laid out by
// fields. The architecture of each predictor is logged to logger. If
// logger is nil, the standard logger is used.
func New(fields replay.Fields, c Config, logger *log.Logger) (*Agent,
	error) {
	if logger == nil {
		logger = log.Default()
	}

	if err := fields.Validate(); err != nil {
		return nil, &ModelError{Op: "new", Err: fmt.Errorf("%w: %v",
			ErrConfig, err)}
	}
	if err := c.Validate(); err != nil {
		return nil, &ModelError{Op: "new", Err: err}
	}
	c = c.WithDefaults()

	// Distributions returned by all predictors share a source
	src := rand.NewSource(c.Seed)

	transition, err := newGaussianHead("Transition", fields,
		StateAction.fields(), fields[replay.State], c.TransitionLayers, c,
		c.Seed, src)
	if err != nil {
		return nil, &ModelError{Op: "new", Err: err}
	}

	// Rewards are scalar
	reward, err := newGaussianHead("Reward", fields, c.RewardInputs.fields(),
		1, c.RewardLayers, c, c.Seed+1, src)
	if err != nil {
		return nil, &ModelError{Op: "new", Err: err}
	}

	done, err := newLogitHead("Done", fields, c.DoneInputs.fields(),
		c.DoneLayers, c, c.Seed+2)
	if err != nil {
		return nil, &ModelError{Op: "new", Err: err}
	}

	a := &Agent{
		fields: fields,
		config: c,
		logger: logger,

		transition: &TransitionModel{transition},
		reward:     reward,
		done:       done,
	}

	if c.RewardInputs == StateAction {
		a.stateActionReward = &RewardModel{reward}
	} else {
		a.nextStateReward = &NextStateRewardModel{reward}
	}
	if c.DoneInputs == StateAction {
		a.stateActionDone = &DoneModel{done}
	} else {
		a.nextStateDone = &NextStateDoneModel{done}
	}

	// Graphs are built on the host. The CPU is the only device that
	// passes validation so there is nothing to move.
	logger.Printf("world model on device %v", c.Device)
	logger.Print(a.transition)
	logger.Print(a.reward)
	logger.Print(a.done)

	return a, nil
}

// Fields returns the field schema the Agent was built for
func (a *Agent) Fields() replay.Fields {
	fields := make(replay.Fields, len(a.fields))
	for k, v := range a.fields {
		fields[k] = v
	}
	return fields
}

// Config returns the configuration of the Agent with defaults filled
// in
func (a *Agent) Config() Config {
	return a.config
}

// Device returns the device the Agent is placed on
func (a *Agent) Device() Device {
	return a.config.Device
}

// Transition returns the distribution of next states given a batch
// of states and the actions taken in them. With batch normalization, a
// batch of a single transition is normalized by the running statistics
// even in training mode.
func (a *Agent) Transition(state, action *mat.Dense) (*distribution.Normal,
	error) {
	return a.transition.Predict(state, action)
}

// TransitionModel returns the transition predictor
func (a *Agent) TransitionModel() *TransitionModel {
	return a.transition
}

// HasReward returns whether reward prediction is enabled
func (a *Agent) HasReward() bool {
	return a.config.PredictReward
}

// HasDone returns whether termination prediction is enabled
func (a *Agent) HasDone() bool {
	return a.config.PredictDone
}

// Reward returns the reward predictor that conditions on states and
// actions. An error is returned if reward prediction is disabled or
// the reward predictor conditions on next states.
func (a *Agent) Reward() (*RewardModel, error) {
	if !a.HasReward() {
		return nil, &ModelError{Op: "reward", Err: ErrCapabilityAbsent}
	}
	if a.stateActionReward == nil {
		return nil, &ModelError{Op: "reward", Err: fmt.Errorf("%w: reward "+
			"model conditions on %v", ErrInputs, a.config.RewardInputs)}
	}
	return a.stateActionReward, nil
}

// NextStateReward returns the reward predictor that conditions on
// states, actions, and next states. An error is returned if reward
// prediction is disabled or the reward predictor does not condition
// on next states.
func (a *Agent) NextStateReward() (*NextStateRewardModel, error) {
	if !a.HasReward() {
		return nil, &ModelError{Op: "nextStateReward",
			Err: ErrCapabilityAbsent}
	}
	if a.nextStateReward == nil {
		return nil, &ModelError{Op: "nextStateReward", Err: fmt.Errorf(
			"%w: reward model conditions on %v", ErrInputs,
			a.config.RewardInputs)}
	}
	return a.nextStateReward, nil
}

// RewardHead returns the reward predictor for training, whichever
// inputs it conditions on
func (a *Agent) RewardHead() (GaussianModel, error) {
	if !a.HasReward() {
		return nil, &ModelError{Op: "rewardHead", Err: ErrCapabilityAbsent}
	}
	return a.reward, nil
}

// Done returns the termination predictor that conditions on states
// and actions. An error is returned if termination prediction is
// disabled or the predictor conditions on next states.
func (a *Agent) Done() (*DoneModel, error) {
	if !a.HasDone() {
		return nil, &ModelError{Op: "done", Err: ErrCapabilityAbsent}
	}
	if a.stateActionDone == nil {
		return nil, &ModelError{Op: "done", Err: fmt.Errorf("%w: done "+
			"model conditions on %v", ErrInputs, a.config.DoneInputs)}
	}
	return a.stateActionDone, nil
}

// NextStateDone returns the termination predictor that conditions on
// states, actions, and next states. An error is returned if
// termination prediction is disabled or the predictor does not
// condition on next states.
func (a *Agent) NextStateDone() (*NextStateDoneModel, error) {
	if !a.HasDone() {
		return nil, &ModelError{Op: "nextStateDone", Err: ErrCapabilityAbsent}
	}
	if a.nextStateDone == nil {
		return nil, &ModelError{Op: "nextStateDone", Err: fmt.Errorf(
			"%w: done model conditions on %v", ErrInputs,
			a.config.DoneInputs)}
	}
	return a.nextStateDone, nil
}

// DoneHead returns the termination predictor for training, whichever
// inputs it conditions on
func (a *Agent) DoneHead() (LogitModel, error) {
	if !a.HasDone() {
		return nil, &ModelError{Op: "doneHead", Err: ErrCapabilityAbsent}
	}
	return a.done, nil
}

// TransitionParams returns the parameters of the transition model
func (a *Agent) TransitionParams() G.Nodes {
	return a.transition.Params()
}

// RewardParams returns the parameters of the reward model. They exist
// even if reward prediction is disabled.
func (a *Agent) RewardParams() G.Nodes {
	return a.reward.Params()
}

// DoneParams returns the parameters of the done model. They exist
// even if termination prediction is disabled.
func (a *Agent) DoneParams() G.Nodes {
	return a.done.Params()
}

// Train sets all predictors to training mode
func (a *Agent) Train() {
	a.eval = false
	a.transition.train()
	a.reward.train()
	a.done.train()
}

// Eval sets all predictors to evaluation mode
func (a *Agent) Eval() {
	a.eval = true
	a.transition.eval()
	a.reward.eval()
	a.done.eval()
}

// IsEval returns whether the Agent is in evaluation mode
func (a *Agent) IsEval() bool {
	return a.eval
}
