package worldmodel

import (
	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/worldmodel/distribution"
)

// TransitionModel predicts the next state as an independent Gaussian
// over state dimensions
type TransitionModel struct {
	*gaussianHead
}

// Predict returns the distribution of next states given a batch of
// states and the actions taken in them. Row i of state and action is
// a single transition.
func (t *TransitionModel) Predict(state, action *mat.Dense) (
	*distribution.Normal, error) {
	return t.predictNormal("transition", state, action)
}

// RewardModel predicts the reward of a transition from its state and
// action as a Gaussian
type RewardModel struct {
	*gaussianHead
}

// Predict returns the distribution of rewards given a batch of states
// and the actions taken in them
func (r *RewardModel) Predict(state, action *mat.Dense) (
	*distribution.Normal, error) {
	return r.predictNormal("reward", state, action)
}

// NextStateRewardModel predicts the reward of a transition from its
// state, action, and next state as a Gaussian
type NextStateRewardModel struct {
	*gaussianHead
}

// Predict returns the distribution of rewards given a batch of
// states, the actions taken in them, and the states transitioned to
func (r *NextStateRewardModel) Predict(state, action,
	nextState *mat.Dense) (*distribution.Normal, error) {
	return r.predictNormal("reward", state, action, nextState)
}

// DoneModel predicts episode termination from the state and action of
// a transition
type DoneModel struct {
	*logitHead
}

// Predict returns the logits of termination and the predicted
// termination, which is true exactly where the logit is positive. The
// predicted termination never shares memory with the logits.
func (d *DoneModel) Predict(state, action *mat.Dense) (*mat.Dense,
	*tensor.Dense, error) {
	return d.predictLogits("done", state, action)
}

// NextStateDoneModel predicts episode termination from the state,
// action, and next state of a transition
type NextStateDoneModel struct {
	*logitHead
}

// Predict returns the logits of termination and the predicted
// termination, which is true exactly where the logit is positive.
func (d *NextStateDoneModel) Predict(state, action,
	nextState *mat.Dense) (*mat.Dense, *tensor.Dense, error) {
	return d.predictLogits("done", state, action, nextState)
}
