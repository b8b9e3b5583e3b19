// Package learner fits the predictors of a world model to batches of
// transitions.
//
// The transition and reward models are fit by maximum likelihood of
// the observed next states and rewards under their predicted
// Gaussians. The done model is fit by the binary cross entropy between
// its logits and the observed terminations. Each predictor is stepped
// by its own solver.
package learner

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/worldmodel/distribution"
	"github.com/samuelfneumann/worldmodel/replay"
	"github.com/samuelfneumann/worldmodel/solver"
	"github.com/samuelfneumann/worldmodel/utils/tensorutils"
	"github.com/samuelfneumann/worldmodel/worldmodel"
)

// Config implements a configuration of a Learner
type Config struct {
	TransitionSolver *solver.Solver

	// Solvers of the reward and done models. If nil, a fresh copy of
	// TransitionSolver is used.
	RewardSolver *solver.Solver
	DoneSolver   *solver.Solver
}

// Validate checks the Config for errors
func (c Config) Validate() error {
	if c.TransitionSolver == nil {
		return fmt.Errorf("validate: a transition solver is required")
	}
	return nil
}

// Losses holds the training loss of each predictor on the last batch.
// The loss of a disabled predictor is NaN.
type Losses struct {
	Transition float64
	Reward     float64
	Done       float64
}

// String implements the fmt.Stringer interface
func (l Losses) String() string {
	return fmt.Sprintf("Losses | Transition: %.4f  |  Reward: %.4f  |  "+
		"Done: %.4f", l.Transition, l.Reward, l.Done)
}

// objective is the training loss of a single predictor together with
// the machinery to minimize it
type objective struct {
	name   string
	model  worldmodel.Model
	field  func(replay.Batch) *mat.Dense
	target *G.Node

	loss    *G.Node
	lossVal G.Value

	vm     G.VM
	solver G.Solver
}

// newObjective computes the gradient of loss with respect to the
// parameters of model and creates the VM to run the model's training
// graph
func newObjective(name string, model worldmodel.Model, target,
	loss *G.Node, field func(replay.Batch) *mat.Dense,
	s *solver.Solver) (*objective, error) {
	o := &objective{
		name:   name,
		model:  model,
		field:  field,
		target: target,
		loss:   loss,
		solver: s,
	}
	G.Read(o.loss, &o.lossVal)

	if _, err := G.Grad(loss, model.Params()...); err != nil {
		return nil, fmt.Errorf("could not compute %v gradient: %v", name,
			err)
	}

	o.vm = G.NewTapeMachine(model.Network().Graph(),
		G.BindDualValues(model.Params()...))
	return o, nil
}

// step takes one solver step on b and returns the loss before the
// step
func (o *objective) step(b replay.Batch) (float64, error) {
	if err := o.model.Feed(b); err != nil {
		return 0, err
	}

	target := o.field(b)
	if target == nil {
		return 0, fmt.Errorf("%v target missing from batch", o.name)
	}
	if r, c := target.Dims(); !o.target.Shape().Eq(tensor.Shape{r, c}) {
		return 0, fmt.Errorf("%v target shape \n\twant(%v) \n\thave(%v)",
			o.name, o.target.Shape(), tensor.Shape{r, c})
	}
	if err := G.Let(o.target, tensorutils.FromDense(target)); err != nil {
		return 0, fmt.Errorf("could not set %v target: %v", o.name, err)
	}

	defer o.vm.Reset()
	if err := o.vm.RunAll(); err != nil {
		return 0, fmt.Errorf("could not run %v VM: %v", o.name, err)
	}
	loss := o.lossVal.Data().(float64)

	if err := o.solver.Step(G.NodesToValueGrads(o.model.Params())); err != nil {
		return 0, fmt.Errorf("could not step %v solver: %v", o.name, err)
	}
	if err := o.model.Network().UpdateStats(); err != nil {
		return 0, fmt.Errorf("could not update %v statistics: %v", o.name,
			err)
	}
	return loss, nil
}

// Learner fits the predictors of a world model Agent. Gradients are
// computed on the training graphs of the Agent, so only a single
// Learner should be created per Agent.
type Learner struct {
	agent      *worldmodel.Agent
	transition *objective
	reward     *objective
	done       *objective
}

// New returns a new Learner for the predictors of agent. A Learner is
// only created for the reward and done models if they are enabled.
func New(agent *worldmodel.Agent, c Config) (*Learner, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	transition, err := newGaussianObjective("transition",
		agent.TransitionModel(), replay.NextState,
		func(b replay.Batch) *mat.Dense { return b.NextState },
		c.TransitionSolver)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	l := &Learner{agent: agent, transition: transition}

	if agent.HasReward() {
		model, err := agent.RewardHead()
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("new: %v", err)
		}
		l.reward, err = newGaussianObjective("reward", model, replay.Reward,
			func(b replay.Batch) *mat.Dense { return b.Reward },
			orDefault(c.RewardSolver, c.TransitionSolver))
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("new: %v", err)
		}
	}

	if agent.HasDone() {
		model, err := agent.DoneHead()
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("new: %v", err)
		}
		l.done, err = newDoneObjective(model,
			orDefault(c.DoneSolver, c.TransitionSolver))
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("new: %v", err)
		}
	}

	return l, nil
}

// orDefault returns s if non-nil and def otherwise
func orDefault(s, def *solver.Solver) *solver.Solver {
	if s != nil {
		return s
	}
	return def
}

// newGaussianObjective returns the negative log likelihood objective
// of a Gaussian predictor, whose targets are stored in field
func newGaussianObjective(name string, model worldmodel.GaussianModel,
	field replay.Field, target func(replay.Batch) *mat.Dense,
	s *solver.Solver) (*objective, error) {
	s, err := s.Clone()
	if err != nil {
		return nil, err
	}

	mean := model.Node().Mean()
	targetNode := G.NewMatrix(
		model.Network().Graph(),
		tensor.Float64,
		G.WithShape(mean.Shape()...),
		G.WithName(fmt.Sprintf("%vTarget", field)),
		G.WithInit(G.Zeroes()),
	)

	logProb, err := model.Node().LogProb(targetNode)
	if err != nil {
		return nil, fmt.Errorf("could not compute %v log probability: %v",
			name, err)
	}
	loss := G.Must(G.Neg(G.Must(G.Mean(logProb))))

	return newObjective(name, model, targetNode, loss, target, s)
}

// newDoneObjective returns the binary cross entropy objective of the
// done model
func newDoneObjective(model worldmodel.LogitModel,
	s *solver.Solver) (*objective, error) {
	s, err := s.Clone()
	if err != nil {
		return nil, err
	}

	logits := model.Logits()
	targetNode := G.NewMatrix(
		model.Network().Graph(),
		tensor.Float64,
		G.WithShape(logits.Shape()...),
		G.WithName("DoneTarget"),
		G.WithInit(G.Zeroes()),
	)

	loss, err := distribution.BinaryCrossEntropy(logits, targetNode)
	if err != nil {
		return nil, fmt.Errorf("could not compute done loss: %v", err)
	}

	return newObjective("done", model, targetNode, loss,
		func(b replay.Batch) *mat.Dense { return b.Done }, s)
}

// Step takes one gradient step for each enabled predictor on the
// batch b, which must have the batch size the agent was configured
// with.
func (l *Learner) Step(b replay.Batch) (Losses, error) {
	losses := Losses{Reward: math.NaN(), Done: math.NaN()}

	var err error
	losses.Transition, err = l.transition.step(b)
	if err != nil {
		return Losses{}, fmt.Errorf("step: %w", err)
	}

	if l.reward != nil {
		losses.Reward, err = l.reward.step(b)
		if err != nil {
			return Losses{}, fmt.Errorf("step: %w", err)
		}
	}

	if l.done != nil {
		losses.Done, err = l.done.step(b)
		if err != nil {
			return Losses{}, fmt.Errorf("step: %w", err)
		}
	}

	return losses, nil
}

// Agent returns the world model that the Learner fits
func (l *Learner) Agent() *worldmodel.Agent {
	return l.agent
}

// Close closes the VMs of the Learner
func (l *Learner) Close() error {
	for _, o := range []*objective{l.transition, l.reward, l.done} {
		if o == nil {
			continue
		}
		if err := o.vm.Close(); err != nil {
			return fmt.Errorf("close: could not close %v VM: %v", o.name, err)
		}
	}
	return nil
}
