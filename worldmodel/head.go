package worldmodel

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/worldmodel/distribution"
	"github.com/samuelfneumann/worldmodel/network"
	"github.com/samuelfneumann/worldmodel/replay"
	"github.com/samuelfneumann/worldmodel/utils/matutils"
	"github.com/samuelfneumann/worldmodel/utils/tensorutils"
)

// Model is the training surface of a predictor. A learner feeds
// batches to the predictor's training network and steps its
// parameters.
type Model interface {
	// Params returns the trainable parameters of the predictor
	Params() G.Nodes

	// Network returns the training network of the predictor, whose
	// batch size is Config.BatchSize
	Network() network.NeuralNet

	// Feed sets the input of the training network to the fields of b
	// that the predictor conditions on
	Feed(b replay.Batch) error

	// Inputs returns the fields the predictor conditions on in order
	Inputs() []replay.Field
}

// GaussianModel is a predictor whose outputs parameterize a batch of
// independent Gaussians
type GaussianModel interface {
	Model

	// Node returns the distribution computed by the training network
	Node() *distribution.NormalNode
}

// LogitModel is a predictor of the logits of binary outcomes
type LogitModel interface {
	Model

	// Logits returns the logits computed by the training network
	Logits() *G.Node
}

// forward is a network used only for prediction together with the VM
// that runs it
type forward struct {
	net network.NeuralNet
	vm  G.VM
}

// head implements the parts of a predictor shared by all predictors.
//
// Gorgonia graphs have a fixed batch size. A head owns a training
// network whose learnables are the predictor's parameters, and builds
// an inference network for each batch size it is asked to predict
// for. Inference networks are synced with the training network and
// take on its mode before each forward pass. Since only the training
// network's running statistics are ever updated, predictions do not
// modify the head.
type head struct {
	name    string
	fields  replay.Fields
	inputs  []replay.Field
	net     network.NeuralNet
	forward map[int]*forward
}

func newHead(name string, fields replay.Fields, inputs []replay.Field,
	outputs int, layers []int, c Config, seed uint64) (*head, error) {
	net, err := network.NewMLP(
		fields.Width(inputs...),
		c.BatchSize,
		outputs,
		G.NewGraph(),
		layers,
		c.Activation,
		c.InitWFn.Seeded(seed),
		c.BatchNorm,
		c.Dropout,
		seed,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: could not construct %v network: %v",
			ErrConfig, name, err)
	}

	return &head{
		name:    name,
		fields:  fields,
		inputs:  inputs,
		net:     net,
		forward: make(map[int]*forward),
	}, nil
}

// Params returns the trainable parameters of the predictor
func (h *head) Params() G.Nodes {
	return h.net.Learnables()
}

// Network returns the training network of the predictor
func (h *head) Network() network.NeuralNet {
	return h.net
}

// Inputs returns the fields the predictor conditions on in order
func (h *head) Inputs() []replay.Field {
	inputs := make([]replay.Field, len(h.inputs))
	copy(inputs, h.inputs)
	return inputs
}

// Feed sets the input of the training network to the fields of b that
// the predictor conditions on. The batch must have exactly as many
// transitions as the training network's batch size.
func (h *head) Feed(b replay.Batch) error {
	inputs := make([]*mat.Dense, len(h.inputs))
	for i, field := range h.inputs {
		inputs[i] = batchField(b, field)
	}

	batch, err := h.checkInputs(inputs)
	if err != nil {
		return &ModelError{Op: "feed", Err: err}
	}
	if batch != h.net.BatchSize() {
		return &ModelError{Op: "feed", Err: fmt.Errorf("%w: %v training "+
			"batch size \n\twant(%d) \n\thave(%d)", ErrShape, h.name,
			h.net.BatchSize(), batch)}
	}

	if err := h.net.SetInput(matutils.HStack(batch, inputs...)); err != nil {
		return &ModelError{Op: "feed", Err: err}
	}
	return nil
}

// String implements the fmt.Stringer interface
func (h *head) String() string {
	return fmt.Sprintf("%v Model:\n%v", h.name, h.net)
}

// train sets the head to training mode
func (h *head) train() {
	h.net.Train()
}

// eval sets the head to evaluation mode
func (h *head) eval() {
	h.net.Eval()
}

// checkInputs checks that each input exists, that all inputs hold the
// same number of rows, and that each input has the width of its
// field. The batch size is returned.
func (h *head) checkInputs(inputs []*mat.Dense) (int, error) {
	if len(inputs) != len(h.inputs) {
		return 0, fmt.Errorf("%w: %v model takes %d inputs (%v) but got %d",
			ErrInputs, h.name, len(h.inputs), h.inputs, len(inputs))
	}

	batch := -1
	for i, input := range inputs {
		field := h.inputs[i]
		if input == nil || input.IsEmpty() {
			return 0, fmt.Errorf("%w: %v input is empty", ErrShape, field)
		}

		r, c := input.Dims()
		if c != h.fields[field] {
			return 0, fmt.Errorf("%w: %v width \n\twant(%d) \n\thave(%d)",
				ErrShape, field, h.fields[field], c)
		}
		if batch == -1 {
			batch = r
		} else if r != batch {
			return 0, fmt.Errorf("%w: %v has %d rows but %v has %d",
				ErrShape, field, r, h.inputs[0], batch)
		}
	}
	return batch, nil
}

// inference returns the inference network for the argument batch
// size, synced with the training network
func (h *head) inference(batch int) (*forward, error) {
	f, ok := h.forward[batch]
	if !ok {
		net, err := h.net.CloneWithBatch(batch)
		if err != nil {
			return nil, fmt.Errorf("could not clone %v network with batch "+
				"size %d: %v", h.name, batch, err)
		}
		f = &forward{net: net, vm: G.NewTapeMachine(net.Graph())}
		h.forward[batch] = f
	}

	if err := network.Set(f.net, h.net); err != nil {
		return nil, fmt.Errorf("could not sync %v network: %v", h.name, err)
	}
	if h.net.IsEval() {
		f.net.Eval()
	} else {
		f.net.Train()
	}
	return f, nil
}

// predict concatenates inputs along the feature dimension and returns
// the output of the network on them.
func (h *head) predict(inputs ...*mat.Dense) (*mat.Dense, error) {
	batch, err := h.checkInputs(inputs)
	if err != nil {
		return nil, err
	}

	f, err := h.inference(batch)
	if err != nil {
		return nil, err
	}

	if err := f.net.SetInput(matutils.HStack(batch, inputs...)); err != nil {
		return nil, err
	}
	defer f.vm.Reset()
	if err := f.vm.RunAll(); err != nil {
		return nil, fmt.Errorf("could not run %v network: %v", h.name, err)
	}

	output := f.net.Output().Data().([]float64)
	return tensorutils.ToDense(output, batch, f.net.Outputs()), nil
}

// gaussianHead is a head whose outputs are the means and log standard
// deviations of a batch of independent Gaussians
type gaussianHead struct {
	*head
	node *distribution.NormalNode
	src  rand.Source
}

func newGaussianHead(name string, fields replay.Fields,
	inputs []replay.Field, dims int, layers []int, c Config, seed uint64,
	src rand.Source) (*gaussianHead, error) {
	h, err := newHead(name, fields, inputs, 2*dims, layers, c, seed)
	if err != nil {
		return nil, err
	}

	node, err := distribution.SplitNormalNode(h.net.Prediction())
	if err != nil {
		return nil, fmt.Errorf("could not construct %v distribution: %v",
			name, err)
	}
	return &gaussianHead{head: h, node: node, src: src}, nil
}

// Node returns the distribution computed by the training network
func (g *gaussianHead) Node() *distribution.NormalNode {
	return g.node
}

// predictNormal returns the distribution predicted for inputs. The
// first half of the network's outputs are the means and the second
// half the log standard deviations.
func (g *gaussianHead) predictNormal(op string,
	inputs ...*mat.Dense) (*distribution.Normal, error) {
	out, err := g.predict(inputs...)
	if err != nil {
		return nil, &ModelError{Op: op, Err: err}
	}

	_, c := out.Dims()
	half := c / 2
	normal, err := distribution.NewNormalLogStd(
		matutils.Columns(out, 0, half),
		matutils.Columns(out, half, c),
		g.src,
	)
	if err != nil {
		return nil, &ModelError{Op: op, Err: err}
	}
	return normal, nil
}

// logitHead is a head whose single output is the logit of a binary
// outcome
type logitHead struct {
	*head
}

func newLogitHead(name string, fields replay.Fields, inputs []replay.Field,
	layers []int, c Config, seed uint64) (*logitHead, error) {
	h, err := newHead(name, fields, inputs, 1, layers, c, seed)
	if err != nil {
		return nil, err
	}
	return &logitHead{h}, nil
}

// Logits returns the logits computed by the training network
func (l *logitHead) Logits() *G.Node {
	return l.net.Prediction()
}

// predictLogits returns the predicted logits for inputs together with the
// outcome predicted by thresholding them at 0
func (l *logitHead) predictLogits(op string, inputs ...*mat.Dense) (*mat.Dense,
	*tensor.Dense, error) {
	logits, err := l.predict(inputs...)
	if err != nil {
		return nil, nil, &ModelError{Op: op, Err: err}
	}
	return logits, distribution.Threshold(logits), nil
}

// batchField returns the column block of b holding field
func batchField(b replay.Batch, field replay.Field) *mat.Dense {
	switch field {
	case replay.State:
		return b.State
	case replay.Action:
		return b.Action
	case replay.NextState:
		return b.NextState
	case replay.Reward:
		return b.Reward
	}
	return nil
}
