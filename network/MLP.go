package network

import (
	"fmt"
	"strings"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// MLP implements a multi-layered perceptron. Each hidden layer is a
// fully connected layer, optionally followed by batch normalization,
// then an activation, then optionally dropout. A final fully connected
// layer with no activation produces the outputs.
//
// An MLP starts in training mode.
type MLP struct {
	g          *G.ExprGraph
	layers     []layer
	input      *G.Node
	numOutputs int
	numInputs  int
	batchSize  int

	// Architecture, needed for cloning
	hiddenSizes []int
	activation  *Activation
	batchNorm   bool
	dropout     float64
	seed        uint64

	learnables G.Nodes
	model      []G.ValueGrad

	prediction *G.Node
	predVal    G.Value

	eval bool
}

// NewMLP creates and returns a new multi-layered perceptron mapping
// features inputs to outputs outputs for batches of batch samples. The
// graph parameter g is populated with the MLP.
//
// The MLP has number of layers equal to len(hiddenSizes) + 1. For
// index i, hiddenSizes[i] is the number of units in hidden layer i. All
// hidden layers use the activation act. If batchNorm is true, each
// hidden layer is batch normalized before its activation. If dropout
// is positive, dropout with that probability is applied after each
// hidden activation. The parameter init determines the weight
// initialization scheme, and seed seeds the dropout masks.
func NewMLP(features, batch, outputs int, g *G.ExprGraph,
	hiddenSizes []int, act *Activation, init G.InitWFn, batchNorm bool,
	dropout float64, seed uint64) (NeuralNet, error) {
	if features <= 0 || outputs <= 0 {
		return nil, fmt.Errorf("newmlp: features (%v) and outputs (%v) "+
			"must be positive", features, outputs)
	}
	if batch <= 0 {
		return nil, fmt.Errorf("newmlp: batch size must be positive, got %v",
			batch)
	}
	for i, size := range hiddenSizes {
		if size <= 0 {
			return nil, fmt.Errorf("newmlp: hidden layer %v must have "+
				"positive size, got %v", i, size)
		}
	}
	if dropout < 0 || dropout >= 1 {
		return nil, fmt.Errorf("newmlp: dropout probability must be in "+
			"[0, 1), got %v", dropout)
	}
	if act == nil {
		return nil, fmt.Errorf("newmlp: nil activation")
	}

	// Set up the input node
	input := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName("input"), G.WithInit(G.Zeroes()))

	// Construct layers
	layers := make([]layer, 0, 4*len(hiddenSizes)+1)
	in := features
	for i, size := range hiddenSizes {
		name := fmt.Sprintf("L%d", i)
		layers = append(layers, newFCLayer(g, in, size, init, name))
		if batchNorm {
			layers = append(layers, newBatchNormLayer(g, batch, size, name))
		}
		layers = append(layers, &activationLayer{act})
		if dropout > 0 {
			layers = append(layers, newDropoutLayer(g, batch, size, dropout,
				seed+uint64(i), name))
		}
		in = size
	}
	name := fmt.Sprintf("L%d", len(hiddenSizes))
	layers = append(layers, newFCLayer(g, in, outputs, init, name))

	hidden := make([]int, len(hiddenSizes))
	copy(hidden, hiddenSizes)

	network := &MLP{
		g:           g,
		layers:      layers,
		input:       input,
		numOutputs:  outputs,
		numInputs:   features,
		batchSize:   batch,
		hiddenSizes: hidden,
		activation:  act,
		batchNorm:   batchNorm,
		dropout:     dropout,
		seed:        seed,
	}

	if _, err := network.fwd(input); err != nil {
		return nil, fmt.Errorf("newmlp: could not compute forward pass: %v",
			err)
	}
	return network, nil
}

// Graph returns the computational graph of the MLP.
func (m *MLP) Graph() *G.ExprGraph {
	return m.g
}

// Clone clones an MLP
func (m *MLP) Clone() (NeuralNet, error) {
	return m.CloneWithBatch(m.batchSize)
}

// CloneWithBatch clones an MLP onto a new computational graph with a
// new input batch size. The clone shares no nodes with m, starts with
// m's weights and statistics, and is in the same mode as m.
func (m *MLP) CloneWithBatch(batchSize int) (NeuralNet, error) {
	net, err := NewMLP(m.numInputs, batchSize, m.numOutputs, G.NewGraph(),
		m.hiddenSizes, m.activation, G.Zeroes(), m.batchNorm, m.dropout,
		m.seed)
	if err != nil {
		return nil, fmt.Errorf("clonewithbatch: %v", err)
	}

	if err := net.Set(m); err != nil {
		return nil, fmt.Errorf("clonewithbatch: %v", err)
	}

	if m.IsEval() {
		net.Eval()
	}
	return net, nil
}

// BatchSize returns the batch size of inputs to the network
func (m *MLP) BatchSize() int {
	return m.batchSize
}

// Features returns the number of features in a single input vector
func (m *MLP) Features() int {
	return m.numInputs
}

// Outputs returns the number of outputs from the network
func (m *MLP) Outputs() int {
	return m.numOutputs
}

// SetInput sets the value of the input node before running the forward
// pass. Mode dependent layers, such as dropout, are prepared for the
// next forward pass.
func (m *MLP) SetInput(input []float64) error {
	if len(input) != m.numInputs*m.batchSize {
		return fmt.Errorf("setinput: invalid number of inputs\n\twant(%v)"+
			"\n\thave(%v)", m.numInputs*m.batchSize, len(input))
	}
	inputTensor := tensor.New(
		tensor.WithBacking(input),
		tensor.WithShape(m.input.Shape()...),
	)
	if err := G.Let(m.input, inputTensor); err != nil {
		return fmt.Errorf("setinput: %v", err)
	}

	for _, l := range m.layers {
		if l, ok := l.(moder); ok {
			if err := l.prepare(!m.eval); err != nil {
				return fmt.Errorf("setinput: could not prepare layer %v: %v",
					l, err)
			}
		}
	}
	return nil
}

// Set sets the weights and statistics of m to be equal to those of
// another MLP
func (m *MLP) Set(source NeuralNet) error {
	if err := copyValues(m.Learnables(), source.Learnables()); err != nil {
		return err
	}
	return copyValues(m.Stats(), source.Stats())
}

// Learnables returns the learnable nodes in an MLP
func (m *MLP) Learnables() G.Nodes {
	// Lazy instantiation
	if m.learnables == nil {
		learnables := make(G.Nodes, 0, 2*len(m.layers))
		for _, l := range m.layers {
			learnables = append(learnables, l.learnables()...)
		}
		m.learnables = learnables
	}
	return m.learnables
}

// Model returns the learnables nodes with their gradients.
func (m *MLP) Model() []G.ValueGrad {
	// Lazy instantiation
	if m.model == nil {
		m.model = G.NodesToValueGrads(m.Learnables())
	}
	return m.model
}

// Stats returns the running statistics nodes of the MLP
func (m *MLP) Stats() G.Nodes {
	var stats G.Nodes
	for _, l := range m.layers {
		if l, ok := l.(statTracker); ok {
			stats = append(stats, l.stats()...)
		}
	}
	return stats
}

// UpdateStats updates the running statistics of all layers using the
// statistics computed in the last forward pass.
func (m *MLP) UpdateStats() error {
	if m.eval {
		return nil
	}
	for _, l := range m.layers {
		if l, ok := l.(statTracker); ok {
			if err := l.updateStats(); err != nil {
				return err
			}
		}
	}
	return nil
}

// fwd performs the forward pass of the MLP on the input node
func (m *MLP) fwd(input *G.Node) (*G.Node, error) {
	inputShape := input.Shape()[len(input.Shape())-1]
	if inputShape != m.numInputs {
		return nil, fmt.Errorf("fwd: invalid shape for input to neural net:"+
			" \n\twant(%v) \n\thave(%v)", m.numInputs, inputShape)
	}

	pred := input
	var err error
	for i, l := range m.layers {
		if pred, err = l.fwd(pred); err != nil {
			msg := "fwd: could not compute forward pass of layer %v: %v"
			return nil, fmt.Errorf(msg, i, err)
		}
	}

	m.prediction = pred
	G.Read(m.prediction, &m.predVal)

	return pred, nil
}

// Output returns the output of the MLP after its graph has been run
func (m *MLP) Output() G.Value {
	return m.predVal
}

// Prediction returns the node of the computational graph the stores
// the output of the MLP
func (m *MLP) Prediction() *G.Node {
	return m.prediction
}

// Train sets the MLP to training mode
func (m *MLP) Train() {
	m.eval = false
}

// Eval sets the MLP to evaluation mode
func (m *MLP) Eval() {
	m.eval = true
}

// IsEval returns whether the MLP is in evaluation mode
func (m *MLP) IsEval() bool {
	return m.eval
}

// String returns a summary of the architecture of the MLP
func (m *MLP) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "MLP(in=%d, out=%d, batch=%d)(\n", m.numInputs,
		m.numOutputs, m.batchSize)
	for i, l := range m.layers {
		fmt.Fprintf(&b, "  (%d): %v\n", i, l)
	}
	b.WriteString(")")
	return b.String()
}
