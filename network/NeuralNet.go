// Package network implements feed forward function approximators built
// on Gorgonia computational graphs.
package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// NeuralNet is a function approximator mapping a batch of fixed size
// input vectors to a batch of fixed size output vectors.
//
// Each NeuralNet owns its computational graph. The input batch size is
// fixed when the graph is built; CloneWithBatch builds the same
// architecture for a different batch size.
type NeuralNet interface {
	Graph() *G.ExprGraph
	Clone() (NeuralNet, error)
	CloneWithBatch(int) (NeuralNet, error)
	BatchSize() int
	Features() int
	Outputs() int

	// SetInput sets the input of the network in row major order and
	// prepares mode dependent layers for the next forward pass.
	SetInput([]float64) error

	// Set sets the weights and statistics of the network to those of
	// another network with the same architecture.
	Set(NeuralNet) error

	Learnables() G.Nodes
	Model() []G.ValueGrad

	// Stats returns the non-learnable state of the network, such as
	// running normalization statistics.
	Stats() G.Nodes

	// UpdateStats folds the statistics of the last forward pass into
	// the network's running statistics. It does nothing in evaluation
	// mode.
	UpdateStats() error

	Output() G.Value
	Prediction() *G.Node

	Train()
	Eval()
	IsEval() bool

	fmt.Stringer
}

// Set sets the weights of dest to be equal to the weights of source
func Set(dest, source NeuralNet) error {
	return dest.Set(source)
}

// copyValues copies the value of each source node into the matching
// dest node.
func copyValues(dest, source G.Nodes) error {
	if len(dest) != len(source) {
		return fmt.Errorf("set: incompatible networks\n\twant(%v nodes)"+
			"\n\thave(%v nodes)", len(dest), len(source))
	}

	for i := range dest {
		if !dest[i].Shape().Eq(source[i].Shape()) {
			return fmt.Errorf("set: node %v has shape %v, cannot set to %v",
				dest[i].Name(), dest[i].Shape(), source[i].Shape())
		}

		value, ok := source[i].Value().(*tensor.Dense)
		if !ok {
			return fmt.Errorf("set: node %v has unsupported value type %T",
				source[i].Name(), source[i].Value())
		}

		if err := G.Let(dest[i], value.Clone().(*tensor.Dense)); err != nil {
			return fmt.Errorf("set: could not set node %v: %v",
				dest[i].Name(), err)
		}
	}
	return nil
}
