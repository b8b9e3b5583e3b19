package distribution

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Threshold returns a new boolean tensor of the same shape as logits
// which is true exactly where the logit is strictly positive. A logit
// of 0 maps to false. The returned tensor never shares memory with
// logits.
func Threshold(logits mat.Matrix) *tensor.Dense {
	r, c := logits.Dims()
	pred := make([]bool, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			pred[i*c+j] = logits.At(i, j) > 0
		}
	}
	return tensor.New(tensor.WithBacking(pred), tensor.WithShape(r, c))
}

// Probabilities returns the probabilities σ(logits) of the positive
// outcome
func Probabilities(logits mat.Matrix) *mat.Dense {
	r, c := logits.Dims()
	prob := mat.NewDense(r, c, nil)
	prob.Apply(func(_, _ int, v float64) float64 {
		return sigmoid(v)
	}, logits)
	return prob
}

// sigmoid computes 1 / (1 + exp(-x)) without overflowing for large
// negative x
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	z := math.Exp(x)
	return z / (1 + z)
}

// BinaryCrossEntropy adds nodes to the graph of logits that compute the
// mean binary cross entropy between the Bernoulli distributions with
// the argument logits and the targets, which hold 0 or 1:
//
//	mean(softplus(l) - y * l)
//
// which equals -mean(y log σ(l) + (1 - y) log(1 - σ(l))).
func BinaryCrossEntropy(logits, targets *G.Node) (*G.Node, error) {
	if !logits.Shape().Eq(targets.Shape()) {
		return nil, fmt.Errorf("binaryCrossEntropy: logits and targets "+
			"shapes differ \n\tlogits: %v \n\ttargets: %v", logits.Shape(),
			targets.Shape())
	}

	loss, err := G.Softplus(logits)
	if err != nil {
		return nil, fmt.Errorf("binaryCrossEntropy: %v", err)
	}
	loss = G.Must(G.Sub(loss, G.Must(G.HadamardProd(targets, logits))))
	return G.Mean(loss)
}
