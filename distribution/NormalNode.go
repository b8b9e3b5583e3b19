package distribution

import (
	"fmt"
	"math"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/worldmodel/utils/tensorutils"
)

// NormalNode is the symbolic counterpart of Normal. It holds the nodes
// of a computational graph that compute the mean and log standard
// deviation of a batch of independent Gaussians, and can add the
// log density of a batch of vectors to that graph.
type NormalNode struct {
	mean   *G.Node
	logStd *G.Node
}

// NewNormalNode returns a new NormalNode with the argument mean and log
// standard deviation nodes, which must both be matrices of the same
// shape on the same graph.
func NewNormalNode(mean, logStd *G.Node) (*NormalNode, error) {
	if mean.Graph() != logStd.Graph() {
		return nil, fmt.Errorf("newNormalNode: mean and log standard " +
			"deviation must share the same graph")
	}
	if !mean.IsMatrix() || !mean.Shape().Eq(logStd.Shape()) {
		return nil, fmt.Errorf("newNormalNode: mean and log standard "+
			"deviation must be matrices of the same shape \n\tmean: %v "+
			"\n\tlogStd: %v", mean.Shape(), logStd.Shape())
	}

	return &NormalNode{mean: mean, logStd: logStd}, nil
}

// SplitNormalNode splits the columns of the (batch, 2k) matrix out into
// a mean half and a log standard deviation half, and returns the
// NormalNode they parameterize.
func SplitNormalNode(out *G.Node) (*NormalNode, error) {
	if !out.IsMatrix() || out.Shape()[1]%2 != 0 {
		return nil, fmt.Errorf("splitNormalNode: expected a matrix with "+
			"an even number of columns but got shape %v", out.Shape())
	}

	batch, dims := out.Shape()[0], out.Shape()[1]/2
	half := tensor.Shape{batch, dims}

	// Slicing drops dimensions of size 1, so reshape back to a matrix
	mean, err := G.Slice(out, nil, tensorutils.NewSlice(0, dims, 1))
	if err != nil {
		return nil, fmt.Errorf("splitNormalNode: could not slice mean: %v",
			err)
	}
	mean = G.Must(G.Reshape(mean, half))

	logStd, err := G.Slice(out, nil, tensorutils.NewSlice(dims, 2*dims, 1))
	if err != nil {
		return nil, fmt.Errorf("splitNormalNode: could not slice log "+
			"standard deviation: %v", err)
	}
	logStd = G.Must(G.Reshape(logStd, half))

	return NewNormalNode(mean, logStd)
}

// Mean returns the node computing the means of the distributions
func (n *NormalNode) Mean() *G.Node {
	return n.mean
}

// LogStd returns the node computing the log standard deviations of the
// distributions
func (n *NormalNode) LogStd() *G.Node {
	return n.logStd
}

// LogProb adds nodes to the graph that compute the log density of each
// row of x under the corresponding distribution of the batch. The
// returned node is a vector with one element per batch row, holding the
// sum of the log densities over dimensions:
//
//	log p(x) = Σ -½((x - μ) / σ)² - log σ - ½ log 2π
func (n *NormalNode) LogProb(x *G.Node) (*G.Node, error) {
	if !x.Shape().Eq(n.mean.Shape()) {
		return nil, fmt.Errorf("logProb: expected input of shape %v but "+
			"got %v", n.mean.Shape(), x.Shape())
	}
	if x.Graph() != n.mean.Graph() {
		return nil, fmt.Errorf("logProb: input must be on the same graph " +
			"as the distribution")
	}

	// (x - μ) / σ == (x - μ) * exp(-log σ)
	invStd := G.Must(G.Exp(G.Must(G.Neg(n.logStd))))
	z := G.Must(G.Sub(x, n.mean))
	z = G.Must(G.HadamardProd(z, invStd))

	negativeHalf := G.NewConstant(-0.5)
	logProb := G.Must(G.Mul(negativeHalf, G.Must(G.Square(z))))
	logProb = G.Must(G.Sub(logProb, n.logStd))
	logProb = G.Must(G.Sum(logProb, 1))

	dims := float64(n.mean.Shape()[1])
	norm := G.NewConstant(0.5 * dims * math.Log(2*math.Pi))
	return G.Sub(logProb, norm)
}
