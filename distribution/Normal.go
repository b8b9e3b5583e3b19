// Package distribution implements the probabilistic outputs of the
// world model: batches of independent Gaussians over vectors, their
// symbolic counterparts on gorgonia graphs, and helpers for logits of
// binary outcomes.
package distribution

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/samuelfneumann/worldmodel/utils/floatutils"
	"github.com/samuelfneumann/worldmodel/utils/matutils"
)

// Normal is a batch of independent multivariate Gaussian distributions.
// Row i of the mean and standard deviation matrices parameterizes the
// distribution of batch element i. Dimensions have no covariance, so
// the log probability of a vector is the sum of the log probabilities
// of its elements.
//
// Samples are drawn with the reparameterization x := μ + σ * ɛ where
// ɛ ~ N(0, I).
type Normal struct {
	mean   *mat.Dense
	stddev *mat.Dense
	batch  int
	dims   int

	standard *distmv.Normal
}

// NewNormal returns a new batch of independent Gaussians with the
// argument mean and standard deviation. The standard deviation is not
// checked for positivity. The source src is used for sampling and may
// be nil, in which case the global source of x/exp/rand is used.
func NewNormal(mean, stddev *mat.Dense, src rand.Source) (*Normal, error) {
	if mean == nil || stddev == nil {
		return nil, fmt.Errorf("newNormal: mean and standard deviation " +
			"must be non-nil")
	}

	r, c := mean.Dims()
	if sr, sc := stddev.Dims(); sr != r || sc != c {
		return nil, fmt.Errorf("newNormal: mean and standard deviation "+
			"shapes differ \n\tmean: (%d, %d) \n\tstddev: (%d, %d)", r, c,
			sr, sc)
	}

	standard, ok := distmv.NewNormal(make([]float64, c),
		mat.NewDiagDense(c, floatutils.Ones(c)), src)
	if !ok {
		return nil, fmt.Errorf("newNormal: could not create standard normal")
	}

	return &Normal{
		mean:     mat.DenseCopyOf(mean),
		stddev:   mat.DenseCopyOf(stddev),
		batch:    r,
		dims:     c,
		standard: standard,
	}, nil
}

// NewNormalLogStd returns a new batch of independent Gaussians given
// the mean and log standard deviation. The standard deviation is
// exp(logStd) and so is positive for any finite logStd that does not
// underflow.
func NewNormalLogStd(mean, logStd *mat.Dense, src rand.Source) (*Normal,
	error) {
	if logStd == nil {
		return nil, fmt.Errorf("newNormalLogStd: log standard deviation " +
			"must be non-nil")
	}
	return NewNormal(mean, matutils.Exp(logStd), src)
}

// Sample returns one sample from each distribution in the batch. Row i
// of the returned matrix is sampled from distribution i.
func (n *Normal) Sample() *mat.Dense {
	sample := mat.NewDense(n.batch, n.dims, nil)
	eps := make([]float64, n.dims)
	for i := 0; i < n.batch; i++ {
		n.standard.Rand(eps)
		row := sample.RawRowView(i)
		mean := n.mean.RawRowView(i)
		stddev := n.stddev.RawRowView(i)
		for j := range row {
			row[j] = mean[j] + stddev[j]*eps[j]
		}
	}
	return sample
}

// LogProb returns the log probability of each row of x under the
// corresponding distribution of the batch. Element i of the returned
// slice is the sum over dimensions of the log densities of row i.
func (n *Normal) LogProb(x mat.Matrix) ([]float64, error) {
	if r, c := x.Dims(); r != n.batch || c != n.dims {
		return nil, fmt.Errorf("logProb: expected input with shape (%d, %d) "+
			"but got (%d, %d)", n.batch, n.dims, r, c)
	}

	logProb := make([]float64, n.batch)
	for i := 0; i < n.batch; i++ {
		for j := 0; j < n.dims; j++ {
			normal := distuv.Normal{
				Mu:    n.mean.At(i, j),
				Sigma: n.stddev.At(i, j),
			}
			logProb[i] += normal.LogProb(x.At(i, j))
		}
	}
	return logProb, nil
}

// Entropy returns the entropy of each distribution in the batch
func (n *Normal) Entropy() []float64 {
	entropy := make([]float64, n.batch)
	for i := 0; i < n.batch; i++ {
		for j := 0; j < n.dims; j++ {
			normal := distuv.Normal{Sigma: n.stddev.At(i, j)}
			entropy[i] += normal.Entropy()
		}
	}
	return entropy
}

// Mean returns a copy of the means of the batch of distributions
func (n *Normal) Mean() *mat.Dense {
	return mat.DenseCopyOf(n.mean)
}

// StdDev returns a copy of the standard deviations of the batch of
// distributions
func (n *Normal) StdDev() *mat.Dense {
	return mat.DenseCopyOf(n.stddev)
}

// Dims returns the batch size and the dimension of each distribution
func (n *Normal) Dims() (batch, dims int) {
	return n.batch, n.dims
}

// String implements the fmt.Stringer interface
func (n *Normal) String() string {
	return fmt.Sprintf("Normal(batch=%d, dims=%d)\nMean:\n%v\nStdDev:\n%v",
		n.batch, n.dims, matutils.Format(n.mean), matutils.Format(n.stddev))
}
