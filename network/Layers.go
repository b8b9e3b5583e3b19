package network

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/worldmodel/utils/floatutils"
)

// Default batch normalization hyperparameters
const (
	BatchNormMomentum = 0.1
	BatchNormEpsilon  = 1e-5
)

// layer is a single stage of a feed forward network
type layer interface {
	// fwd adds the forward pass of the layer to the computational graph
	fwd(x *G.Node) (*G.Node, error)

	learnables() G.Nodes
	fmt.Stringer
}

// moder is a layer that behaves differently in training and
// evaluation mode. Its prepare method is called before each forward
// pass.
type moder interface {
	layer
	prepare(training bool) error
}

// statTracker is a layer with running statistics
type statTracker interface {
	layer
	stats() G.Nodes
	updateStats() error
}

// fcLayer implements a fully connected layer of a feed forward neural
// network
type fcLayer struct {
	in, out int
	weights *G.Node
	bias    *G.Node
}

func newFCLayer(g *G.ExprGraph, in, out int, init G.InitWFn,
	name string) *fcLayer {
	weights := G.NewMatrix(g, tensor.Float64, G.WithShape(in, out),
		G.WithName(name+"W"), G.WithInit(init))
	bias := G.NewMatrix(g, tensor.Float64, G.WithShape(1, out),
		G.WithName(name+"B"), G.WithInit(G.Zeroes()))

	return &fcLayer{in: in, out: out, weights: weights, bias: bias}
}

// fwd adds the forward pass of the fcLayer to the computational graph
func (f *fcLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Mul(x, f.weights)
	if err != nil {
		return nil, err
	}

	// Broadcast the bias weights to all samples along the batch
	// dimension
	return G.BroadcastAdd(x, f.bias, nil, []byte{0})
}

func (f *fcLayer) learnables() G.Nodes {
	return G.Nodes{f.weights, f.bias}
}

func (f *fcLayer) String() string {
	return fmt.Sprintf("Linear(in=%d, out=%d, bias=true)", f.in, f.out)
}

// activationLayer applies an Activation elementwise
type activationLayer struct {
	act *Activation
}

func (a *activationLayer) fwd(x *G.Node) (*G.Node, error) {
	return a.act.fwd(x)
}

func (a *activationLayer) learnables() G.Nodes { return nil }

func (a *activationLayer) String() string {
	return fmt.Sprintf("Activation(%v)", a.act)
}

// batchNormLayer normalizes each feature over the batch.
//
// The graph holds both normalizations: by the statistics of the current
// batch and by the running statistics. The scalar useBatch selects
// between them so that a single graph serves both modes. A batch of a
// single sample has no variance, so it is always normalized by the
// running statistics.
type batchNormLayer struct {
	features int
	momentum float64
	epsilon  float64

	scale *G.Node
	shift *G.Node

	runningMean *G.Node
	runningVar  *G.Node
	useBatch    *G.Node

	batchMeanVal G.Value
	batchVarVal  G.Value
	batch        int
	batchStats   bool
}

func newBatchNormLayer(g *G.ExprGraph, batch, features int,
	name string) *batchNormLayer {
	shape := G.WithShape(1, features)
	use := 0.0
	if batch > 1 {
		use = 1.0
	}

	return &batchNormLayer{
		features:   features,
		momentum:   BatchNormMomentum,
		epsilon:    BatchNormEpsilon,
		batch:      batch,
		batchStats: batch > 1,

		scale: G.NewMatrix(g, tensor.Float64, shape,
			G.WithName(name+"Scale"), G.WithInit(G.Ones())),
		shift: G.NewMatrix(g, tensor.Float64, shape,
			G.WithName(name+"Shift"), G.WithInit(G.Zeroes())),

		runningMean: G.NewMatrix(g, tensor.Float64, shape,
			G.WithName(name+"RunningMean"), G.WithInit(G.Zeroes())),
		runningVar: G.NewMatrix(g, tensor.Float64, shape,
			G.WithName(name+"RunningVar"), G.WithInit(G.Ones())),
		useBatch: G.NewScalar(g, tensor.Float64, G.WithName(name+"UseBatch"),
			G.WithValue(use)),
	}
}

func (b *batchNormLayer) fwd(x *G.Node) (*G.Node, error) {
	rowVec := tensor.Shape{1, b.features}

	batchMean := G.Must(G.Mean(x, 0))
	batchMean = G.Must(G.Reshape(batchMean, rowVec))
	centred := G.Must(G.BroadcastSub(x, batchMean, nil, []byte{0}))
	batchVar := G.Must(G.Mean(G.Must(G.Square(centred)), 0))
	batchVar = G.Must(G.Reshape(batchVar, rowVec))

	G.Read(batchMean, &b.batchMeanVal)
	G.Read(batchVar, &b.batchVarVal)

	// mean = useBatch * batchMean + (1 - useBatch) * runningMean
	one := G.NewConstant(1.0)
	useRunning := G.Must(G.Sub(one, b.useBatch))
	mean := G.Must(G.Add(
		G.Must(G.Mul(b.useBatch, batchMean)),
		G.Must(G.Mul(useRunning, b.runningMean)),
	))
	variance := G.Must(G.Add(
		G.Must(G.Mul(b.useBatch, batchVar)),
		G.Must(G.Mul(useRunning, b.runningVar)),
	))

	eps := G.NewConstant(b.epsilon)
	std := G.Must(G.Sqrt(G.Must(G.Add(variance, eps))))

	out := G.Must(G.BroadcastSub(x, mean, nil, []byte{0}))
	out = G.Must(G.BroadcastHadamardDiv(out, std, nil, []byte{0}))
	out = G.Must(G.BroadcastHadamardProd(out, b.scale, nil, []byte{0}))
	return G.BroadcastAdd(out, b.shift, nil, []byte{0})
}

func (b *batchNormLayer) prepare(training bool) error {
	b.batchStats = training && b.batch > 1
	use := 0.0
	if b.batchStats {
		use = 1.0
	}
	return G.Let(b.useBatch, G.NewF64(use))
}

func (b *batchNormLayer) learnables() G.Nodes {
	return G.Nodes{b.scale, b.shift}
}

func (b *batchNormLayer) stats() G.Nodes {
	return G.Nodes{b.runningMean, b.runningVar}
}

// updateStats moves the running statistics towards the statistics of
// the last batch if it was normalized by them. The running variance
// uses the unbiased batch variance.
func (b *batchNormLayer) updateStats() error {
	if !b.batchStats || b.batchMeanVal == nil || b.batchVarVal == nil {
		return nil
	}
	correction := float64(b.batch) / float64(b.batch-1)

	batchMean := b.batchMeanVal.Data().([]float64)
	batchVar := b.batchVarVal.Data().([]float64)
	runningMean := b.runningMean.Value().Data().([]float64)
	runningVar := b.runningVar.Value().Data().([]float64)

	mean := make([]float64, b.features)
	variance := make([]float64, b.features)
	for i := 0; i < b.features; i++ {
		mean[i] = (1-b.momentum)*runningMean[i] + b.momentum*batchMean[i]
		variance[i] = (1-b.momentum)*runningVar[i] +
			b.momentum*batchVar[i]*correction
	}

	err := G.Let(b.runningMean, tensor.New(tensor.WithBacking(mean),
		tensor.WithShape(1, b.features)))
	if err != nil {
		return fmt.Errorf("updatestats: could not set running mean: %v", err)
	}
	err = G.Let(b.runningVar, tensor.New(tensor.WithBacking(variance),
		tensor.WithShape(1, b.features)))
	if err != nil {
		return fmt.Errorf("updatestats: could not set running variance: %v",
			err)
	}
	return nil
}

func (b *batchNormLayer) String() string {
	return fmt.Sprintf("BatchNorm(%d, momentum=%v, eps=%v)", b.features,
		b.momentum, b.epsilon)
}

// dropoutLayer zeroes each unit with probability prob in training
// mode and scales the kept units by 1 / (1 - prob). The mask is an
// input node of the graph that is resampled before each forward pass
// and set to ones in evaluation mode.
type dropoutLayer struct {
	prob  float64
	mask  *G.Node
	shape tensor.Shape
	keep  distuv.Bernoulli
}

func newDropoutLayer(g *G.ExprGraph, batch, features int, prob float64,
	seed uint64, name string) *dropoutLayer {
	mask := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, features),
		G.WithName(name+"Mask"), G.WithInit(G.Ones()))

	return &dropoutLayer{
		prob:  prob,
		mask:  mask,
		shape: tensor.Shape{batch, features},
		keep:  distuv.Bernoulli{P: 1 - prob, Src: rand.NewSource(seed)},
	}
}

func (d *dropoutLayer) fwd(x *G.Node) (*G.Node, error) {
	return G.HadamardProd(x, d.mask)
}

func (d *dropoutLayer) prepare(training bool) error {
	var mask []float64
	if training {
		scale := 1 / (1 - d.prob)
		mask = make([]float64, d.shape.TotalSize())
		for i := range mask {
			mask[i] = d.keep.Rand() * scale
		}
	} else {
		mask = floatutils.Ones(d.shape.TotalSize())
	}

	return G.Let(d.mask, tensor.New(tensor.WithBacking(mask),
		tensor.WithShape(d.shape...)))
}

func (d *dropoutLayer) learnables() G.Nodes { return nil }

func (d *dropoutLayer) String() string {
	return fmt.Sprintf("Dropout(p=%v)", d.prob)
}
