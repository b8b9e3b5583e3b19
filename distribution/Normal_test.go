package distribution

import (
	"math"
	"strings"
	"testing"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

func TestNormalSampleShape(t *testing.T) {
	mean := mat.NewDense(8, 4, nil)
	logStd := mat.NewDense(8, 4, nil)
	n, err := NewNormalLogStd(mean, logStd, rand.NewSource(1))
	if err != nil {
		t.Fatal(err)
	}

	if r, c := n.Sample().Dims(); r != 8 || c != 4 {
		t.Errorf("sample shape: want(8, 4) have(%v, %v)", r, c)
	}
	if batch, dims := n.Dims(); batch != 8 || dims != 4 {
		t.Errorf("dims: want(8, 4) have(%v, %v)", batch, dims)
	}

	logProb, err := n.LogProb(n.Sample())
	if err != nil {
		t.Fatal(err)
	}
	if len(logProb) != 8 {
		t.Errorf("log prob length: want(8) have(%v)", len(logProb))
	}
}

func TestNormalSampleMoments(t *testing.T) {
	const samples = 20000
	mean := mat.NewDense(1, 2, []float64{3, -1})
	stddev := mat.NewDense(1, 2, []float64{0.5, 2})
	n, err := NewNormal(mean, stddev, rand.NewSource(7))
	if err != nil {
		t.Fatal(err)
	}

	first := make([]float64, samples)
	second := make([]float64, samples)
	for i := range first {
		s := n.Sample()
		first[i], second[i] = s.At(0, 0), s.At(0, 1)
	}

	if m, s := stat.MeanStdDev(first, nil); math.Abs(m-3) > 0.05 ||
		math.Abs(s-0.5) > 0.05 {
		t.Errorf("dim 0: want(3, 0.5) have(%v, %v)", m, s)
	}
	if m, s := stat.MeanStdDev(second, nil); math.Abs(m+1) > 0.1 ||
		math.Abs(s-2) > 0.1 {
		t.Errorf("dim 1: want(-1, 2) have(%v, %v)", m, s)
	}
}

func TestNormalLogProbSumsDims(t *testing.T) {
	mean := mat.NewDense(2, 3, []float64{0, 1, 2, -1, 0, 1})
	stddev := mat.NewDense(2, 3, []float64{1, 2, 0.5, 1, 1, 3})
	x := mat.NewDense(2, 3, []float64{0.5, 1, 1, 0, 0, 0})
	n, err := NewNormal(mean, stddev, nil)
	if err != nil {
		t.Fatal(err)
	}

	logProb, err := n.LogProb(x)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		want := 0.0
		for j := 0; j < 3; j++ {
			mu, sigma := mean.At(i, j), stddev.At(i, j)
			z := (x.At(i, j) - mu) / sigma
			want += -0.5*z*z - math.Log(sigma) - 0.5*math.Log(2*math.Pi)
		}
		if math.Abs(logProb[i]-want) > 1e-12 {
			t.Errorf("row %v: want(%v) have(%v)", i, want, logProb[i])
		}
	}

	if _, err := n.LogProb(mat.NewDense(2, 2, nil)); err == nil {
		t.Error("logProb: expected error for wrong shape")
	}
}

func TestNormalStdDevPositive(t *testing.T) {
	logStd := mat.NewDense(1, 5, []float64{-50, -1, 0, 1, 50})
	n, err := NewNormalLogStd(mat.NewDense(1, 5, nil), logStd, nil)
	if err != nil {
		t.Fatal(err)
	}

	for j, s := range n.StdDev().RawRowView(0) {
		if !(s > 0) {
			t.Errorf("stddev %v: want positive have(%v)", j, s)
		}
	}
}

func TestNormalEntropy(t *testing.T) {
	stddev := mat.NewDense(2, 2, []float64{1, 1, 2, 0.5})
	n, err := NewNormal(mat.NewDense(2, 2, nil), stddev, nil)
	if err != nil {
		t.Fatal(err)
	}

	entropy := n.Entropy()
	single := 0.5 * math.Log(2*math.Pi*math.E)
	want := []float64{2 * single, 2*single + math.Log(2) + math.Log(0.5)}
	if !floats.EqualApprox(entropy, want, 1e-12) {
		t.Errorf("entropy: want(%v) have(%v)", want, entropy)
	}
}

func TestNormalCopies(t *testing.T) {
	mean := mat.NewDense(1, 1, []float64{1})
	n, err := NewNormal(mean, mat.NewDense(1, 1, []float64{1}), nil)
	if err != nil {
		t.Fatal(err)
	}

	mean.Set(0, 0, 5)
	n.Mean().Set(0, 0, 7)
	if m := n.Mean().At(0, 0); m != 1 {
		t.Errorf("mean should not alias its inputs or outputs: have(%v)", m)
	}
}

func TestNewNormalShapeMismatch(t *testing.T) {
	_, err := NewNormal(mat.NewDense(2, 3, nil), mat.NewDense(3, 2, nil), nil)
	if err == nil {
		t.Error("newNormal: expected error for mismatched shapes")
	}
}

func TestNormalNodeAgreesWithNormal(t *testing.T) {
	const batch, dims = 3, 2
	meanData := []float64{0, 1, -2, 0.5, 3, 3}
	logStdData := []float64{0, -1, 0.5, 0.2, 1, -0.3}
	xData := []float64{0.1, 0.9, -1, 1, 2, 4}

	g := G.NewGraph()
	node := func(name string, data []float64) *G.Node {
		backing := make([]float64, len(data))
		copy(backing, data)
		return G.NewMatrix(g, tensor.Float64, G.WithShape(batch, dims),
			G.WithName(name), G.WithValue(tensor.New(
				tensor.WithBacking(backing), tensor.WithShape(batch, dims))))
	}

	// Concatenate mean and log std columns so that the split is
	// exercised as well
	out := make([]float64, 0, batch*2*dims)
	for i := 0; i < batch; i++ {
		out = append(out, meanData[i*dims:(i+1)*dims]...)
		out = append(out, logStdData[i*dims:(i+1)*dims]...)
	}
	outNode := G.NewMatrix(g, tensor.Float64, G.WithShape(batch, 2*dims),
		G.WithName("out"), G.WithValue(tensor.New(tensor.WithBacking(out),
			tensor.WithShape(batch, 2*dims))))

	normalNode, err := SplitNormalNode(outNode)
	if err != nil {
		t.Fatal(err)
	}
	logProbNode, err := normalNode.LogProb(node("x", xData))
	if err != nil {
		t.Fatal(err)
	}
	var logProbVal G.Value
	G.Read(logProbNode, &logProbVal)

	vm := G.NewTapeMachine(g)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatal(err)
	}
	have := logProbVal.Data().([]float64)

	normal, err := NewNormalLogStd(mat.NewDense(batch, dims, meanData),
		mat.NewDense(batch, dims, logStdData), nil)
	if err != nil {
		t.Fatal(err)
	}
	want, err := normal.LogProb(mat.NewDense(batch, dims, xData))
	if err != nil {
		t.Fatal(err)
	}

	if !floats.EqualApprox(have, want, 1e-10) {
		t.Errorf("log prob: want(%v) have(%v)", want, have)
	}
}

func TestSplitNormalNodeOddColumns(t *testing.T) {
	g := G.NewGraph()
	out := G.NewMatrix(g, tensor.Float64, G.WithShape(4, 3),
		G.WithName("out"), G.WithInit(G.Zeroes()))
	if _, err := SplitNormalNode(out); err == nil {
		t.Error("splitNormalNode: expected error for odd number of columns")
	}
}

func TestNormalString(t *testing.T) {
	mean := mat.NewDense(1, 2, []float64{1.25, -2})
	stddev := mat.NewDense(1, 2, []float64{0.5, 3})
	n, err := NewNormal(mean, stddev, nil)
	if err != nil {
		t.Fatal(err)
	}

	str := n.String()
	for _, want := range []string{"Normal(batch=1, dims=2)", "1.25", "-2",
		"0.5", "StdDev"} {
		if !strings.Contains(str, want) {
			t.Errorf("string: want %q in\n%v", want, str)
		}
	}
}
