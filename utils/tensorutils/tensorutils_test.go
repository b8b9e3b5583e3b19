package tensorutils

import (
	"testing"

	"gonum.org/v1/gonum/mat"
	"gorgonia.org/tensor"
)

func TestFromDense(t *testing.T) {
	m := mat.NewDense(3, 4, nil)
	for i := 0; i < 3; i++ {
		for j := 0; j < 4; j++ {
			m.Set(i, j, float64(i*10+j))
		}
	}

	// Views have a stride larger than their number of columns
	view := m.Slice(1, 3, 1, 3).(*mat.Dense)
	d := FromDense(view)
	if !d.Shape().Eq(tensor.Shape{2, 2}) {
		t.Fatalf("shape: want(2, 2) have(%v)", d.Shape())
	}

	want := []float64{11, 12, 21, 22}
	have := d.Data().([]float64)
	for i := range want {
		if have[i] != want[i] {
			t.Fatalf("data: want(%v) have(%v)", want, have)
		}
	}

	back := ToDense(have, 2, 2)
	have[0] = -1
	if back.At(0, 0) != 11 {
		t.Error("toDense should copy")
	}
}
